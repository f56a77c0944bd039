package defunc

import (
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/fray-lang/fray/internal/fixture"
	"github.com/fray-lang/fray/internal/prettyprinter"
)

// Golden archives pair a program document with the exact residual program
// text. Each testdata/*.txtar holds a program.yaml and an expected file.
func TestGolden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no golden archives in testdata")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			ar, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatal(err)
			}
			var progData, want []byte
			for _, f := range ar.Files {
				switch f.Name {
				case "program.yaml":
					progData = f.Data
				case "expected":
					want = f.Data
				}
			}
			if progData == nil || want == nil {
				t.Fatalf("%s must contain program.yaml and expected", path)
			}

			prog, err := fixture.Decode(progData)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			counter := 0
			out, err := New(&counter).Run(prog)
			if err != nil {
				t.Fatalf("defunctionalize: %v", err)
			}
			got := prettyprinter.NewCodePrinter().Print(out)
			if got != string(want) {
				t.Errorf("residual program mismatch\n--- got\n%s--- want\n%s", got, want)
			}
		})
	}
}
