package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/fray-lang/fray/internal/diagnostics"
	"github.com/fray-lang/fray/internal/fixture"
	"github.com/fray-lang/fray/internal/pipeline"
	"github.com/fray-lang/fray/internal/prettyprinter"

	"github.com/fray-lang/fray/internal/defunc"
)

func main() {
	var (
		output  = flag.String("o", "", "write the residual program to this file instead of stdout")
		counter = flag.Int("name-counter", 0, "initial value of the fresh-name counter")
		noColor = flag.Bool("no-color", false, "disable colored diagnostics")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] program.yaml\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	prog, err := fixture.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	ctx := pipeline.NewPipelineContext(path, prog, *counter)
	ctx = pipeline.New(defunc.NewStage()).Run(ctx)
	if ctx.HasErrors() {
		color := !*noColor && isatty.IsTerminal(os.Stderr.Fd())
		diagnostics.Render(os.Stderr, ctx.Errors, color)
		os.Exit(1)
	}

	rendered := prettyprinter.NewCodePrinter().Print(ctx.Program)
	if *output == "" {
		fmt.Print(rendered)
		return
	}
	if err := os.WriteFile(*output, []byte(rendered), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
