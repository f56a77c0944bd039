package fixture

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fray-lang/fray/internal/ast"
	"github.com/fray-lang/fray/internal/types"
)

const sampleProgram = `
decls:
  - name: addc
    params:
      - ident: {name: c, type: i64}
      - ident: {name: x, type: i64}
    ret: i64
    body:
      apply:
        fun: {var: {name: add, type: {func: {params: [i64, i64], ret: i64}}}}
        args:
          - {var: {name: c, type: i64}}
          - {var: {name: x, type: i64}}
  - name: main
    size_params: [n]
    params:
      - ident: {name: xs, type: {array: {size: n, elem: i64}}}
    ret: {array: {size: n, elem: i64}}
    body:
      apply:
        fun:
          var:
            name: map
            type:
              func:
                params:
                  - {func: {param: i64, ret: i64}}
                  - {array: {size: n, elem: i64}}
                ret: {array: {size: n, elem: i64}}
        args:
          - apply:
              fun: {var: {name: addc, type: {func: {params: [i64, i64], ret: i64}}}}
              args:
                - {lit: {value: 1, type: i64}}
          - {var: {name: xs, type: {array: {size: n, elem: i64}}}}
`

func TestDecodeProgram(t *testing.T) {
	prog, err := Decode([]byte(sampleProgram))
	require.NoError(t, err)
	require.Len(t, prog.Decls, 2)

	addc := prog.Decls[0]
	assert.Equal(t, "addc", addc.Name)
	require.Len(t, addc.Params, 2)
	i64 := types.Prim{Name: "i64"}
	assert.True(t, types.Equal(ast.PatternType(addc.Params[0]), i64))
	assert.True(t, types.Equal(addc.RetType, i64))

	head, args := ast.UnApplySpine(addc.Body)
	assert.Equal(t, "add", head.(*ast.Var).Name)
	require.Len(t, args, 2)

	main := prog.Decls[1]
	assert.Equal(t, []string{"n"}, main.SizeParams)
	arrT, ok := ast.PatternType(main.Params[0]).(types.Array)
	require.True(t, ok)
	assert.Equal(t, types.NamedSize{Name: "n"}, arrT.Size)

	// Nested partial application decodes as a spine.
	_, mainArgs := ast.UnApplySpine(main.Body)
	require.Len(t, mainArgs, 2)
	_, innerArgs := ast.UnApplySpine(mainArgs[0])
	assert.Len(t, innerArgs, 1)
}

func TestDecodeRecordFieldsCanonical(t *testing.T) {
	// Fields written out of order come back in canonical order, numeric
	// names compared by value.
	doc := `
decls:
  - name: r
    ret: {record: {y: i64, "10": i64, "2": i64, x: i64}}
    body:
      record:
        y: {lit: {value: 1, type: i64}}
        "10": {lit: {value: 2, type: i64}}
        "2": {lit: {value: 3, type: i64}}
        x: {lit: {value: 4, type: i64}}
`
	prog, err := Decode([]byte(doc))
	require.NoError(t, err)
	rec := prog.Decls[0].Body.(*ast.RecordLit)
	var names []string
	for _, f := range rec.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"2", "10", "x", "y"}, names)
}

func TestDecodeLetDefaultsType(t *testing.T) {
	doc := `
decls:
  - name: f
    ret: i64
    body:
      let:
        pat: {ident: {name: x, type: i64}}
        value: {lit: {value: 1, type: i64}}
        body: {var: {name: x, type: i64}}
`
	prog, err := Decode([]byte(doc))
	require.NoError(t, err)
	let := prog.Decls[0].Body.(*ast.Let)
	assert.True(t, types.Equal(let.Typ, types.Prim{Name: "i64"}))
}

func TestDecodeAnchorsShared(t *testing.T) {
	doc := `
decls:
  - name: f
    ret: i64
    body:
      apply:
        fun: {var: {name: add, type: {func: {params: [i64, i64], ret: i64}}}}
        args:
          - &one {lit: {value: 1, type: i64}}
          - *one
`
	prog, err := Decode([]byte(doc))
	require.NoError(t, err)
	_, args := ast.UnApplySpine(prog.Decls[0].Body)
	require.Len(t, args, 2)
	lit, ok := args[1].(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, int64(1), lit.Value)
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown expression kind",
			doc: `
decls:
  - name: f
    ret: i64
    body: {frobnicate: {}}
`,
			want: "unknown expression kind",
		},
		{
			name: "apply without arguments",
			doc: `
decls:
  - name: f
    ret: i64
    body:
      apply:
        fun: {var: {name: g, type: i64}}
        args: []
`,
			want: "apply without arguments",
		},
		{
			name: "missing ret",
			doc: `
decls:
  - name: f
    body: {lit: {value: 1, type: i64}}
`,
			want: "missing ret",
		},
		{
			name: "missing body",
			doc: `
decls:
  - name: f
    ret: i64
`,
			want: "missing body",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.doc))
			require.Error(t, err)
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}
