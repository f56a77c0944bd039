package defunc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fray-lang/fray/internal/ast"
	"github.com/fray-lang/fray/internal/diagnostics"
	"github.com/fray-lang/fray/internal/token"
	"github.com/fray-lang/fray/internal/types"
)

func arr(size types.Size, elem types.Type) types.Array {
	return types.Array{Size: size, Elem: elem}
}

func TestSVFreeSizes(t *testing.T) {
	n := types.NamedSize{Name: "n"}
	m := types.NamedSize{Name: "m"}

	sv := &RecordSV{Fields: []SVField{
		{Name: "a", Val: &Dynamic{Typ: arr(n, i64)}},
		{Name: "b", Val: &Dynamic{Typ: arr(m, i64)}},
		{Name: "c", Val: &Dynamic{Typ: arr(n, i64)}},
	}}
	assert.Equal(t, []string{"n", "m"}, svFreeSizes(sv))
}

func TestSVFreeSizesThroughClosure(t *testing.T) {
	n := types.NamedSize{Name: "n"}
	captured := NewEnv().Extend(EnvBinding{
		Name:    "xs",
		Binding: Binding{SV: &Dynamic{Typ: arr(n, i64)}},
	})
	lc := &LambdaClosure{
		Param:    identPat("x", i64),
		RetType:  i64,
		Body:     &ast.Var{Token: token.Synthetic("x"), Name: "x", Typ: i64},
		Captured: captured,
	}
	assert.Contains(t, svFreeSizes(lc), "n")
}

func TestReplaceStaticValSizes(t *testing.T) {
	n := types.NamedSize{Name: "n"}
	subst := types.SizeSubst{"n": types.ConstSize{N: 5}}

	got := replaceStaticValSizes(subst, &Dynamic{Typ: arr(n, i64)})
	dyn, ok := got.(*Dynamic)
	require.True(t, ok)
	assert.True(t, types.Equal(dyn.Typ, arr(types.ConstSize{N: 5}, i64)))
}

func TestReplaceStaticValSizesSkipsShadowed(t *testing.T) {
	n := types.NamedSize{Name: "n"}
	subst := types.SizeSubst{"n": types.ConstSize{N: 5}, "xs": types.ConstSize{N: 9}}

	// The closure captures a variable named like a substituted size; the
	// substitution must not reach inside.
	captured := NewEnv().Extend(EnvBinding{
		Name:    "xs",
		Binding: Binding{SV: &Dynamic{Typ: arr(n, i64)}},
	})
	lc := &LambdaClosure{
		Param:    identPat("x", arr(n, i64)),
		RetType:  i64,
		Body:     &ast.Var{Token: token.Synthetic("x"), Name: "x", Typ: i64},
		Captured: NewEnv().Extend(dynBind("n", i64)),
		Hint:     "f",
	}
	got := replaceStaticValSizes(subst, lc).(*LambdaClosure)
	// "n" is shadowed by the capture, so the parameter keeps its size name.
	assert.True(t, types.Equal(ast.PatternType(got.Param), arr(n, i64)))

	other := replaceStaticValSizes(subst, &LambdaClosure{
		Param:    identPat("x", arr(n, i64)),
		RetType:  i64,
		Body:     &ast.Var{Token: token.Synthetic("x"), Name: "x", Typ: i64},
		Captured: captured,
	}).(*LambdaClosure)
	// "xs" shadows only the binding of that name, "n" is still rewritten.
	assert.True(t, types.Equal(ast.PatternType(other.Param), arr(types.ConstSize{N: 5}, i64)))
}

func TestInstStaticValFreshensPerUse(t *testing.T) {
	d := newTestDefunctionalizer()
	n := types.NamedSize{Name: "n"}
	generic := arr(n, i64)
	sv := StaticVal(&Dynamic{Typ: generic})

	tok := token.Synthetic("use")
	first, err := d.instStaticVal(tok, []string{"n"}, generic, arr(types.ConstSize{N: 3}, i64), sv)
	require.NoError(t, err)
	second, err := d.instStaticVal(tok, []string{"n"}, generic, arr(types.ConstSize{N: 7}, i64), sv)
	require.NoError(t, err)

	ft, ok := first.(*Dynamic)
	require.True(t, ok)
	st, ok := second.(*Dynamic)
	require.True(t, ok)
	assert.True(t, types.Equal(ft.Typ, arr(types.ConstSize{N: 3}, i64)), "first use: %s", ft.Typ)
	assert.True(t, types.Equal(st.Typ, arr(types.ConstSize{N: 7}, i64)), "second use: %s", st.Typ)
	// The original static value is untouched between instantiations.
	assert.True(t, types.Equal(sv.(*Dynamic).Typ, generic))
}

func TestInstStaticValMapsToUseSiteSize(t *testing.T) {
	d := newTestDefunctionalizer()
	n := types.NamedSize{Name: "n"}
	generic := types.Func{Param: arr(n, i64), Ret: i64}

	// The use site binds the quantified size to its own named size.
	concrete := types.Func{Param: arr(types.NamedSize{Name: "k"}, i64), Ret: i64}
	sv, err := d.instStaticVal(token.Synthetic("use"), []string{"n"}, generic, concrete, &Dynamic{Typ: generic})
	require.NoError(t, err)
	dyn, ok := sv.(*Dynamic)
	require.True(t, ok)
	assert.True(t, types.Equal(dyn.Typ, concrete), "instantiated: %s", dyn.Typ)
}

func TestInstStaticValUnresolvableSize(t *testing.T) {
	d := newTestDefunctionalizer()
	n := types.NamedSize{Name: "n"}
	// The quantified size leaks through the static value but never occurs
	// in the binding's type, so the use site has nothing to map it to.
	sv := StaticVal(&Dynamic{Typ: arr(n, i64)})

	_, err := d.instStaticVal(token.Synthetic("use"), []string{"n"}, i64, i64, sv)
	require.Error(t, err)
	derr, ok := diagnostics.AsError(err)
	require.True(t, ok)
	assert.Equal(t, diagnostics.ErrD003, derr.Code)
}

// A size-parameterized declaration used at two different concrete sizes
// produces calls typed at each use site.
func TestSizeSchemeInstantiationAtCallSites(t *testing.T) {
	n := types.NamedSize{Name: "n"}
	firsts := &ast.ValDecl{
		Token:      token.Synthetic("firsts"),
		Name:       "firsts",
		SizeParams: []string{"n"},
		Params:     []ast.Pattern{identPat("xs", arr(n, i64))},
		RetType:    i64,
		Body: &ast.Index{
			Token:   token.Synthetic("idx"),
			Array:   &ast.Var{Token: token.Synthetic("xs"), Name: "xs", Typ: arr(n, i64)},
			Indices: []ast.Expression{ast.IntLit(0)},
			Typ:     i64,
		},
	}
	a3 := arr(types.ConstSize{N: 3}, i64)
	a7 := arr(types.ConstSize{N: 7}, i64)
	main := decl("main",
		[]ast.Pattern{identPat("xs", a3), identPat("ys", a7)},
		i64,
		addCall(
			app(varE("firsts", types.Func{Param: a3, Ret: i64}), varE("xs", a3)),
			app(varE("firsts", types.Func{Param: a7, Ret: i64}), varE("ys", a7)),
		))

	out := runProgram(t, &ast.Program{Decls: []*ast.ValDecl{firsts, main}})

	mainOut := findDecl(t, out, "main")
	_, args := ast.UnApplySpine(mainOut.Body)
	require.Len(t, args, 2)

	left, ok := args[0].(*ast.Apply)
	require.True(t, ok)
	lt, ok := left.Fun.(*ast.Var).Typ.(types.Func)
	require.True(t, ok)
	assert.True(t, types.Equal(lt.Param, a3), "left call param: %s", lt.Param)

	right, ok := args[1].(*ast.Apply)
	require.True(t, ok)
	rt, ok := right.Fun.(*ast.Var).Typ.(types.Func)
	require.True(t, ok)
	assert.True(t, types.Equal(rt.Param, a7), "right call param: %s", rt.Param)
}
