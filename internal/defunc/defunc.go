// Package defunc removes all higher-order functions from a fully
// monomorphic, type-checked program. Lambdas become capture records,
// applications of them become calls to lifted first-order declarations,
// and partially applied functions become chains resolved one argument at a
// time. The residual program contains no function types outside of
// declaration signatures and combinator operands.
package defunc

import (
	"github.com/fray-lang/fray/internal/ast"
	"github.com/fray-lang/fray/internal/diagnostics"
	"github.com/fray-lang/fray/internal/pipeline"
	"github.com/fray-lang/fray/internal/token"
	"github.com/fray-lang/fray/internal/types"
)

// Stage is the pipeline processor wrapping a whole-program run.
type Stage struct{}

func NewStage() *Stage { return &Stage{} }

func (s *Stage) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	d := New(&ctx.NameCounter)
	prog, err := d.Run(ctx.Program)
	if err != nil {
		if derr, ok := diagnostics.AsError(err); ok {
			ctx.Errors = append(ctx.Errors, derr)
		} else {
			ctx.Errors = append(ctx.Errors,
				diagnostics.NewInternal(diagnostics.ErrD001, token.Synthetic(""), err.Error()))
		}
		return ctx
	}
	ctx.Program = prog
	return ctx
}

// Run transforms every declaration in order. Declarations lifted while
// processing a binding are placed immediately before it, so every residual
// declaration only refers to declarations above it.
func (d *Defunctionalizer) Run(prog *ast.Program) (*ast.Program, error) {
	var out []*ast.ValDecl
	for _, decl := range prog.Decls {
		mark := d.state.LiftedCount()
		decl2, binding, err := d.transformDecl(decl)
		if err != nil {
			return nil, err
		}
		out = append(out, d.state.LiftedSince(mark)...)
		out = append(out, decl2)
		d.globalEnv = d.globalEnv.Extend(EnvBinding{Name: decl.Name, Binding: binding})
	}
	return &ast.Program{Decls: out}, nil
}

func (d *Defunctionalizer) transformDecl(decl *ast.ValDecl) (*ast.ValDecl, Binding, error) {
	d.declName = decl.Name
	d.liftHint = decl.Name

	env := NewEnv()
	if len(decl.SizeParams) > 0 {
		binds := make([]EnvBinding, len(decl.SizeParams))
		for i, s := range decl.SizeParams {
			binds[i] = EnvBinding{Name: s, Binding: Binding{SV: &Dynamic{Typ: types.Prim{Name: "i64"}}}}
		}
		env = env.Extend(binds...)
	}

	params, body, sv, err := d.defuncDecl(env, decl.Params, decl.Body, decl.RetType)
	if err != nil {
		return nil, Binding{}, err
	}

	// The declared result type survives when every parameter survived and
	// the result was already first order; sizes that the transformation
	// re-derived are mapped through. Otherwise the residual body dictates
	// the type.
	retType := body.Type()
	if len(params) == len(decl.Params) && types.IsOrderZero(decl.RetType) {
		mapping := types.DimMapping(decl.Body.Type(), body.Type())
		retType = types.ReplaceSizes(mapping, decl.RetType)
	}

	out := &ast.ValDecl{
		Token:      decl.Token,
		Name:       decl.Name,
		SizeParams: decl.SizeParams,
		Params:     params,
		RetType:    retType,
		Body:       body,
	}
	binding := Binding{SV: sv}
	if len(decl.SizeParams) > 0 {
		binding.Scheme = &SizeScheme{SizeParams: decl.SizeParams, Type: decl.DeclType()}
	}
	return out, binding, nil
}

// defuncDecl peels a declaration's parameters left to right. Each
// first-order parameter stays a parameter of the residual declaration and
// contributes one chain level to the binding's static value; the first
// higher-order parameter (if any) turns the remainder into a closure, and
// the declaration's body becomes that closure's capture record.
func (d *Defunctionalizer) defuncDecl(env *Env, params []ast.Pattern, body ast.Expression, ret types.Type) ([]ast.Pattern, ast.Expression, StaticVal, error) {
	if len(params) == 0 {
		body2, sv, err := d.transform(env, body)
		return nil, body2, sv, err
	}

	p := params[0]
	if !types.IsOrderZero(ast.PatternType(p)) {
		lam := foldLambda(params, body, ret)
		e, sv, err := d.transform(env, lam)
		return nil, e, sv, err
	}

	closureExpr, closureSV, err := d.transformLambda(env, foldLambda(params, body, ret))
	if err != nil {
		return nil, nil, nil, err
	}

	binds, err := d.matchPatSV(p, svFromType(ast.PatternType(p)))
	if err != nil {
		return nil, nil, nil, err
	}
	rest, body2, restSV, err := d.defuncDecl(env.Extend(binds...), params[1:], body, ret)
	if err != nil {
		return nil, nil, nil, err
	}
	sv := &DynamicFun{
		Closure: Closure{Expr: closureExpr, SV: closureSV},
		Rest:    restSV,
	}
	return append([]ast.Pattern{p}, rest...), body2, sv, nil
}

// foldLambda rebuilds the nested lambda form of a parameter list.
func foldLambda(params []ast.Pattern, body ast.Expression, ret types.Type) *ast.Lambda {
	tok := token.Synthetic("fn")
	if len(params) > 0 {
		tok = params[0].GetToken()
	}
	out := body
	retType := ret
	for i := len(params) - 1; i >= 0; i-- {
		out = &ast.Lambda{Token: tok, Param: params[i], RetType: retType, Body: out}
		retType = types.Func{Param: ast.PatternType(params[i]), Ret: retType}
	}
	return out.(*ast.Lambda)
}
