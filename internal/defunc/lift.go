package defunc

import (
	"sort"

	"github.com/fray-lang/fray/internal/ast"
	"github.com/fray-lang/fray/internal/diagnostics"
	"github.com/fray-lang/fray/internal/token"
	"github.com/fray-lang/fray/internal/types"
)

// liftClosure resolves the application of a closure by emitting a fresh
// top-level declaration whose first parameter is the closure's capture
// record and whose second is the original parameter, then rewriting the
// call site to pass the capture record explicitly.
func (d *Defunctionalizer) liftClosure(env *Env, f ast.Expression, lc *LambdaClosure, arg ast.Expression) (ast.Expression, StaticVal, error) {
	arg2, argSV, err := d.transform(env, arg)
	if err != nil {
		return nil, nil, err
	}
	pat, err := d.updatePat(lc.Param, argSV)
	if err != nil {
		return nil, nil, err
	}
	binds, err := d.matchPatSV(lc.Param, argSV)
	if err != nil {
		return nil, nil, err
	}

	// Lambdas nested in the body belong to the same call chain as the
	// closure being lifted, so they inherit its name hint.
	prevHint := d.liftHint
	if lc.Hint != "" {
		d.liftHint = lc.Hint
	}
	body, bodySV, err := d.transform(lc.Captured.Extend(binds...), lc.Body)
	d.liftHint = prevHint
	if err != nil {
		return nil, nil, err
	}

	envType, err := lc.Captured.RecordType()
	if err != nil {
		return nil, nil, d.internalErr(diagnostics.ErrD005, f.GetToken(), "%v", err)
	}
	envPat, err := d.capturePattern(lc.Captured)
	if err != nil {
		return nil, nil, d.internalErr(diagnostics.ErrD005, f.GetToken(), "%v", err)
	}
	paramType := ast.PatternType(pat)

	// The lifted function may return an alias of either argument, so its
	// result is never unique unless uniqueness flows in through a
	// parameter.
	retType := body.Type()
	if !types.HasUnique(envType) && !types.HasUnique(paramType) {
		retType = types.NonUnique(retType)
	}

	sizeParams := declSizeParams([]types.Type{envType, paramType}, retType)
	fname := d.state.Fresh(liftedBase(lc.Hint))
	d.state.EmitLifted(&ast.ValDecl{
		Token:      f.GetToken(),
		Name:       fname,
		SizeParams: sizeParams,
		Params:     []ast.Pattern{envPat, pat},
		RetType:    retType,
		Body:       body,
	})

	fnType := types.FuncType([]types.Type{envType, paramType}, retType)
	call := ast.ApplySpine(f.GetToken(),
		&ast.Var{Token: f.GetToken(), Name: fname, Typ: fnType}, f, arg2)
	return call, bodySV, nil
}

// capturePattern builds the record pattern destructuring a closure's
// capture record, in canonical field order.
func (d *Defunctionalizer) capturePattern(captured *Env) (ast.Pattern, error) {
	fields := make([]ast.PatField, 0, captured.Len())
	for _, name := range captured.Names() {
		b, _ := captured.Lookup(name)
		t, err := typeOfSV(b.SV)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.PatField{
			Name: name,
			Pat:  &ast.IdentPattern{Token: token.Synthetic(name), Name: name, Typ: t},
		})
	}
	sort.SliceStable(fields, func(i, j int) bool {
		return types.FieldNameLess(fields[i].Name, fields[j].Name)
	})
	return &ast.RecordPattern{Fields: fields}, nil
}

func liftedBase(hint string) string {
	if hint == "" {
		return "lambda"
	}
	return hint
}
