package defunc

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/fray-lang/fray/internal/ast"
	"github.com/fray-lang/fray/internal/config"
	"github.com/fray-lang/fray/internal/diagnostics"
	"github.com/fray-lang/fray/internal/types"
)

// transformApply handles an application spine. The head determines the
// strategy: intrinsics are applied (or eta-expanded) in place, names bound
// to first-order global functions stay direct calls, and everything else is
// applied one argument at a time through its static value.
func (d *Defunctionalizer) transformApply(env *Env, app *ast.Apply) (ast.Expression, StaticVal, error) {
	head, args := ast.UnApplySpine(app)

	if v, ok := head.(*ast.Var); ok {
		if _, bound := env.Lookup(v.Name); !bound {
			if _, global := d.globalEnv.Lookup(v.Name); !global && config.IsIntrinsic(v.Name) {
				return d.applyIntrinsic(env, app, v, args)
			}
		}
		sv, global, err := d.lookupVar(env, v)
		if err != nil {
			return nil, nil, err
		}
		// Only a declaration name supports a direct call; a local binding
		// that observed a function chain holds the closure representation
		// and is resolved through it instead.
		if df, ok := sv.(*DynamicFun); ok && global {
			if len(args) < df.Depth() {
				fexpr, chain, err := d.liftDynFun(v, df, len(args))
				if err != nil {
					return nil, nil, err
				}
				return d.applyDirect(env, fexpr, chain, args)
			}
			t, err := chainType(df)
			if err != nil {
				return nil, nil, d.internalErr(diagnostics.ErrD005, v.Token, "%v", err)
			}
			direct := args[:df.Depth()]
			fexpr, fsv, err := d.applyDirect(env, &ast.Var{Token: v.Token, Name: v.Name, Typ: t}, df, direct)
			if err != nil {
				return nil, nil, err
			}
			return d.applyArgs(env, fexpr, fsv, args[df.Depth():])
		}
	}

	fexpr, fsv, err := d.transform(env, head)
	if err != nil {
		return nil, nil, err
	}
	return d.applyArgs(env, fexpr, fsv, args)
}

// applyDirect consumes one chain level per argument, keeping the call on
// the declaration itself.
func (d *Defunctionalizer) applyDirect(env *Env, f ast.Expression, chain StaticVal, args []ast.Expression) (ast.Expression, StaticVal, error) {
	sv := chain
	for _, arg := range args {
		df, ok := sv.(*DynamicFun)
		if !ok {
			return nil, nil, d.internalErr(diagnostics.ErrD005, f.GetToken(),
				"function chain exhausted with arguments remaining")
		}
		arg2, _, err := d.transform(env, arg)
		if err != nil {
			return nil, nil, err
		}
		t, err := svCallType(df.Rest)
		if err != nil {
			return nil, nil, d.internalErr(diagnostics.ErrD005, f.GetToken(), "%v", err)
		}
		f = &ast.Apply{Token: f.GetToken(), Fun: f, Arg: arg2, Typ: t}
		sv = df.Rest
	}
	return f, sv, nil
}

func (d *Defunctionalizer) applyArgs(env *Env, f ast.Expression, fsv StaticVal, args []ast.Expression) (ast.Expression, StaticVal, error) {
	var err error
	for _, arg := range args {
		f, fsv, err = d.applyOne(env, f, fsv, arg)
		if err != nil {
			return nil, nil, err
		}
	}
	return f, fsv, nil
}

// applyOne applies a single argument to a residual function expression
// guided by the function's static value.
func (d *Defunctionalizer) applyOne(env *Env, f ast.Expression, fsv StaticVal, arg ast.Expression) (ast.Expression, StaticVal, error) {
	switch sv := fsv.(type) {
	case *LambdaClosure:
		return d.liftClosure(env, f, sv, arg)

	case *DynamicFun:
		// A chain observed through a local binding: the binding holds the
		// top level's closure representation, so apply through its closure.
		return d.applyOne(env, f, sv.Closure.SV, arg)

	case *IntrinsicSV:
		// A first-class intrinsic was bound to a variable; eta-expansion at
		// the binding site should have removed it.
		return nil, nil, d.internalErr(diagnostics.ErrD005, f.GetToken(),
			"intrinsic %q applied through a binding", sv.Name)

	case *HoleSV:
		if ft, ok := sv.Typ.(types.Func); ok {
			arg2, _, err := d.transform(env, arg)
			if err != nil {
				return nil, nil, err
			}
			return &ast.Apply{Token: f.GetToken(), Fun: f, Arg: arg2, Typ: ft.Ret},
				&HoleSV{Typ: ft.Ret}, nil
		}
		return nil, nil, d.internalErr(diagnostics.ErrD005, f.GetToken(),
			"hole of non-function type %s applied to an argument", sv.Typ)

	default:
		t, terr := typeOfSV(fsv)
		if terr != nil {
			t = nil
		}
		return nil, nil, d.internalErr(diagnostics.ErrD005, f.GetToken(),
			"cannot resolve application of value with static shape %T and type %v", fsv, t)
	}
}

// svCallType is the residual type of a value in function position: the
// first-order call type for a global function chain, the representation
// type otherwise.
func svCallType(sv StaticVal) (types.Type, error) {
	if df, ok := sv.(*DynamicFun); ok {
		return chainType(df)
	}
	return typeOfSV(sv)
}

// chainType computes the residual first-order type of a global function
// from its chain: one parameter per chain level, returning the
// representation type of the final static value.
func chainType(df *DynamicFun) (types.Type, error) {
	var params []types.Type
	cur := df
	for {
		lc, ok := cur.Closure.SV.(*LambdaClosure)
		if !ok {
			return nil, fmt.Errorf("malformed function chain level %T", cur.Closure.SV)
		}
		params = append(params, ast.PatternType(lc.Param))
		next, ok := cur.Rest.(*DynamicFun)
		if !ok {
			ret, err := typeOfSV(cur.Rest)
			if err != nil {
				return nil, err
			}
			return types.FuncType(params, ret), nil
		}
		cur = next
	}
}

// liftDynFun materializes a partial application of a global function as a
// fresh first-order declaration taking the supplied prefix of parameters
// and returning the capture record of the remaining closure. The returned
// static value is the chain truncated so the remaining applications land
// on that closure.
func (d *Defunctionalizer) liftDynFun(v *ast.Var, df *DynamicFun, depth int) (ast.Expression, StaticVal, error) {
	levels := make([]*DynamicFun, 0, df.Depth())
	cur := df
	for cur != nil {
		levels = append(levels, cur)
		next, _ := cur.Rest.(*DynamicFun)
		cur = next
	}
	if depth <= 0 || depth >= len(levels) {
		return nil, nil, d.internalErr(diagnostics.ErrD005, v.Token,
			"partial application depth %d out of range for %q", depth, v.Name)
	}

	params := make([]ast.Pattern, depth)
	paramTypes := make([]types.Type, depth)
	for i := 0; i < depth; i++ {
		lc, ok := levels[i].Closure.SV.(*LambdaClosure)
		if !ok {
			return nil, nil, d.internalErr(diagnostics.ErrD005, v.Token,
				"malformed function chain for %q", v.Name)
		}
		params[i] = lc.Param
		paramTypes[i] = ast.PatternType(lc.Param)
	}

	restLC, ok := levels[depth].Closure.SV.(*LambdaClosure)
	if !ok {
		return nil, nil, d.internalErr(diagnostics.ErrD005, v.Token,
			"malformed function chain for %q", v.Name)
	}
	body := levels[depth].Closure.Expr
	retType, err := typeOfSV(restLC)
	if err != nil {
		return nil, nil, d.internalErr(diagnostics.ErrD005, v.Token, "%v", err)
	}

	sizeParams := declSizeParams(paramTypes, retType)
	fname := d.state.Fresh(v.Name)
	d.state.EmitLifted(&ast.ValDecl{
		Token:      v.Token,
		Name:       fname,
		SizeParams: sizeParams,
		Params:     params,
		RetType:    retType,
		Body:       body,
	})

	// Rebuild the chain with the level past the supplied prefix replaced by
	// its closure, so each supplied argument is a direct call on the lifted
	// declaration.
	var rebuilt StaticVal = restLC
	for i := depth - 1; i >= 0; i-- {
		rebuilt = &DynamicFun{Closure: levels[i].Closure, Rest: rebuilt}
	}
	t := types.FuncType(paramTypes, retType)
	return &ast.Var{Token: v.Token, Name: fname, Typ: t}, rebuilt, nil
}

// applyIntrinsic handles an application whose head is a builtin primitive.
// Under-applied intrinsics are eta-expanded and re-transformed; saturated
// ones keep the direct call, with functional arguments in combinator
// positions defunctionalized in place.
func (d *Defunctionalizer) applyIntrinsic(env *Env, app *ast.Apply, v *ast.Var, args []ast.Expression) (ast.Expression, StaticVal, error) {
	intr := config.Intrinsics[v.Name]
	if len(args) < intr.Arity {
		lam := etaExpand(app.Token, app, app.Typ, d.state)
		return d.transform(env, lam)
	}

	out := make([]ast.Expression, len(args))
	for i, arg := range args {
		var (
			arg2 ast.Expression
			err  error
		)
		if config.IsSOACArg(v.Name, i) {
			arg2, err = d.defuncSoac(env, arg)
		} else {
			arg2, _, err = d.transform(env, arg)
		}
		if err != nil {
			return nil, nil, err
		}
		out[i] = arg2
	}
	res := ast.ApplySpine(app.Token, &ast.Var{Token: v.Token, Name: v.Name, Typ: v.Typ}, out...)
	return res, &Dynamic{Typ: res.Type()}, nil
}

// defuncSoac defunctionalizes the body of a functional argument in a
// combinator position while keeping the lambda itself, since the backend
// consumes such operators directly. A non-lambda argument is eta-expanded
// first.
func (d *Defunctionalizer) defuncSoac(env *Env, arg ast.Expression) (ast.Expression, error) {
	lam, ok := arg.(*ast.Lambda)
	if !ok {
		expanded := etaExpand(arg.GetToken(), arg, arg.Type(), d.state)
		lam, ok = expanded.(*ast.Lambda)
		if !ok {
			return nil, d.internalErr(diagnostics.ErrD005, arg.GetToken(),
				"combinator operand of non-function type %s", arg.Type())
		}
	}

	// Peel every leading lambda so a curried operator keeps its full
	// parameter spine.
	var lams []*ast.Lambda
	inner := ast.Expression(lam)
	bodyEnv := env
	for {
		l, ok := inner.(*ast.Lambda)
		if !ok {
			break
		}
		binds, err := d.matchPatSV(l.Param, svFromType(ast.PatternType(l.Param)))
		if err != nil {
			return nil, err
		}
		bodyEnv = bodyEnv.Extend(binds...)
		lams = append(lams, l)
		inner = l.Body
	}

	body, _, err := d.transform(bodyEnv, inner)
	if err != nil {
		return nil, err
	}
	for i := len(lams) - 1; i >= 0; i-- {
		l := lams[i]
		body = &ast.Lambda{Token: l.Token, Param: l.Param, RetType: l.RetType, Body: body}
	}
	return body, nil
}

// declSizeParams collects the size names free in a lifted declaration's
// parameter and return types, in first-occurrence order.
func declSizeParams(paramTypes []types.Type, ret types.Type) []string {
	var all []string
	for _, t := range paramTypes {
		all = append(all, types.FreeSizes(t)...)
	}
	all = append(all, types.FreeSizes(ret)...)
	return lo.Uniq(all)
}
