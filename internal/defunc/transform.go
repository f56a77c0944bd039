package defunc

import (
	"fmt"

	"github.com/fray-lang/fray/internal/ast"
	"github.com/fray-lang/fray/internal/config"
	"github.com/fray-lang/fray/internal/diagnostics"
	"github.com/fray-lang/fray/internal/token"
	"github.com/fray-lang/fray/internal/types"
)

// Defunctionalizer carries the state of one run over a program: the
// sequential mutable State and the environment of already-processed
// top-level bindings. Local environments are threaded explicitly through
// the recursive descent.
type Defunctionalizer struct {
	state     *State
	globalEnv *Env
	declName  string // declaration currently being processed, for diagnostics
	liftHint  string // origin of the closure being transformed, for lifted names
}

func New(counter *int) *Defunctionalizer {
	return &Defunctionalizer{state: NewState(counter), globalEnv: NewEnv()}
}

func (d *Defunctionalizer) internalErr(code diagnostics.Code, tok token.Token, format string, args ...interface{}) error {
	return diagnostics.NewInternal(code, tok, fmt.Sprintf(format, args...)).WithDecl(d.declName)
}

// lookupVar resolves a name to its binding, instantiating any size scheme
// at the use-site type. The second result reports whether the name resolved
// to a top-level declaration rather than a local binding; only those may be
// called directly by name. Names bound in neither environment nor the
// intrinsic table violate the front end's guarantees.
func (d *Defunctionalizer) lookupVar(env *Env, v *ast.Var) (StaticVal, bool, error) {
	global := false
	b, ok := env.Lookup(v.Name)
	if !ok {
		b, ok = d.globalEnv.Lookup(v.Name)
		global = ok
	}
	if ok {
		if b.Scheme != nil && len(b.Scheme.SizeParams) > 0 {
			sv, err := d.instStaticVal(v.Token, b.Scheme.SizeParams, b.Scheme.Type, v.Typ, b.SV)
			return sv, global, err
		}
		return b.SV, global, nil
	}
	if config.IsIntrinsic(v.Name) {
		return &IntrinsicSV{Name: v.Name}, false, nil
	}
	return nil, false, d.internalErr(diagnostics.ErrD004, v.Token, "variable %q is not in scope", v.Name)
}

// transform walks one expression, producing the residual (order-zero
// compatible) expression together with its static value.
func (d *Defunctionalizer) transform(env *Env, e ast.Expression) (ast.Expression, StaticVal, error) {
	switch expr := e.(type) {
	case *ast.Literal:
		return expr, &Dynamic{Typ: expr.Typ}, nil

	case *ast.Hole:
		return expr, &HoleSV{Typ: expr.Typ}, nil

	case *ast.Var:
		sv, global, err := d.lookupVar(env, expr)
		if err != nil {
			return nil, nil, err
		}
		switch v := sv.(type) {
		case *DynamicFun:
			if global {
				// A declaration name used as a value becomes its closure
				// representation.
				return v.Closure.Expr, v, nil
			}
			t, err := typeOfSV(sv)
			if err != nil {
				return nil, nil, d.internalErr(diagnostics.ErrD005, expr.Token, "%v", err)
			}
			return &ast.Var{Token: expr.Token, Name: expr.Name, Typ: t}, sv, nil
		case *IntrinsicSV:
			// Intrinsics never appear as bare higher-order values.
			lam := etaExpand(expr.Token, expr, expr.Typ, d.state)
			return d.transform(env, lam)
		default:
			t, err := typeOfSV(sv)
			if err != nil {
				return nil, nil, d.internalErr(diagnostics.ErrD005, expr.Token, "%v", err)
			}
			return &ast.Var{Token: expr.Token, Name: expr.Name, Typ: t}, sv, nil
		}

	case *ast.TupleLit:
		elems := make([]ast.Expression, len(expr.Elems))
		fields := make([]SVField, len(expr.Elems))
		for i, el := range expr.Elems {
			el2, sv, err := d.transform(env, el)
			if err != nil {
				return nil, nil, err
			}
			elems[i] = el2
			fields[i] = SVField{Name: types.TupleFieldName(i), Val: sv}
		}
		return &ast.TupleLit{Token: expr.Token, Elems: elems}, &RecordSV{Fields: fields}, nil

	case *ast.RecordLit:
		return d.transformRecordLit(env, expr)

	case *ast.RecordUpdate:
		rec, recSV, err := d.transform(env, expr.Record)
		if err != nil {
			return nil, nil, err
		}
		val, valSV, err := d.transform(env, expr.Value)
		if err != nil {
			return nil, nil, err
		}
		outSV := recSV
		if r, ok := recSV.(*RecordSV); ok {
			fields := make([]SVField, len(r.Fields))
			copy(fields, r.Fields)
			for i, f := range fields {
				if f.Name == expr.Field {
					fields[i] = SVField{Name: f.Name, Val: valSV}
				}
			}
			outSV = &RecordSV{Fields: fields}
		}
		return &ast.RecordUpdate{Token: expr.Token, Record: rec, Field: expr.Field, Value: val}, outSV, nil

	case *ast.Project:
		rec, recSV, err := d.transform(env, expr.Record)
		if err != nil {
			return nil, nil, err
		}
		if r, ok := recSV.(*RecordSV); ok {
			if sv, ok := r.FieldVal(expr.Field); ok {
				t, err := typeOfSV(sv)
				if err != nil {
					return nil, nil, d.internalErr(diagnostics.ErrD005, expr.Token, "%v", err)
				}
				return &ast.Project{Token: expr.Token, Record: rec, Field: expr.Field, Typ: t}, sv, nil
			}
		}
		return &ast.Project{Token: expr.Token, Record: rec, Field: expr.Field, Typ: expr.Typ},
			&Dynamic{Typ: expr.Typ}, nil

	case *ast.ArrayLit:
		elems := make([]ast.Expression, len(expr.Elems))
		for i, el := range expr.Elems {
			el2, _, err := d.transform(env, el)
			if err != nil {
				return nil, nil, err
			}
			elems[i] = el2
		}
		return &ast.ArrayLit{Token: expr.Token, Elems: elems, Typ: expr.Typ}, &Dynamic{Typ: expr.Typ}, nil

	case *ast.Range:
		start, _, err := d.transform(env, expr.Start)
		if err != nil {
			return nil, nil, err
		}
		var step ast.Expression
		if expr.Step != nil {
			step, _, err = d.transform(env, expr.Step)
			if err != nil {
				return nil, nil, err
			}
		}
		end, _, err := d.transform(env, expr.End)
		if err != nil {
			return nil, nil, err
		}
		return &ast.Range{Token: expr.Token, Start: start, Step: step, End: end, Typ: expr.Typ},
			&Dynamic{Typ: expr.Typ}, nil

	case *ast.Ascript:
		inner, sv, err := d.transform(env, expr.Expr)
		if err != nil {
			return nil, nil, err
		}
		if types.IsOrderZero(expr.Ann) {
			return &ast.Ascript{Token: expr.Token, Expr: inner, Ann: expr.Ann, Coercion: expr.Coercion}, sv, nil
		}
		// The annotation was only needed for a functional value, which no
		// longer carries a surface type after defunctionalization.
		return inner, sv, nil

	case *ast.Let:
		return d.transformLet(env, expr)

	case *ast.If:
		cond, _, err := d.transform(env, expr.Cond)
		if err != nil {
			return nil, nil, err
		}
		then, thenSV, err := d.transform(env, expr.Then)
		if err != nil {
			return nil, nil, err
		}
		els, _, err := d.transform(env, expr.Else)
		if err != nil {
			return nil, nil, err
		}
		return &ast.If{Token: expr.Token, Cond: cond, Then: then, Else: els}, thenSV, nil

	case *ast.Apply:
		return d.transformApply(env, expr)

	case *ast.Negate:
		inner, sv, err := d.transform(env, expr.Expr)
		if err != nil {
			return nil, nil, err
		}
		return &ast.Negate{Token: expr.Token, Expr: inner}, sv, nil

	case *ast.Not:
		inner, sv, err := d.transform(env, expr.Expr)
		if err != nil {
			return nil, nil, err
		}
		return &ast.Not{Token: expr.Token, Expr: inner}, sv, nil

	case *ast.Lambda:
		return d.transformLambda(env, expr)

	case *ast.Loop:
		return d.transformLoop(env, expr)

	case *ast.LetWith:
		return d.transformLetWith(env, expr)

	case *ast.Index:
		arr, _, err := d.transform(env, expr.Array)
		if err != nil {
			return nil, nil, err
		}
		indices, err := d.transformAll(env, expr.Indices)
		if err != nil {
			return nil, nil, err
		}
		return &ast.Index{Token: expr.Token, Array: arr, Indices: indices, Typ: expr.Typ},
			&Dynamic{Typ: expr.Typ}, nil

	case *ast.Update:
		arr, arrSV, err := d.transform(env, expr.Array)
		if err != nil {
			return nil, nil, err
		}
		indices, err := d.transformAll(env, expr.Indices)
		if err != nil {
			return nil, nil, err
		}
		val, _, err := d.transform(env, expr.Value)
		if err != nil {
			return nil, nil, err
		}
		// The in-place update keeps the updated value's static value.
		return &ast.Update{Token: expr.Token, Array: arr, Indices: indices, Value: val}, arrSV, nil

	case *ast.Assert:
		cond, _, err := d.transform(env, expr.Cond)
		if err != nil {
			return nil, nil, err
		}
		inner, sv, err := d.transform(env, expr.Expr)
		if err != nil {
			return nil, nil, err
		}
		return &ast.Assert{Token: expr.Token, Cond: cond, Expr: inner}, sv, nil

	case *ast.Construct:
		return d.transformConstruct(env, expr)

	case *ast.Match:
		return d.transformMatch(env, expr)

	case *ast.Attr:
		inner, sv, err := d.transform(env, expr.Expr)
		if err != nil {
			return nil, nil, err
		}
		return &ast.Attr{Token: expr.Token, Name: expr.Name, Expr: inner}, sv, nil

	default:
		return nil, nil, d.internalErr(diagnostics.ErrD001, e.GetToken(), "unhandled expression form %T", e)
	}
}

func (d *Defunctionalizer) transformAll(env *Env, es []ast.Expression) ([]ast.Expression, error) {
	out := make([]ast.Expression, len(es))
	for i, e := range es {
		e2, _, err := d.transform(env, e)
		if err != nil {
			return nil, err
		}
		out[i] = e2
	}
	return out, nil
}

// transformLambda reifies a lambda into its capture record. The residual
// expression is a record literal holding the lambda's free variables that
// are not global at the point of capture; the lambda itself survives only
// inside the returned LambdaClosure and is lifted when applied.
func (d *Defunctionalizer) transformLambda(env *Env, lam *ast.Lambda) (ast.Expression, StaticVal, error) {
	fv := ast.FreeVars(lam)
	captured := env.Restrict(fv)
	lit, err := d.captureRecordLit(lam.Token, captured)
	if err != nil {
		return nil, nil, d.internalErr(diagnostics.ErrD005, lam.Token, "%v", err)
	}
	sv := &LambdaClosure{
		Param:    lam.Param,
		RetType:  lam.RetType,
		Body:     lam.Body,
		Captured: captured,
		Hint:     d.liftHint,
	}
	return lit, sv, nil
}

// captureRecordLit builds the record literal carrying a closure's captured
// environment, in canonical field order.
func (d *Defunctionalizer) captureRecordLit(tok token.Token, captured *Env) (ast.Expression, error) {
	fields := make([]ast.RecordField, 0, captured.Len())
	for _, name := range captured.Names() {
		b, _ := captured.Lookup(name)
		t, err := typeOfSV(b.SV)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.RecordField{
			Token: tok,
			Name:  name,
			Value: &ast.Var{Token: tok, Name: name, Typ: t},
		})
	}
	return &ast.RecordLit{Token: tok, Fields: fields}, nil
}

func (d *Defunctionalizer) transformRecordLit(env *Env, rec *ast.RecordLit) (ast.Expression, StaticVal, error) {
	fields := make([]ast.RecordField, len(rec.Fields))
	svFields := make([]SVField, len(rec.Fields))
	for i, f := range rec.Fields {
		var value ast.Expression
		if f.Value != nil {
			value = f.Value
		} else {
			value = &ast.Var{Token: f.Token, Name: f.Name, Typ: f.Typ}
		}
		v2, sv, err := d.transform(env, value)
		if err != nil {
			return nil, nil, err
		}
		// An implicit field can stay implicit only if its residual is still
		// a reference to the same name; a DynamicFun becomes an explicit
		// field carrying the function's closure expression.
		if f.Value == nil {
			if v, ok := v2.(*ast.Var); ok && v.Name == f.Name {
				fields[i] = ast.RecordField{Token: f.Token, Name: f.Name, Typ: v.Typ}
			} else {
				fields[i] = ast.RecordField{Token: f.Token, Name: f.Name, Value: v2}
			}
		} else {
			fields[i] = ast.RecordField{Token: f.Token, Name: f.Name, Value: v2}
		}
		svFields[i] = SVField{Name: f.Name, Val: sv}
	}
	sortSVFields(svFields)
	return &ast.RecordLit{Token: rec.Token, Fields: fields}, &RecordSV{Fields: svFields}, nil
}

func (d *Defunctionalizer) transformLet(env *Env, let *ast.Let) (ast.Expression, StaticVal, error) {
	value, valueSV, err := d.transform(env, let.Value)
	if err != nil {
		return nil, nil, err
	}
	pat, err := d.updatePat(let.Pat, valueSV)
	if err != nil {
		return nil, nil, err
	}
	binds, err := d.matchPatSV(let.Pat, valueSV)
	if err != nil {
		return nil, nil, err
	}
	bodyEnv := env
	// Existential size binders are ordinary i64 values in the body.
	for _, s := range let.SizeBinders {
		bodyEnv = bodyEnv.Extend(EnvBinding{Name: s, Binding: Binding{SV: &Dynamic{Typ: types.Prim{Name: "i64"}}}})
	}
	body, bodySV, err := d.transform(bodyEnv.Extend(binds...), let.Body)
	if err != nil {
		return nil, nil, err
	}
	// Any size that went out of scope with the binding is re-derived by
	// mapping the body's pre-transform type onto its post-transform type
	// and rewriting the declared result type accordingly.
	mapping := types.DimMapping(let.Body.Type(), body.Type())
	typ := types.ReplaceSizes(mapping, let.Typ)
	return &ast.Let{
		Token:       let.Token,
		SizeBinders: let.SizeBinders,
		Pat:         pat,
		Value:       value,
		Body:        body,
		Typ:         typ,
	}, bodySV, nil
}

func (d *Defunctionalizer) transformLoop(env *Env, loop *ast.Loop) (ast.Expression, StaticVal, error) {
	init, _, err := d.transform(env, loop.Init)
	if err != nil {
		return nil, nil, err
	}
	accType := ast.PatternType(loop.Pat)
	binds, err := d.matchPatSV(loop.Pat, svFromType(accType))
	if err != nil {
		return nil, nil, err
	}
	accEnv := env.Extend(binds...)

	var form ast.LoopForm
	bodyEnv := accEnv
	switch f := loop.Form.(type) {
	case ast.ForCount:
		bound, _, err := d.transform(env, f.Bound)
		if err != nil {
			return nil, nil, err
		}
		form = ast.ForCount{Var: f.Var, VarType: f.VarType, Bound: bound}
		bodyEnv = accEnv.Extend(EnvBinding{Name: f.Var, Binding: Binding{SV: &Dynamic{Typ: f.VarType}}})
	case ast.ForIn:
		arr, _, err := d.transform(env, f.Array)
		if err != nil {
			return nil, nil, err
		}
		elemBinds, err := d.matchPatSV(f.Elem, svFromType(ast.PatternType(f.Elem)))
		if err != nil {
			return nil, nil, err
		}
		form = ast.ForIn{Elem: f.Elem, Array: arr}
		bodyEnv = accEnv.Extend(elemBinds...)
	case ast.While:
		// The condition sees the accumulator's bindings.
		cond, _, err := d.transform(accEnv, f.Cond)
		if err != nil {
			return nil, nil, err
		}
		form = ast.While{Cond: cond}
	default:
		return nil, nil, d.internalErr(diagnostics.ErrD001, loop.Token, "unhandled loop form %T", loop.Form)
	}

	body, _, err := d.transform(bodyEnv, loop.Body)
	if err != nil {
		return nil, nil, err
	}
	return &ast.Loop{Token: loop.Token, Pat: loop.Pat, Init: init, Form: form, Body: body},
		&Dynamic{Typ: accType}, nil
}

func (d *Defunctionalizer) transformLetWith(env *Env, lw *ast.LetWith) (ast.Expression, StaticVal, error) {
	src, _, err := d.transform(env, lw.Src)
	if err != nil {
		return nil, nil, err
	}
	srcVar, ok := src.(*ast.Var)
	if !ok {
		return nil, nil, d.internalErr(diagnostics.ErrD001, lw.Token, "in-place update source is not a variable")
	}
	indices, err := d.transformAll(env, lw.Indices)
	if err != nil {
		return nil, nil, err
	}
	value, _, err := d.transform(env, lw.Value)
	if err != nil {
		return nil, nil, err
	}
	destEnv := env.Extend(EnvBinding{Name: lw.Dest, Binding: Binding{SV: &Dynamic{Typ: srcVar.Typ}}})
	body, bodySV, err := d.transform(destEnv, lw.Body)
	if err != nil {
		return nil, nil, err
	}
	return &ast.LetWith{
		Token:   lw.Token,
		Dest:    lw.Dest,
		Src:     srcVar,
		Indices: indices,
		Value:   value,
		Body:    body,
	}, bodySV, nil
}

func (d *Defunctionalizer) transformConstruct(env *Env, c *ast.Construct) (ast.Expression, StaticVal, error) {
	payload := make([]ast.Expression, len(c.Payload))
	payloadSV := make([]StaticVal, len(c.Payload))
	for i, p := range c.Payload {
		p2, sv, err := d.transform(env, p)
		if err != nil {
			return nil, nil, err
		}
		payload[i] = p2
		payloadSV[i] = sv
	}
	sum, ok := c.Typ.(types.Sum)
	if !ok {
		return nil, nil, d.internalErr(diagnostics.ErrD002, c.Token,
			"constructor %q applied at non-sum type %s", c.Name, c.Typ)
	}
	// The remaining constructors keep their declared types with any
	// function-typed component structurally collapsed, matching the shape
	// closures of that payload take.
	var others []types.Constructor
	for _, ctor := range sum.Constructors {
		if ctor.Name == c.Name {
			continue
		}
		stripped := make([]types.Type, len(ctor.Payload))
		for i, t := range ctor.Payload {
			stripped[i] = types.StripFuncs(t)
		}
		others = append(others, types.Constructor{Name: ctor.Name, Payload: stripped})
	}
	sv := &SumSV{Constructor: c.Name, Payload: payloadSV, Others: others}
	t, err := typeOfSV(sv)
	if err != nil {
		return nil, nil, d.internalErr(diagnostics.ErrD005, c.Token, "%v", err)
	}
	return &ast.Construct{Token: c.Token, Name: c.Name, Payload: payload, Typ: t}, sv, nil
}

func (d *Defunctionalizer) transformMatch(env *Env, m *ast.Match) (ast.Expression, StaticVal, error) {
	scrut, scrutSV, err := d.transform(env, m.Scrutinee)
	if err != nil {
		return nil, nil, err
	}
	// When the scrutinee's constructor is statically known, the match's
	// static value comes from the case that will actually be taken; the
	// other cases still produce well-typed residual code.
	taken := 0
	if sum, ok := scrutSV.(*SumSV); ok {
		for i, c := range m.Cases {
			cp, ok := c.Pat.(*ast.ConstructorPattern)
			if ok && cp.Name == sum.Constructor {
				taken = i
				break
			}
		}
	}

	cases := make([]*ast.MatchCase, len(m.Cases))
	var resultSV StaticVal
	for i, c := range m.Cases {
		binds, err := d.matchPatSV(c.Pat, scrutSV)
		if err != nil {
			return nil, nil, err
		}
		pat, err := d.updatePat(c.Pat, scrutSV)
		if err != nil {
			return nil, nil, err
		}
		body, bodySV, err := d.transform(env.Extend(binds...), c.Body)
		if err != nil {
			return nil, nil, err
		}
		cases[i] = &ast.MatchCase{Pat: pat, Body: body}
		if i == taken {
			resultSV = bodySV
		}
	}
	return &ast.Match{Token: m.Token, Scrutinee: scrut, Cases: cases}, resultSV, nil
}

func sortSVFields(fields []SVField) {
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0 && types.FieldNameLess(fields[j].Name, fields[j-1].Name); j-- {
			fields[j], fields[j-1] = fields[j-1], fields[j]
		}
	}
}

// etaExpand wraps a function-typed expression in lambdas with fresh
// parameters matching its arity, so the wrapped value can be transformed
// as an ordinary application.
func etaExpand(tok token.Token, e ast.Expression, t types.Type, state *State) ast.Expression {
	params, ret := types.UncurryFunc(t)
	if len(params) == 0 {
		return e
	}
	pats := make([]ast.Pattern, len(params))
	args := make([]ast.Expression, len(params))
	for i, pt := range params {
		name := state.Fresh("eta")
		pats[i] = &ast.IdentPattern{Token: token.Synthetic(name), Name: name, Typ: pt}
		args[i] = &ast.Var{Token: token.Synthetic(name), Name: name, Typ: pt}
	}
	body := ast.ApplySpine(tok, e, args...)
	out := body
	retType := ret
	for i := len(pats) - 1; i >= 0; i-- {
		out = &ast.Lambda{Token: tok, Param: pats[i], RetType: retType, Body: out}
		retType = types.Func{Param: params[i], Ret: retType}
	}
	return out
}
