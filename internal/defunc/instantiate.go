package defunc

import (
	"github.com/fray-lang/fray/internal/ast"
	"github.com/fray-lang/fray/internal/diagnostics"
	"github.com/fray-lang/fray/internal/token"
	"github.com/fray-lang/fray/internal/types"
)

// svFreeSizes collects the size-variable names a static value might leak,
// including sizes implied by any contained closures.
func svFreeSizes(sv StaticVal) []string {
	var names []string
	seen := map[string]bool{}
	add := func(ns []string) {
		for _, n := range ns {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	var walk func(StaticVal)
	walk = func(sv StaticVal) {
		switch v := sv.(type) {
		case *Dynamic:
			add(types.FreeSizes(v.Typ))
		case *HoleSV:
			add(types.FreeSizes(v.Typ))
		case *RecordSV:
			for _, f := range v.Fields {
				walk(f.Val)
			}
		case *SumSV:
			for _, p := range v.Payload {
				walk(p)
			}
			for _, c := range v.Others {
				for _, t := range c.Payload {
					add(types.FreeSizes(t))
				}
			}
		case *LambdaClosure:
			add(types.FreeSizes(ast.PatternType(v.Param)))
			add(types.FreeSizes(v.RetType))
			for _, name := range v.Captured.Names() {
				b, _ := v.Captured.Lookup(name)
				walk(b.SV)
			}
		case *DynamicFun:
			walk(v.Closure.SV)
			walk(v.Rest)
		}
	}
	walk(sv)
	return names
}

// replaceStaticValSizes rewrites every size in a static value through the
// substitution. Size variables shadowed by a closure's own captured
// environment are skipped, checked by name membership rather than by value.
func replaceStaticValSizes(subst types.SizeSubst, sv StaticVal) StaticVal {
	if len(subst) == 0 {
		return sv
	}
	switch v := sv.(type) {
	case *Dynamic:
		return &Dynamic{Typ: types.ReplaceSizes(subst, v.Typ)}
	case *HoleSV:
		return &HoleSV{Typ: types.ReplaceSizes(subst, v.Typ)}
	case *RecordSV:
		fields := make([]SVField, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = SVField{Name: f.Name, Val: replaceStaticValSizes(subst, f.Val)}
		}
		return &RecordSV{Fields: fields}
	case *SumSV:
		payload := make([]StaticVal, len(v.Payload))
		for i, p := range v.Payload {
			payload[i] = replaceStaticValSizes(subst, p)
		}
		others := make([]types.Constructor, len(v.Others))
		for i, c := range v.Others {
			ts := make([]types.Type, len(c.Payload))
			for j, t := range c.Payload {
				ts[j] = types.ReplaceSizes(subst, t)
			}
			others[i] = types.Constructor{Name: c.Name, Payload: ts}
		}
		return &SumSV{Constructor: v.Constructor, Payload: payload, Others: others}
	case *LambdaClosure:
		inner := subst
		if shadowed := v.Captured.Names(); len(shadowed) > 0 {
			inner = make(types.SizeSubst, len(subst))
			for k, s := range subst {
				inner[k] = s
			}
			for _, n := range shadowed {
				delete(inner, n)
			}
		}
		captured := v.Captured
		if len(inner) > 0 {
			binds := make([]EnvBinding, 0, captured.Len())
			for _, name := range captured.Names() {
				b, _ := captured.Lookup(name)
				binds = append(binds, EnvBinding{
					Name:    name,
					Binding: Binding{Scheme: b.Scheme, SV: replaceStaticValSizes(inner, b.SV)},
				})
			}
			captured = NewEnv().Extend(binds...)
		}
		return &LambdaClosure{
			Param:    ast.ReplaceSizesPat(inner, v.Param),
			RetType:  types.ReplaceSizes(inner, v.RetType),
			Body:     ast.ReplaceSizesExpr(inner, v.Body),
			Captured: captured,
			Hint:     v.Hint,
		}
	case *DynamicFun:
		return &DynamicFun{
			Closure: Closure{
				Expr: ast.ReplaceSizesExpr(subst, v.Closure.Expr),
				SV:   replaceStaticValSizes(subst, v.Closure.SV),
			},
			Rest: replaceStaticValSizes(subst, v.Rest),
		}
	default:
		return sv
	}
}

// instStaticVal instantiates a size-polymorphic binding's static value at a
// use site. Every quantified size the value might leak is freshened first
// to avoid capture across multiple instantiations, then the dimension
// mapping between the freshened generic type and the concrete use-site
// type is applied. A quantified size the use site cannot resolve is an
// internal-consistency violation.
func (d *Defunctionalizer) instStaticVal(tok token.Token, quantified []string, generic, concrete types.Type, sv StaticVal) (StaticVal, error) {
	leakable := map[string]bool{}
	for _, n := range types.FreeSizes(generic) {
		leakable[n] = true
	}
	for _, n := range svFreeSizes(sv) {
		leakable[n] = true
	}

	freshen := types.SizeSubst{}
	var freshNames []string
	var origNames []string
	for _, q := range quantified {
		if !leakable[q] {
			continue
		}
		fresh := d.state.FreshSize(q)
		freshen[q] = types.NamedSize{Name: fresh}
		freshNames = append(freshNames, fresh)
		origNames = append(origNames, q)
	}
	if len(freshen) == 0 {
		return sv, nil
	}

	genericFresh := types.ReplaceSizes(freshen, generic)
	mapping := types.DimMapping(genericFresh, concrete)
	// Only the quantified (now freshened) sizes may be rewritten by the
	// use-site mapping; anything else the mapping picked up belongs to the
	// matched structure itself.
	restricted := types.SizeSubst{}
	for i, fresh := range freshNames {
		s, ok := mapping[fresh]
		if !ok {
			return nil, d.internalErr(diagnostics.ErrD003, tok,
				"no substitution for quantified size %q at use site of type %s", origNames[i], concrete)
		}
		restricted[fresh] = s
	}
	return replaceStaticValSizes(freshen.Compose(restricted), sv), nil
}
