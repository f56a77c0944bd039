package ast

import (
	"github.com/fray-lang/fray/internal/types"
)

// ReplaceSizesExpr rewrites every size annotation in the expression through
// the substitution, and rewrites references to substituted size variables
// in expression position: a name mapped to a constant becomes an integer
// literal, a name mapped to another name becomes a reference to that name.
// Existential size binders shadow the substitution in their scope.
func ReplaceSizesExpr(subst types.SizeSubst, e Expression) Expression {
	if len(subst) == 0 || e == nil {
		return e
	}
	sub := func(e Expression) Expression { return ReplaceSizesExpr(subst, e) }
	subT := func(t types.Type) types.Type { return types.ReplaceSizes(subst, t) }

	switch expr := e.(type) {
	case *Literal:
		return &Literal{Token: expr.Token, Value: expr.Value, Typ: subT(expr.Typ)}
	case *Var:
		if repl, ok := subst[expr.Name]; ok {
			switch sz := repl.(type) {
			case types.ConstSize:
				return IntLit(sz.N)
			case types.NamedSize:
				return &Var{Token: expr.Token, Name: sz.Name, Typ: subT(expr.Typ)}
			}
		}
		return &Var{Token: expr.Token, Name: expr.Name, Typ: subT(expr.Typ)}
	case *TupleLit:
		return &TupleLit{Token: expr.Token, Elems: mapExprs(expr.Elems, sub)}
	case *RecordLit:
		fields := make([]RecordField, len(expr.Fields))
		for i, f := range expr.Fields {
			fields[i] = RecordField{Token: f.Token, Name: f.Name, Value: sub(f.Value), Typ: subT(f.Typ)}
		}
		return &RecordLit{Token: expr.Token, Fields: fields}
	case *RecordUpdate:
		return &RecordUpdate{Token: expr.Token, Record: sub(expr.Record), Field: expr.Field, Value: sub(expr.Value)}
	case *Project:
		return &Project{Token: expr.Token, Record: sub(expr.Record), Field: expr.Field, Typ: subT(expr.Typ)}
	case *ArrayLit:
		return &ArrayLit{Token: expr.Token, Elems: mapExprs(expr.Elems, sub), Typ: subT(expr.Typ)}
	case *Range:
		return &Range{Token: expr.Token, Start: sub(expr.Start), Step: sub(expr.Step), End: sub(expr.End), Typ: subT(expr.Typ)}
	case *Ascript:
		return &Ascript{Token: expr.Token, Expr: sub(expr.Expr), Ann: subT(expr.Ann), Coercion: expr.Coercion}
	case *Let:
		// The pattern's declared types and the result type can mention the
		// binders, so only the value sees the outer substitution.
		inner := withoutSizes(subst, expr.SizeBinders)
		return &Let{
			Token:       expr.Token,
			SizeBinders: expr.SizeBinders,
			Pat:         ReplaceSizesPat(inner, expr.Pat),
			Value:       sub(expr.Value),
			Body:        ReplaceSizesExpr(inner, expr.Body),
			Typ:         types.ReplaceSizes(inner, expr.Typ),
		}
	case *If:
		return &If{Token: expr.Token, Cond: sub(expr.Cond), Then: sub(expr.Then), Else: sub(expr.Else)}
	case *Apply:
		return &Apply{Token: expr.Token, Fun: sub(expr.Fun), Arg: sub(expr.Arg), Typ: subT(expr.Typ)}
	case *Negate:
		return &Negate{Token: expr.Token, Expr: sub(expr.Expr)}
	case *Not:
		return &Not{Token: expr.Token, Expr: sub(expr.Expr)}
	case *Lambda:
		return &Lambda{
			Token:   expr.Token,
			Param:   ReplaceSizesPat(subst, expr.Param),
			RetType: subT(expr.RetType),
			Body:    sub(expr.Body),
		}
	case *Loop:
		var form LoopForm
		switch f := expr.Form.(type) {
		case ForCount:
			form = ForCount{Var: f.Var, VarType: subT(f.VarType), Bound: sub(f.Bound)}
		case ForIn:
			form = ForIn{Elem: ReplaceSizesPat(subst, f.Elem), Array: sub(f.Array)}
		case While:
			form = While{Cond: sub(f.Cond)}
		}
		return &Loop{Token: expr.Token, Pat: ReplaceSizesPat(subst, expr.Pat), Init: sub(expr.Init), Form: form, Body: sub(expr.Body)}
	case *LetWith:
		return &LetWith{
			Token:   expr.Token,
			Dest:    expr.Dest,
			Src:     sub(expr.Src).(*Var),
			Indices: mapExprs(expr.Indices, sub),
			Value:   sub(expr.Value),
			Body:    sub(expr.Body),
		}
	case *Index:
		return &Index{Token: expr.Token, Array: sub(expr.Array), Indices: mapExprs(expr.Indices, sub), Typ: subT(expr.Typ)}
	case *Update:
		return &Update{Token: expr.Token, Array: sub(expr.Array), Indices: mapExprs(expr.Indices, sub), Value: sub(expr.Value)}
	case *Assert:
		return &Assert{Token: expr.Token, Cond: sub(expr.Cond), Expr: sub(expr.Expr)}
	case *Construct:
		return &Construct{Token: expr.Token, Name: expr.Name, Payload: mapExprs(expr.Payload, sub), Typ: subT(expr.Typ)}
	case *Match:
		cases := make([]*MatchCase, len(expr.Cases))
		for i, c := range expr.Cases {
			cases[i] = &MatchCase{Pat: ReplaceSizesPat(subst, c.Pat), Body: sub(c.Body)}
		}
		return &Match{Token: expr.Token, Scrutinee: sub(expr.Scrutinee), Cases: cases}
	case *Attr:
		return &Attr{Token: expr.Token, Name: expr.Name, Expr: sub(expr.Expr)}
	case *Hole:
		return &Hole{Token: expr.Token, Typ: subT(expr.Typ)}
	default:
		return e
	}
}

// ReplaceSizesPat rewrites the declared types inside a pattern.
func ReplaceSizesPat(subst types.SizeSubst, p Pattern) Pattern {
	if len(subst) == 0 || p == nil {
		return p
	}
	switch pat := p.(type) {
	case *WildcardPattern:
		return &WildcardPattern{Token: pat.Token, Typ: types.ReplaceSizes(subst, pat.Typ)}
	case *IdentPattern:
		return &IdentPattern{Token: pat.Token, Name: pat.Name, Typ: types.ReplaceSizes(subst, pat.Typ)}
	case *TuplePattern:
		elems := make([]Pattern, len(pat.Elems))
		for i, e := range pat.Elems {
			elems[i] = ReplaceSizesPat(subst, e)
		}
		return &TuplePattern{Token: pat.Token, Elems: elems}
	case *RecordPattern:
		fields := make([]PatField, len(pat.Fields))
		for i, f := range pat.Fields {
			fields[i] = PatField{Name: f.Name, Pat: ReplaceSizesPat(subst, f.Pat)}
		}
		return &RecordPattern{Token: pat.Token, Fields: fields}
	case *ConstructorPattern:
		payload := make([]Pattern, len(pat.Payload))
		for i, e := range pat.Payload {
			payload[i] = ReplaceSizesPat(subst, e)
		}
		return &ConstructorPattern{Token: pat.Token, Name: pat.Name, Payload: payload, Typ: types.ReplaceSizes(subst, pat.Typ)}
	case *LiteralPattern:
		return &LiteralPattern{Token: pat.Token, Value: pat.Value, Typ: types.ReplaceSizes(subst, pat.Typ)}
	default:
		return p
	}
}

func mapExprs(es []Expression, f func(Expression) Expression) []Expression {
	if es == nil {
		return nil
	}
	out := make([]Expression, len(es))
	for i, e := range es {
		out[i] = f(e)
	}
	return out
}

func withoutSizes(subst types.SizeSubst, shadowed []string) types.SizeSubst {
	if len(shadowed) == 0 {
		return subst
	}
	out := make(types.SizeSubst, len(subst))
	for k, v := range subst {
		out[k] = v
	}
	for _, n := range shadowed {
		delete(out, n)
	}
	return out
}
