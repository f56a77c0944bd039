package ast

// FreeVarSet is an ordered set of free variable names together with whether
// each occurrence consumes its value (is the target of an in-place update).
// Order is first-occurrence order, so derived structures are deterministic.
type FreeVarSet struct {
	order []string
	usage map[string]bool // name -> consumed
}

func NewFreeVarSet() *FreeVarSet {
	return &FreeVarSet{usage: make(map[string]bool)}
}

func (fv *FreeVarSet) Add(name string, consumed bool) {
	if _, ok := fv.usage[name]; !ok {
		fv.order = append(fv.order, name)
		fv.usage[name] = consumed
		return
	}
	if consumed {
		fv.usage[name] = true
	}
}

func (fv *FreeVarSet) Has(name string) bool {
	_, ok := fv.usage[name]
	return ok
}

// Consumed reports whether the name is used uniquely (consumed) somewhere
// in the analyzed expression.
func (fv *FreeVarSet) Consumed(name string) bool { return fv.usage[name] }

// Names returns the free names in first-occurrence order.
func (fv *FreeVarSet) Names() []string {
	out := make([]string, len(fv.order))
	copy(out, fv.order)
	return out
}

func (fv *FreeVarSet) Len() int { return len(fv.order) }

// FreeVars computes the free value variables of an expression. Size
// variables live in a separate namespace and are not reported; a size-typed
// value variable used in a size position is still a value variable and is
// reported normally.
func FreeVars(e Expression) *FreeVarSet {
	fv := NewFreeVarSet()
	collectFreeVars(e, map[string]bool{}, fv)
	return fv
}

func collectFreeVars(e Expression, bound map[string]bool, fv *FreeVarSet) {
	switch expr := e.(type) {
	case *Literal, *Hole:
	case *Var:
		if !bound[expr.Name] {
			fv.Add(expr.Name, false)
		}
	case *TupleLit:
		for _, el := range expr.Elems {
			collectFreeVars(el, bound, fv)
		}
	case *RecordLit:
		for _, f := range expr.Fields {
			if f.Value != nil {
				collectFreeVars(f.Value, bound, fv)
			} else if !bound[f.Name] {
				fv.Add(f.Name, false)
			}
		}
	case *RecordUpdate:
		collectFreeVars(expr.Record, bound, fv)
		collectFreeVars(expr.Value, bound, fv)
	case *Project:
		collectFreeVars(expr.Record, bound, fv)
	case *ArrayLit:
		for _, el := range expr.Elems {
			collectFreeVars(el, bound, fv)
		}
	case *Range:
		collectFreeVars(expr.Start, bound, fv)
		if expr.Step != nil {
			collectFreeVars(expr.Step, bound, fv)
		}
		collectFreeVars(expr.End, bound, fv)
	case *Ascript:
		collectFreeVars(expr.Expr, bound, fv)
	case *Let:
		collectFreeVars(expr.Value, bound, fv)
		inner := extendBound(bound, append(PatternNames(expr.Pat), expr.SizeBinders...))
		collectFreeVars(expr.Body, inner, fv)
	case *If:
		collectFreeVars(expr.Cond, bound, fv)
		collectFreeVars(expr.Then, bound, fv)
		collectFreeVars(expr.Else, bound, fv)
	case *Apply:
		collectFreeVars(expr.Fun, bound, fv)
		collectFreeVars(expr.Arg, bound, fv)
	case *Negate:
		collectFreeVars(expr.Expr, bound, fv)
	case *Not:
		collectFreeVars(expr.Expr, bound, fv)
	case *Lambda:
		inner := extendBound(bound, PatternNames(expr.Param))
		collectFreeVars(expr.Body, inner, fv)
	case *Loop:
		collectFreeVars(expr.Init, bound, fv)
		inner := extendBound(bound, PatternNames(expr.Pat))
		switch form := expr.Form.(type) {
		case ForCount:
			collectFreeVars(form.Bound, bound, fv)
			inner = extendBound(inner, []string{form.Var})
		case ForIn:
			collectFreeVars(form.Array, bound, fv)
			inner = extendBound(inner, PatternNames(form.Elem))
		case While:
			collectFreeVars(form.Cond, inner, fv)
		}
		collectFreeVars(expr.Body, inner, fv)
	case *LetWith:
		if !bound[expr.Src.Name] {
			fv.Add(expr.Src.Name, true)
		}
		for _, ix := range expr.Indices {
			collectFreeVars(ix, bound, fv)
		}
		collectFreeVars(expr.Value, bound, fv)
		inner := extendBound(bound, []string{expr.Dest})
		collectFreeVars(expr.Body, inner, fv)
	case *Index:
		collectFreeVars(expr.Array, bound, fv)
		for _, ix := range expr.Indices {
			collectFreeVars(ix, bound, fv)
		}
	case *Update:
		if v, ok := expr.Array.(*Var); ok && !bound[v.Name] {
			fv.Add(v.Name, true)
		} else {
			collectFreeVars(expr.Array, bound, fv)
		}
		for _, ix := range expr.Indices {
			collectFreeVars(ix, bound, fv)
		}
		collectFreeVars(expr.Value, bound, fv)
	case *Assert:
		collectFreeVars(expr.Cond, bound, fv)
		collectFreeVars(expr.Expr, bound, fv)
	case *Construct:
		for _, p := range expr.Payload {
			collectFreeVars(p, bound, fv)
		}
	case *Match:
		collectFreeVars(expr.Scrutinee, bound, fv)
		for _, c := range expr.Cases {
			inner := extendBound(bound, PatternNames(c.Pat))
			collectFreeVars(c.Body, inner, fv)
		}
	case *Attr:
		collectFreeVars(expr.Expr, bound, fv)
	}
}

func extendBound(bound map[string]bool, names []string) map[string]bool {
	if len(names) == 0 {
		return bound
	}
	inner := make(map[string]bool, len(bound)+len(names))
	for k := range bound {
		inner[k] = true
	}
	for _, n := range names {
		inner[n] = true
	}
	return inner
}
