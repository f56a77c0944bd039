package defunc

import (
	"fmt"

	"github.com/fray-lang/fray/internal/ast"
	"github.com/fray-lang/fray/internal/types"
)

// StaticVal is the compile-time approximation of a (possibly higher-order)
// value's shape. The transformer threads one alongside every residual
// expression and uses it to resolve every application statically.
type StaticVal interface {
	staticVal()
}

// Dynamic is an ordinary order-zero value of the given type. It carries no
// extra structure.
type Dynamic struct {
	Typ types.Type
}

func (*Dynamic) staticVal() {}

// LambdaClosure is an unapplied function value: the lambda's parameter and
// body together with the lexical environment restricted to its free
// variables at the point of capture. Hint records the declaration chain
// that produced the lambda, for deriving readable lifted names.
type LambdaClosure struct {
	Param    ast.Pattern
	RetType  types.Type
	Body     ast.Expression
	Captured *Env
	Hint     string
}

func (*LambdaClosure) staticVal() {}

// SVField is a single field of a RecordSV.
type SVField struct {
	Name string
	Val  StaticVal
}

// RecordSV is a record (or tuple) of static values, in canonical field
// order.
type RecordSV struct {
	Fields []SVField
}

func (*RecordSV) staticVal() {}

// FieldVal looks up a field's static value by name.
func (r *RecordSV) FieldVal(name string) (StaticVal, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Val, true
		}
	}
	return nil, false
}

// SumSV is a sum value whose concrete constructor is statically known. The
// other constructors' declared payload types are retained (function types
// structurally collapsed) so exhaustiveness and typing remain sound.
type SumSV struct {
	Constructor string
	Payload     []StaticVal
	Others      []types.Constructor
}

func (*SumSV) staticVal() {}

// Closure pairs a residual expression with its static value. The
// expression evaluates to the runtime representation of the closure (its
// capture record).
type Closure struct {
	Expr ast.Expression
	SV   StaticVal
}

// DynamicFun is a let- or top-level-bound function used as a value: a chain
// of one Closure per remaining curried parameter, ending in the static
// value of the fully applied result.
type DynamicFun struct {
	Closure Closure
	Rest    StaticVal
}

func (*DynamicFun) staticVal() {}

// Depth returns the number of curried parameters remaining before the
// chain is fully applied.
func (df *DynamicFun) Depth() int {
	depth := 0
	var sv StaticVal = df
	for {
		d, ok := sv.(*DynamicFun)
		if !ok {
			return depth
		}
		depth++
		sv = d.Rest
	}
}

// IntrinsicSV is a builtin primitive function. It is always eta-expanded
// before being used as a first-class value.
type IntrinsicSV struct {
	Name string
}

func (*IntrinsicSV) staticVal() {}

// HoleSV is a typed placeholder standing in for an elided sub-expression.
type HoleSV struct {
	Typ types.Type
}

func (*HoleSV) staticVal() {}

// typeOfSV computes the type a static value's runtime representation has
// after defunctionalization. A LambdaClosure is represented by its capture
// record; an IntrinsicSV has no representation and reaching it here is an
// internal-consistency violation in the caller.
func typeOfSV(sv StaticVal) (types.Type, error) {
	switch v := sv.(type) {
	case *Dynamic:
		return v.Typ, nil
	case *HoleSV:
		return v.Typ, nil
	case *LambdaClosure:
		return v.Captured.RecordType()
	case *RecordSV:
		fields := make([]types.Field, len(v.Fields))
		for i, f := range v.Fields {
			t, err := typeOfSV(f.Val)
			if err != nil {
				return nil, err
			}
			fields[i] = types.Field{Name: f.Name, Type: t}
		}
		return types.NewRecord(fields), nil
	case *SumSV:
		payload := make([]types.Type, len(v.Payload))
		for i, p := range v.Payload {
			t, err := typeOfSV(p)
			if err != nil {
				return nil, err
			}
			payload[i] = t
		}
		cs := make([]types.Constructor, 0, len(v.Others)+1)
		cs = append(cs, types.Constructor{Name: v.Constructor, Payload: payload})
		cs = append(cs, v.Others...)
		return types.NewSum(cs), nil
	case *DynamicFun:
		return typeOfSV(v.Closure.SV)
	case *IntrinsicSV:
		return nil, fmt.Errorf("intrinsic %q used as a first-class value", v.Name)
	default:
		return nil, fmt.Errorf("unhandled static value %T", sv)
	}
}

// orderZeroSV reports whether the static value describes a value with no
// residual higher-order structure.
func orderZeroSV(sv StaticVal) bool {
	switch v := sv.(type) {
	case *Dynamic:
		return types.IsOrderZero(v.Typ)
	case *HoleSV:
		return types.IsOrderZero(v.Typ)
	case *RecordSV:
		for _, f := range v.Fields {
			if !orderZeroSV(f.Val) {
				return false
			}
		}
		return true
	case *SumSV:
		for _, p := range v.Payload {
			if !orderZeroSV(p) {
				return false
			}
		}
		for _, c := range v.Others {
			for _, t := range c.Payload {
				if !types.IsOrderZero(t) {
					return false
				}
			}
		}
		return true
	default:
		// LambdaClosure, DynamicFun, IntrinsicSV.
		return false
	}
}

// svFromType refines a Dynamic (or Hole) static value into the structure
// its type implies, so structural patterns can decompose it.
func svFromType(t types.Type) StaticVal {
	if rec, ok := t.(types.Record); ok {
		fields := make([]SVField, len(rec.Fields))
		for i, f := range rec.Fields {
			fields[i] = SVField{Name: f.Name, Val: svFromType(f.Type)}
		}
		return &RecordSV{Fields: fields}
	}
	return &Dynamic{Typ: t}
}
