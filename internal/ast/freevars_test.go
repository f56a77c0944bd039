package ast

import (
	"reflect"
	"testing"

	"github.com/fray-lang/fray/internal/token"
	"github.com/fray-lang/fray/internal/types"
)

var i64 = types.Prim{Name: "i64"}

func v(name string) *Var {
	return &Var{Token: token.Synthetic(name), Name: name, Typ: i64}
}

func ip(name string) *IdentPattern {
	return &IdentPattern{Token: token.Synthetic(name), Name: name, Typ: i64}
}

func TestFreeVars_FirstOccurrenceOrder(t *testing.T) {
	// b + (a + b): free vars in order of first use.
	e := ApplySpine(token.Synthetic("add"),
		&Var{Token: token.Synthetic("add"), Name: "add", Typ: types.FuncType([]types.Type{i64, i64}, i64)},
		v("b"),
		ApplySpine(token.Synthetic("add"),
			&Var{Token: token.Synthetic("add"), Name: "add", Typ: types.FuncType([]types.Type{i64, i64}, i64)},
			v("a"), v("b")))
	got := FreeVars(e).Names()
	want := []string{"add", "b", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FreeVars = %v, want %v", got, want)
	}
}

func TestFreeVars_LambdaBindsParam(t *testing.T) {
	lam := &Lambda{
		Token:   token.Synthetic("fn"),
		Param:   ip("x"),
		RetType: i64,
		Body: ApplySpine(token.Synthetic("add"),
			&Var{Token: token.Synthetic("add"), Name: "add", Typ: types.FuncType([]types.Type{i64, i64}, i64)},
			v("x"), v("n")),
	}
	fv := FreeVars(lam)
	if fv.Has("x") {
		t.Error("bound parameter reported free")
	}
	if !fv.Has("n") {
		t.Error("captured variable not reported")
	}
}

func TestFreeVars_LetShadowing(t *testing.T) {
	// let x = y in x: only y is free.
	e := &Let{
		Token: token.Synthetic("let"),
		Pat:   ip("x"),
		Value: v("y"),
		Body:  v("x"),
		Typ:   i64,
	}
	got := FreeVars(e).Names()
	if !reflect.DeepEqual(got, []string{"y"}) {
		t.Errorf("FreeVars = %v, want [y]", got)
	}
}

func TestFreeVars_LetSizeBinders(t *testing.T) {
	// let [k] xs = a in k: the size binder is bound by the let.
	e := &Let{
		Token:       token.Synthetic("let"),
		SizeBinders: []string{"k"},
		Pat:         ip("xs"),
		Value:       v("a"),
		Body:        v("k"),
		Typ:         i64,
	}
	fv := FreeVars(e)
	if fv.Has("k") {
		t.Error("size binder reported free")
	}
	if !fv.Has("a") {
		t.Error("value's free variable not reported")
	}
}

func TestFreeVars_ConsumptionTracking(t *testing.T) {
	arrT := types.Array{Size: types.NamedSize{Name: "n"}, Elem: i64, Unique: true}
	src := &Var{Token: token.Synthetic("xs"), Name: "xs", Typ: arrT}
	e := &LetWith{
		Token:   token.Synthetic("let"),
		Dest:    "ys",
		Src:     src,
		Indices: []Expression{v("i")},
		Value:   v("k"),
		Body:    &Var{Token: token.Synthetic("ys"), Name: "ys", Typ: arrT},
	}
	fv := FreeVars(e)
	if !fv.Consumed("xs") {
		t.Error("in-place update source not marked consumed")
	}
	if fv.Consumed("i") || fv.Consumed("k") {
		t.Error("plain uses marked consumed")
	}
	if fv.Has("ys") {
		t.Error("destination binding leaked as free")
	}
}

func TestFreeVars_MatchCaseScopes(t *testing.T) {
	sumT := types.NewSum([]types.Constructor{
		{Name: "none"},
		{Name: "some", Payload: []types.Type{i64}},
	})
	m := &Match{
		Token:     token.Synthetic("match"),
		Scrutinee: &Var{Token: token.Synthetic("o"), Name: "o", Typ: sumT},
		Cases: []*MatchCase{
			{
				Pat:  &ConstructorPattern{Token: token.Synthetic("some"), Name: "some", Payload: []Pattern{ip("x")}, Typ: sumT},
				Body: v("x"),
			},
			{
				Pat:  &ConstructorPattern{Token: token.Synthetic("none"), Name: "none", Typ: sumT},
				Body: v("d"),
			},
		},
	}
	got := FreeVars(m).Names()
	want := []string{"o", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FreeVars = %v, want %v", got, want)
	}
}

func TestUnApplySpineRoundtrip(t *testing.T) {
	fun := &Var{Token: token.Synthetic("f"), Name: "f", Typ: types.FuncType([]types.Type{i64, i64}, i64)}
	spine := ApplySpine(token.Synthetic("f"), fun, v("a"), v("b"))
	head, args := UnApplySpine(spine)
	if head != fun {
		t.Fatalf("head = %v, want the original fun", head)
	}
	if len(args) != 2 {
		t.Fatalf("args = %d, want 2", len(args))
	}
	if spine.Type() != i64 {
		t.Errorf("spine type = %s, want i64", spine.Type())
	}
}
