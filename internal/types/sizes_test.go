package types

import (
	"reflect"
	"testing"
)

func TestReplaceSizes(t *testing.T) {
	i64 := Prim{Name: "i64"}
	in := Array{Size: NamedSize{Name: "n"}, Elem: Array{Size: NamedSize{Name: "m"}, Elem: i64}}
	subst := SizeSubst{"n": ConstSize{N: 3}, "m": NamedSize{Name: "k"}}
	got := ReplaceSizes(subst, in)
	want := Array{Size: ConstSize{N: 3}, Elem: Array{Size: NamedSize{Name: "k"}, Elem: i64}}
	if !Equal(got, want) {
		t.Errorf("ReplaceSizes = %s, want %s", got, want)
	}
	// Names outside the substitution pass through untouched.
	if !Equal(ReplaceSizes(SizeSubst{}, in), in) {
		t.Error("empty substitution changed the type")
	}
}

func TestFreeSizesOrder(t *testing.T) {
	i64 := Prim{Name: "i64"}
	typ := FuncType([]Type{
		Array{Size: NamedSize{Name: "n"}, Elem: i64},
		Array{Size: NamedSize{Name: "m"}, Elem: Array{Size: NamedSize{Name: "n"}, Elem: i64}},
	}, Array{Size: NamedSize{Name: "k"}, Elem: i64})
	got := FreeSizes(typ)
	want := []string{"n", "m", "k"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FreeSizes = %v, want %v", got, want)
	}
}

func TestDimMapping(t *testing.T) {
	i64 := Prim{Name: "i64"}
	generic := FuncType([]Type{
		Array{Size: NamedSize{Name: "n"}, Elem: i64},
		Array{Size: NamedSize{Name: "n"}, Elem: i64},
	}, Array{Size: NamedSize{Name: "n"}, Elem: i64})
	concrete := FuncType([]Type{
		Array{Size: ConstSize{N: 8}, Elem: i64},
		Array{Size: NamedSize{Name: "x"}, Elem: i64},
	}, Array{Size: NamedSize{Name: "y"}, Elem: i64})

	m := DimMapping(generic, concrete)
	// The first pairing wins for a repeated name.
	if got := m.Lookup(NamedSize{Name: "n"}); !SizeEqual(got, ConstSize{N: 8}) {
		t.Errorf("n mapped to %v, want 8", got)
	}
	if len(m) != 1 {
		t.Errorf("mapping = %v, want exactly one entry", m)
	}
}

func TestDimMappingStructuralMismatch(t *testing.T) {
	i64 := Prim{Name: "i64"}
	generic := Array{Size: NamedSize{Name: "n"}, Elem: i64}
	m := DimMapping(generic, i64)
	if len(m) != 0 {
		t.Errorf("mismatched walk produced mapping %v", m)
	}
}

func TestSizeSubstCompose(t *testing.T) {
	first := SizeSubst{"n": NamedSize{Name: "a"}}
	second := SizeSubst{"a": ConstSize{N: 4}, "m": ConstSize{N: 2}}
	composed := first.Compose(second)
	if got := composed.Lookup(NamedSize{Name: "n"}); !SizeEqual(got, ConstSize{N: 4}) {
		t.Errorf("n composed to %v, want 4", got)
	}
	if got := composed.Lookup(NamedSize{Name: "m"}); !SizeEqual(got, ConstSize{N: 2}) {
		t.Errorf("m composed to %v, want 2", got)
	}
}
