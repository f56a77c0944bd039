package types

import (
	"testing"
)

func arr(size Size, elem Type, unique bool) Array {
	return Array{Size: size, Elem: elem, Unique: unique}
}

func TestOrder(t *testing.T) {
	i64 := Prim{Name: "i64"}
	tests := []struct {
		name string
		typ  Type
		want int
	}{
		{"prim", i64, 0},
		{"array", arr(NamedSize{Name: "n"}, i64, false), 0},
		{"func", Func{Param: i64, Ret: i64}, 1},
		{"record of funcs", NewRecord([]Field{{Name: "f", Type: Func{Param: i64, Ret: i64}}}), 1},
		{"second order", Func{Param: Func{Param: i64, Ret: i64}, Ret: i64}, 2},
		{"sum with func payload", NewSum([]Constructor{
			{Name: "some", Payload: []Type{Func{Param: i64, Ret: i64}}},
			{Name: "none"},
		}), 1},
	}
	for _, tt := range tests {
		if got := Order(tt.typ); got != tt.want {
			t.Errorf("%s: Order(%s) = %d, want %d", tt.name, tt.typ, got, tt.want)
		}
	}
}

func TestNewRecordCanonicalOrder(t *testing.T) {
	i64 := Prim{Name: "i64"}
	rec := NewRecord([]Field{
		{Name: "y", Type: i64},
		{Name: "x", Type: i64},
		{Name: "10", Type: i64},
		{Name: "2", Type: i64},
	})
	got := make([]string, len(rec.Fields))
	for i, f := range rec.Fields {
		got[i] = f.Name
	}
	want := []string{"2", "10", "x", "y"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field order = %v, want %v", got, want)
		}
	}
}

func TestTupleIsRecordWithPositionalFields(t *testing.T) {
	i64 := Prim{Name: "i64"}
	b := Prim{Name: "bool"}
	tup := NewTuple(i64, b)
	if !tup.IsTuple() {
		t.Fatalf("NewTuple(%s, %s) is not a tuple", i64, b)
	}
	if got, _ := tup.FieldType("0"); !Equal(got, i64) {
		t.Errorf("field 0 = %s, want %s", got, i64)
	}
	if got, _ := tup.FieldType("1"); !Equal(got, b) {
		t.Errorf("field 1 = %s, want %s", got, b)
	}
	if Unit().IsTuple() {
		// The empty record is the unit value, not a tuple.
		t.Error("unit reported as tuple")
	}
}

func TestFuncTypeUncurryRoundtrip(t *testing.T) {
	i64 := Prim{Name: "i64"}
	b := Prim{Name: "bool"}
	ft := FuncType([]Type{i64, b}, i64)
	params, ret := UncurryFunc(ft)
	if len(params) != 2 || !Equal(params[0], i64) || !Equal(params[1], b) || !Equal(ret, i64) {
		t.Fatalf("UncurryFunc(%s) = %v, %s", ft, params, ret)
	}
}

func TestNonUnique(t *testing.T) {
	i64 := Prim{Name: "i64"}
	ua := arr(NamedSize{Name: "n"}, i64, true)
	rec := NewRecord([]Field{{Name: "xs", Type: ua}, {Name: "k", Type: i64}})
	if !HasUnique(rec) {
		t.Fatal("expected uniqueness in record")
	}
	stripped := NonUnique(rec)
	if HasUnique(stripped) {
		t.Errorf("NonUnique(%s) = %s still carries uniqueness", rec, stripped)
	}
	if HasUnique(ua.Elem) {
		t.Error("element uniqueness invented")
	}
}

func TestStripFuncs(t *testing.T) {
	i64 := Prim{Name: "i64"}
	ft := Func{Param: i64, Ret: i64}
	got := StripFuncs(NewSum([]Constructor{
		{Name: "some", Payload: []Type{ft}},
		{Name: "none"},
	}))
	sum, ok := got.(Sum)
	if !ok {
		t.Fatalf("StripFuncs returned %T", got)
	}
	payload, _ := sum.ConstructorPayload("some")
	if len(payload) != 1 || !Equal(payload[0], Unit()) {
		t.Errorf("some payload = %v, want unit", payload)
	}
}

func TestEqualIgnoresNothing(t *testing.T) {
	i64 := Prim{Name: "i64"}
	a := arr(NamedSize{Name: "n"}, i64, false)
	b := arr(NamedSize{Name: "m"}, i64, false)
	if Equal(a, b) {
		t.Error("arrays with different sizes compared equal")
	}
	c := arr(NamedSize{Name: "n"}, i64, true)
	if Equal(a, c) {
		t.Error("uniqueness ignored by Equal")
	}
	if !Equal(a, arr(NamedSize{Name: "n"}, i64, false)) {
		t.Error("identical arrays compared unequal")
	}
}
