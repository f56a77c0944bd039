package defunc

import (
	"testing"

	"github.com/fray-lang/fray/internal/ast"
	"github.com/fray-lang/fray/internal/token"
	"github.com/fray-lang/fray/internal/types"
)

var i64 = types.Prim{Name: "i64"}

func dynBind(name string, t types.Type) EnvBinding {
	return EnvBinding{Name: name, Binding: Binding{SV: &Dynamic{Typ: t}}}
}

func TestEnvExtendDoesNotMutate(t *testing.T) {
	base := NewEnv().Extend(dynBind("x", i64))
	ext := base.Extend(dynBind("y", i64))
	if _, ok := base.Lookup("y"); ok {
		t.Error("extension mutated the captured environment")
	}
	if _, ok := ext.Lookup("x"); !ok {
		t.Error("extension lost an existing binding")
	}
}

func TestEnvExtendShadows(t *testing.T) {
	b := types.Prim{Name: "bool"}
	env := NewEnv().Extend(dynBind("x", i64)).Extend(dynBind("x", b))
	got, _ := env.Lookup("x")
	if !types.Equal(got.SV.(*Dynamic).Typ, b) {
		t.Errorf("lookup after shadowing = %s, want bool", got.SV.(*Dynamic).Typ)
	}
}

func TestEnvRestrictLowersUniqueness(t *testing.T) {
	uarr := types.Array{Size: types.NamedSize{Name: "n"}, Elem: i64, Unique: true}
	env := NewEnv().Extend(dynBind("xs", uarr), dynBind("ys", uarr), dynBind("z", i64))

	fv := ast.NewFreeVarSet()
	fv.Add("xs", false)
	fv.Add("ys", true) // consumed: uniqueness must survive

	captured := env.Restrict(fv)
	if _, ok := captured.Lookup("z"); ok {
		t.Error("restriction kept a variable that is not free")
	}
	xs, _ := captured.Lookup("xs")
	if types.HasUnique(xs.SV.(*Dynamic).Typ) {
		t.Error("non-consumed capture kept uniqueness")
	}
	ys, _ := captured.Lookup("ys")
	if !types.HasUnique(ys.SV.(*Dynamic).Typ) {
		t.Error("consumed capture lost uniqueness")
	}
}

func TestEnvRecordTypeCanonical(t *testing.T) {
	env := NewEnv().Extend(dynBind("b", i64), dynBind("a", i64))
	got, err := env.RecordType()
	if err != nil {
		t.Fatal(err)
	}
	rec := got.(types.Record)
	if len(rec.Fields) != 2 || rec.Fields[0].Name != "a" || rec.Fields[1].Name != "b" {
		t.Errorf("RecordType = %s, want fields a, b in order", got)
	}
}

func TestStateFreshIsUnique(t *testing.T) {
	counter := 0
	s := NewState(&counter)
	a := s.Fresh("f")
	b := s.Fresh("f")
	c := s.FreshSize("n")
	if a == b || b == c || a == c {
		t.Errorf("fresh names collide: %s %s %s", a, b, c)
	}
	if a != "f^1" || b != "f^2" || c != "n^3" {
		t.Errorf("fresh names = %s %s %s, want f^1 f^2 n^3", a, b, c)
	}
}

func TestStateLiftedSinceReversesDiscoveryOrder(t *testing.T) {
	counter := 0
	s := NewState(&counter)
	mark := s.LiftedCount()
	first := &ast.ValDecl{Token: token.Synthetic("a"), Name: "a", RetType: i64}
	second := &ast.ValDecl{Token: token.Synthetic("b"), Name: "b", RetType: i64}
	s.EmitLifted(first)
	s.EmitLifted(second)
	got := s.LiftedSince(mark)
	if len(got) != 2 || got[0] != second || got[1] != first {
		t.Errorf("LiftedSince = %v, want [b a]", got)
	}
	if s.LiftedCount() != 2 {
		t.Errorf("LiftedCount = %d, want 2", s.LiftedCount())
	}
}
