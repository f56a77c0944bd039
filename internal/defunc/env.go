package defunc

import (
	"sort"

	"github.com/fray-lang/fray/internal/ast"
	"github.com/fray-lang/fray/internal/types"
)

// SizeScheme is the polymorphic size scheme of a binding that must be
// re-instantiated with fresh size variables at each use site. It is present
// only for bindings introduced by size-parameterized declarations.
type SizeScheme struct {
	SizeParams []string
	Type       types.Type
}

// Binding is what the environment knows about a bound name.
type Binding struct {
	Scheme *SizeScheme
	SV     StaticVal
}

// EnvBinding is a name paired with its binding, produced by pattern
// matching in binding order.
type EnvBinding struct {
	Name    string
	Binding Binding
}

// Env is an immutable mapping from names to bindings. Extension copies, so
// capturing a snapshot for a LambdaClosure is a plain reference and is
// never affected by the enclosing scope's later extensions.
type Env struct {
	table map[string]Binding
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{table: map[string]Binding{}}
}

func (e *Env) Lookup(name string) (Binding, bool) {
	b, ok := e.table[name]
	return b, ok
}

func (e *Env) Len() int { return len(e.table) }

// Names returns the bound names in sorted order.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.table))
	for n := range e.table {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Extend returns a new environment with the given bindings added; later
// bindings shadow earlier ones and all shadow the receiver's.
func (e *Env) Extend(binds ...EnvBinding) *Env {
	if len(binds) == 0 {
		return e
	}
	table := make(map[string]Binding, len(e.table)+len(binds))
	for k, v := range e.table {
		table[k] = v
	}
	for _, b := range binds {
		table[b.Name] = b.Binding
	}
	return &Env{table: table}
}

// Restrict keeps only the bindings named in the free-variable set. The
// outer uniqueness of each retained dynamic value is lowered to non-unique
// unless the free-variable analysis says the use site consumes it: a lifted
// closure cannot alias-guarantee exclusivity it cannot verify.
func (e *Env) Restrict(fv *ast.FreeVarSet) *Env {
	table := make(map[string]Binding)
	for _, name := range fv.Names() {
		b, ok := e.table[name]
		if !ok {
			continue
		}
		if dyn, isDyn := b.SV.(*Dynamic); isDyn && !fv.Consumed(name) {
			b = Binding{Scheme: b.Scheme, SV: &Dynamic{Typ: types.NonUnique(dyn.Typ)}}
		}
		table[name] = b
	}
	return &Env{table: table}
}

// RecordType is the type of the capture record representing this
// environment: one field per binding, in canonical order.
func (e *Env) RecordType() (types.Type, error) {
	fields := make([]types.Field, 0, len(e.table))
	for _, name := range e.Names() {
		t, err := typeOfSV(e.table[name].SV)
		if err != nil {
			return nil, err
		}
		fields = append(fields, types.Field{Name: name, Type: t})
	}
	return types.NewRecord(fields), nil
}
