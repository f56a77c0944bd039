package defunc

import (
	"fmt"

	"github.com/fray-lang/fray/internal/ast"
	"github.com/fray-lang/fray/internal/config"
)

// State is the sequential mutable context of one defunctionalization run:
// the monotonic fresh-name source and the accumulated lifted declarations.
// It is threaded linearly through the recursive descent; there is exactly
// one writer.
type State struct {
	counter *int
	lifted  []*ast.ValDecl
}

// NewState creates a run state around the whole-program name counter. The
// counter pointer is shared with the pipeline context so later stages keep
// generating collision-free names.
func NewState(counter *int) *State {
	return &State{counter: counter}
}

// Fresh returns a globally unique name derived from the given base. The
// separator cannot occur in source identifiers, so fresh names can never
// collide with source names.
func (s *State) Fresh(base string) string {
	*s.counter++
	return fmt.Sprintf("%s%s%d", base, config.LiftedNameSep, *s.counter)
}

// FreshSize returns a globally unique size-variable name derived from the
// given base. Sizes are a separate namespace but share the counter, so a
// fresh size never collides with a fresh value name either.
func (s *State) FreshSize(base string) string {
	*s.counter++
	return fmt.Sprintf("%s%s%d", base, config.LiftedNameSep, *s.counter)
}

// EmitLifted registers a newly synthesized top-level declaration. The list
// is append-only in discovery order.
func (s *State) EmitLifted(d *ast.ValDecl) {
	s.lifted = append(s.lifted, d)
}

// LiftedCount returns the number of declarations emitted so far.
func (s *State) LiftedCount() int { return len(s.lifted) }

// LiftedSince returns the declarations emitted since the given mark, ready
// to be placed before the binding whose processing produced them. A lifted
// declaration is emitted only after its own body was transformed, so
// discovery order already puts every callee before its callers.
func (s *State) LiftedSince(mark int) []*ast.ValDecl {
	return append([]*ast.ValDecl{}, s.lifted[mark:]...)
}
