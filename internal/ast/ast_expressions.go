package ast

import (
	"github.com/fray-lang/fray/internal/token"
	"github.com/fray-lang/fray/internal/types"
)

// Literal represents a literal value: 5, 2.0, true, "s".
// Value holds the decoded literal (int64, float64, bool, string).
type Literal struct {
	Token token.Token
	Value interface{}
	Typ   types.Type
}

func (l *Literal) expressionNode()       {}
func (l *Literal) GetToken() token.Token { return l.Token }
func (l *Literal) Type() types.Type      { return l.Typ }

// IntLit builds a synthesized integer literal of the default integer type.
func IntLit(n int64) *Literal {
	return &Literal{Token: token.Synthetic("int"), Value: n, Typ: types.Prim{Name: "i64"}}
}

// Var is a reference to a bound name, annotated with its use-site type.
type Var struct {
	Token token.Token
	Name  string
	Typ   types.Type
}

func (v *Var) expressionNode()       {}
func (v *Var) GetToken() token.Token { return v.Token }
func (v *Var) Type() types.Type      { return v.Typ }

// TupleLit represents tuple construction, e.g. (a, b, c).
type TupleLit struct {
	Token token.Token
	Elems []Expression
}

func (tl *TupleLit) expressionNode()       {}
func (tl *TupleLit) GetToken() token.Token { return tl.Token }
func (tl *TupleLit) Type() types.Type {
	elems := make([]types.Type, len(tl.Elems))
	for i, e := range tl.Elems {
		elems[i] = e.Type()
	}
	return types.NewTuple(elems...)
}

// RecordField is a single field of a record literal. An implicit field {n}
// has a nil Value and denotes the variable n; Typ then carries the
// variable's type.
type RecordField struct {
	Token token.Token
	Name  string
	Value Expression // nil for an implicit field
	Typ   types.Type // set when Value is nil
}

func (rf RecordField) fieldType() types.Type {
	if rf.Value != nil {
		return rf.Value.Type()
	}
	return rf.Typ
}

// RecordLit represents record construction, e.g. {x = 1, y}.
type RecordLit struct {
	Token  token.Token
	Fields []RecordField
}

func (rl *RecordLit) expressionNode()       {}
func (rl *RecordLit) GetToken() token.Token { return rl.Token }
func (rl *RecordLit) Type() types.Type {
	fields := make([]types.Field, len(rl.Fields))
	for i, f := range rl.Fields {
		fields[i] = types.Field{Name: f.Name, Type: f.fieldType()}
	}
	return types.NewRecord(fields)
}

// RecordUpdate represents functional record update, e.g. r with x = 1.
type RecordUpdate struct {
	Token  token.Token
	Record Expression
	Field  string
	Value  Expression
}

func (ru *RecordUpdate) expressionNode()       {}
func (ru *RecordUpdate) GetToken() token.Token { return ru.Token }
func (ru *RecordUpdate) Type() types.Type      { return ru.Record.Type() }

// Project represents record field projection, e.g. r.x.
type Project struct {
	Token  token.Token
	Record Expression
	Field  string
	Typ    types.Type
}

func (pr *Project) expressionNode()       {}
func (pr *Project) GetToken() token.Token { return pr.Token }
func (pr *Project) Type() types.Type      { return pr.Typ }

// ArrayLit represents an array literal, e.g. [1, 2, 3]. Typ carries the
// full array type; it cannot be derived for empty literals.
type ArrayLit struct {
	Token token.Token
	Elems []Expression
	Typ   types.Type
}

func (al *ArrayLit) expressionNode()       {}
func (al *ArrayLit) GetToken() token.Token { return al.Token }
func (al *ArrayLit) Type() types.Type      { return al.Typ }

// Range represents a numeric range, e.g. 0..<n or 0..2..<n.
type Range struct {
	Token token.Token
	Start Expression
	Step  Expression // optional
	End   Expression
	Typ   types.Type
}

func (r *Range) expressionNode()       {}
func (r *Range) GetToken() token.Token { return r.Token }
func (r *Range) Type() types.Type      { return r.Typ }

// Ascript represents a type ascription or coercion, e.g. e : t or e :> t.
type Ascript struct {
	Token    token.Token
	Expr     Expression
	Ann      types.Type
	Coercion bool
}

func (a *Ascript) expressionNode()       {}
func (a *Ascript) GetToken() token.Token { return a.Token }
func (a *Ascript) Type() types.Type      { return a.Ann }

// Let represents a let binding with optional existential size binders:
// let [k] pat = value in body
type Let struct {
	Token       token.Token
	SizeBinders []string
	Pat         Pattern
	Value       Expression
	Body        Expression
	Typ         types.Type // result type; may differ from Body's when sizes escape
}

func (l *Let) expressionNode()       {}
func (l *Let) GetToken() token.Token { return l.Token }
func (l *Let) Type() types.Type      { return l.Typ }

// If represents a conditional expression. Both branches agree in shape
// after type checking.
type If struct {
	Token token.Token
	Cond  Expression
	Then  Expression
	Else  Expression
}

func (i *If) expressionNode()       {}
func (i *If) GetToken() token.Token { return i.Token }
func (i *If) Type() types.Type      { return i.Then.Type() }

// Apply represents a single (curried) function application. Multi-argument
// calls are nested Apply nodes; Typ is this application's result type.
type Apply struct {
	Token token.Token
	Fun   Expression
	Arg   Expression
	Typ   types.Type
}

func (a *Apply) expressionNode()       {}
func (a *Apply) GetToken() token.Token { return a.Token }
func (a *Apply) Type() types.Type      { return a.Typ }

// ApplySpine builds a left-nested application of fun to args, deriving each
// intermediate node's type from fun's type.
func ApplySpine(tok token.Token, fun Expression, args ...Expression) Expression {
	e := fun
	t := fun.Type()
	for _, arg := range args {
		if ft, ok := t.(types.Func); ok {
			t = ft.Ret
		}
		e = &Apply{Token: tok, Fun: e, Arg: arg, Typ: t}
	}
	return e
}

// UnApplySpine flattens nested Apply nodes into the head expression and the
// argument list in application order.
func UnApplySpine(e Expression) (Expression, []Expression) {
	var args []Expression
	for {
		app, ok := e.(*Apply)
		if !ok {
			break
		}
		args = append([]Expression{app.Arg}, args...)
		e = app.Fun
	}
	return e, args
}

// Negate represents numeric negation.
type Negate struct {
	Token token.Token
	Expr  Expression
}

func (n *Negate) expressionNode()       {}
func (n *Negate) GetToken() token.Token { return n.Token }
func (n *Negate) Type() types.Type      { return n.Expr.Type() }

// Not represents logical negation.
type Not struct {
	Token token.Token
	Expr  Expression
}

func (n *Not) expressionNode()       {}
func (n *Not) GetToken() token.Token { return n.Token }
func (n *Not) Type() types.Type      { return n.Expr.Type() }

// Lambda represents an anonymous function with a single parameter pattern.
// \ (x: i32): i32 -> body
// Lambdas never survive defunctionalization as values.
type Lambda struct {
	Token   token.Token
	Param   Pattern
	RetType types.Type
	Body    Expression
}

func (l *Lambda) expressionNode()       {}
func (l *Lambda) GetToken() token.Token { return l.Token }
func (l *Lambda) Type() types.Type {
	return types.Func{Param: PatternType(l.Param), Ret: l.RetType}
}

// LoopForm is the iteration form of a Loop: bounded count, iteration over a
// collection, or a while condition.
type LoopForm interface {
	loopFormNode()
}

// ForCount iterates a fixed number of times with an index variable:
// for i < bound.
type ForCount struct {
	Var     string
	VarType types.Type
	Bound   Expression
}

func (ForCount) loopFormNode() {}

// ForIn iterates over the elements of an array: for x in xs.
type ForIn struct {
	Elem  Pattern
	Array Expression
}

func (ForIn) loopFormNode() {}

// While iterates while a condition holds. The condition sees the
// accumulator's bindings.
type While struct {
	Cond Expression
}

func (While) loopFormNode() {}

// Loop represents the uniform loop expression:
// loop pat = init for/while ... do body
type Loop struct {
	Token token.Token
	Pat   Pattern
	Init  Expression
	Form  LoopForm
	Body  Expression
}

func (l *Loop) expressionNode()       {}
func (l *Loop) GetToken() token.Token { return l.Token }
func (l *Loop) Type() types.Type      { return PatternType(l.Pat) }

// LetWith represents an in-place update binding:
// let dest = src with [indices] = value in body
type LetWith struct {
	Token   token.Token
	Dest    string
	Src     *Var
	Indices []Expression
	Value   Expression
	Body    Expression
}

func (lw *LetWith) expressionNode()       {}
func (lw *LetWith) GetToken() token.Token { return lw.Token }
func (lw *LetWith) Type() types.Type      { return lw.Body.Type() }

// Index represents array indexing, e.g. xs[i, j].
type Index struct {
	Token   token.Token
	Array   Expression
	Indices []Expression
	Typ     types.Type
}

func (ie *Index) expressionNode()       {}
func (ie *Index) GetToken() token.Token { return ie.Token }
func (ie *Index) Type() types.Type      { return ie.Typ }

// Update represents a slice update expression, e.g. xs with [i] = v.
type Update struct {
	Token   token.Token
	Array   Expression
	Indices []Expression
	Value   Expression
}

func (u *Update) expressionNode()       {}
func (u *Update) GetToken() token.Token { return u.Token }
func (u *Update) Type() types.Type      { return u.Array.Type() }

// Assert represents a checked assertion guarding an expression:
// assert cond e
type Assert struct {
	Token token.Token
	Cond  Expression
	Expr  Expression
}

func (a *Assert) expressionNode()       {}
func (a *Assert) GetToken() token.Token { return a.Token }
func (a *Assert) Type() types.Type      { return a.Expr.Type() }

// Construct represents a saturated sum-constructor application, e.g.
// #some 5. Typ is the full sum type the constructor belongs to.
type Construct struct {
	Token   token.Token
	Name    string
	Payload []Expression
	Typ     types.Type
}

func (c *Construct) expressionNode()       {}
func (c *Construct) GetToken() token.Token { return c.Token }
func (c *Construct) Type() types.Type      { return c.Typ }

// MatchCase is a single case of a match expression.
type MatchCase struct {
	Pat  Pattern
	Body Expression
}

// Match represents a pattern-match expression. All case bodies agree in
// shape after type checking.
type Match struct {
	Token     token.Token
	Scrutinee Expression
	Cases     []*MatchCase
}

func (m *Match) expressionNode()       {}
func (m *Match) GetToken() token.Token { return m.Token }
func (m *Match) Type() types.Type      { return m.Cases[0].Body.Type() }

// Attr represents an attribute-annotated expression, e.g. #[unroll] e.
type Attr struct {
	Token token.Token
	Name  string
	Expr  Expression
}

func (a *Attr) expressionNode()       {}
func (a *Attr) GetToken() token.Token { return a.Token }
func (a *Attr) Type() types.Type      { return a.Expr.Type() }

// Hole is a typed placeholder for an elided sub-expression: ???.
type Hole struct {
	Token token.Token
	Typ   types.Type
}

func (h *Hole) expressionNode()       {}
func (h *Hole) GetToken() token.Token { return h.Token }
func (h *Hole) Type() types.Type      { return h.Typ }
