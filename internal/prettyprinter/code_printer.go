package prettyprinter

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/fray-lang/fray/internal/ast"
)

// --- Code Printer (Output looks like source code) ---

// CodePrinter renders a program in concrete syntax. The output is stable:
// the same program always prints identically, so goldens can diff it.
type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writef(format string, args ...interface{}) {
	fmt.Fprintf(&p.buf, format, args...)
}

func (p *CodePrinter) newline() {
	p.buf.WriteString("\n")
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

// Print renders a whole program, one declaration per block.
func (p *CodePrinter) Print(prog *ast.Program) string {
	p.buf.Reset()
	for i, d := range prog.Decls {
		if i > 0 {
			p.write("\n\n")
		}
		p.printDecl(d)
	}
	p.write("\n")
	return p.buf.String()
}

// PrintExpr renders a single expression, for diagnostics and tests.
func (p *CodePrinter) PrintExpr(e ast.Expression) string {
	p.buf.Reset()
	p.printExpr(e, false)
	return p.buf.String()
}

func (p *CodePrinter) printDecl(d *ast.ValDecl) {
	p.writef("def %s", d.Name)
	for _, s := range d.SizeParams {
		p.writef(" [%s]", s)
	}
	for _, param := range d.Params {
		p.write(" ")
		p.printParam(param)
	}
	if d.RetType != nil {
		p.writef(" : %s", d.RetType)
	}
	p.write(" =")
	p.indent++
	p.newline()
	p.printExpr(d.Body, false)
	p.indent--
}

// printParam prints a declaration parameter with its full type, so the
// residual program's signatures are self-describing.
func (p *CodePrinter) printParam(pat ast.Pattern) {
	switch pt := pat.(type) {
	case *ast.IdentPattern:
		p.writef("(%s: %s)", pt.Name, pt.Typ)
	case *ast.WildcardPattern:
		p.writef("(_: %s)", pt.Typ)
	default:
		p.write("(")
		p.printPattern(pat)
		p.write(")")
	}
}

func (p *CodePrinter) printPattern(pat ast.Pattern) {
	switch pt := pat.(type) {
	case *ast.WildcardPattern:
		p.write("_")
	case *ast.IdentPattern:
		p.write(pt.Name)
	case *ast.TuplePattern:
		p.write("(")
		for i, e := range pt.Elems {
			if i > 0 {
				p.write(", ")
			}
			p.printPattern(e)
		}
		p.write(")")
	case *ast.RecordPattern:
		p.write("{")
		for i, f := range pt.Fields {
			if i > 0 {
				p.write(", ")
			}
			p.writef("%s = ", f.Name)
			p.printPattern(f.Pat)
		}
		p.write("}")
	case *ast.ConstructorPattern:
		p.writef("#%s", pt.Name)
		for _, e := range pt.Payload {
			p.write(" ")
			p.printPattern(e)
		}
	case *ast.LiteralPattern:
		p.write(literalString(pt.Value))
	default:
		p.write("<???>")
	}
}

// printExpr prints an expression; atom requests parentheses around any form
// that would not parse as a single argument.
func (p *CodePrinter) printExpr(expr ast.Expression, atom bool) {
	if expr == nil {
		p.write("<???>")
		return
	}
	switch e := expr.(type) {
	case *ast.Literal:
		p.write(literalString(e.Value))

	case *ast.Var:
		p.write(e.Name)

	case *ast.Hole:
		p.write("???")

	case *ast.TupleLit:
		p.write("(")
		for i, el := range e.Elems {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(el, false)
		}
		p.write(")")

	case *ast.RecordLit:
		p.write("{")
		for i, f := range e.Fields {
			if i > 0 {
				p.write(", ")
			}
			if f.Value == nil {
				p.write(f.Name)
			} else {
				p.writef("%s = ", f.Name)
				p.printExpr(f.Value, false)
			}
		}
		p.write("}")

	case *ast.RecordUpdate:
		p.paren(atom, func() {
			p.printExpr(e.Record, true)
			p.writef(" with %s = ", e.Field)
			p.printExpr(e.Value, false)
		})

	case *ast.Project:
		p.printExpr(e.Record, true)
		p.writef(".%s", e.Field)

	case *ast.ArrayLit:
		p.write("[")
		for i, el := range e.Elems {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(el, false)
		}
		p.write("]")

	case *ast.Range:
		p.paren(atom, func() {
			p.printExpr(e.Start, true)
			if e.Step != nil {
				p.write("..")
				p.printExpr(e.Step, true)
			}
			p.write("..<")
			p.printExpr(e.End, true)
		})

	case *ast.Ascript:
		op := ":"
		if e.Coercion {
			op = ":>"
		}
		p.paren(true, func() {
			p.printExpr(e.Expr, false)
			p.writef(" %s %s", op, e.Ann)
		})

	case *ast.Let:
		p.paren(atom, func() {
			p.write("let ")
			for _, s := range e.SizeBinders {
				p.writef("[%s] ", s)
			}
			p.printPattern(e.Pat)
			p.write(" = ")
			p.printExpr(e.Value, false)
			p.write(" in")
			p.newline()
			p.printExpr(e.Body, false)
		})

	case *ast.If:
		p.paren(atom, func() {
			p.write("if ")
			p.printExpr(e.Cond, false)
			p.indent++
			p.newline()
			p.write("then ")
			p.printExpr(e.Then, false)
			p.newline()
			p.write("else ")
			p.printExpr(e.Else, false)
			p.indent--
		})

	case *ast.Apply:
		p.paren(atom, func() {
			head, args := ast.UnApplySpine(e)
			p.printExpr(head, true)
			for _, arg := range args {
				p.write(" ")
				p.printExpr(arg, true)
			}
		})

	case *ast.Negate:
		p.write("-")
		p.printExpr(e.Expr, true)

	case *ast.Not:
		p.write("!")
		p.printExpr(e.Expr, true)

	case *ast.Lambda:
		p.paren(atom, func() {
			p.write("\\")
			p.printParam(e.Param)
			if e.RetType != nil {
				p.writef(": %s", e.RetType)
			}
			p.write(" -> ")
			p.printExpr(e.Body, false)
		})

	case *ast.Loop:
		p.paren(atom, func() {
			p.write("loop ")
			p.printPattern(e.Pat)
			p.write(" = ")
			p.printExpr(e.Init, false)
			switch f := e.Form.(type) {
			case ast.ForCount:
				p.writef(" for %s < ", f.Var)
				p.printExpr(f.Bound, true)
			case ast.ForIn:
				p.write(" for ")
				p.printPattern(f.Elem)
				p.write(" in ")
				p.printExpr(f.Array, true)
			case ast.While:
				p.write(" while ")
				p.printExpr(f.Cond, true)
			}
			p.write(" do")
			p.indent++
			p.newline()
			p.printExpr(e.Body, false)
			p.indent--
		})

	case *ast.LetWith:
		p.paren(atom, func() {
			p.writef("let %s = %s with [", e.Dest, e.Src.Name)
			p.printIndices(e.Indices)
			p.write("] = ")
			p.printExpr(e.Value, false)
			p.write(" in")
			p.newline()
			p.printExpr(e.Body, false)
		})

	case *ast.Index:
		p.printExpr(e.Array, true)
		p.write("[")
		p.printIndices(e.Indices)
		p.write("]")

	case *ast.Update:
		p.paren(atom, func() {
			p.printExpr(e.Array, true)
			p.write(" with [")
			p.printIndices(e.Indices)
			p.write("] = ")
			p.printExpr(e.Value, false)
		})

	case *ast.Assert:
		p.paren(atom, func() {
			p.write("assert ")
			p.printExpr(e.Cond, true)
			p.write(" ")
			p.printExpr(e.Expr, true)
		})

	case *ast.Construct:
		p.paren(atom && len(e.Payload) > 0, func() {
			p.writef("#%s", e.Name)
			for _, arg := range e.Payload {
				p.write(" ")
				p.printExpr(arg, true)
			}
		})

	case *ast.Match:
		p.paren(atom, func() {
			p.write("match ")
			p.printExpr(e.Scrutinee, true)
			p.indent++
			for _, c := range e.Cases {
				p.newline()
				p.write("case ")
				p.printPattern(c.Pat)
				p.write(" -> ")
				p.printExpr(c.Body, false)
			}
			p.indent--
		})

	case *ast.Attr:
		p.paren(atom, func() {
			p.writef("#[%s] ", e.Name)
			p.printExpr(e.Expr, true)
		})

	default:
		p.write("<???>")
	}
}

func (p *CodePrinter) printIndices(indices []ast.Expression) {
	for i, idx := range indices {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(idx, false)
	}
}

func (p *CodePrinter) paren(need bool, body func()) {
	if need {
		p.write("(")
	}
	body()
	if need {
		p.write(")")
	}
}

func literalString(v interface{}) string {
	switch lit := v.(type) {
	case string:
		return strconv.Quote(lit)
	case bool:
		if lit {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(lit, 10)
	case float64:
		return strconv.FormatFloat(lit, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
