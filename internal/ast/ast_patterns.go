package ast

import (
	"github.com/fray-lang/fray/internal/token"
	"github.com/fray-lang/fray/internal/types"
)

// WildcardPattern: _
type WildcardPattern struct {
	Token token.Token
	Typ   types.Type
}

func (p *WildcardPattern) patternNode()          {}
func (p *WildcardPattern) GetToken() token.Token { return p.Token }

// IdentPattern: x. Binds the matched value under Name; Typ is the declared
// type of the binding.
type IdentPattern struct {
	Token token.Token
	Name  string
	Typ   types.Type
}

func (p *IdentPattern) patternNode()          {}
func (p *IdentPattern) GetToken() token.Token { return p.Token }

// TuplePattern: (p1, p2, _)
type TuplePattern struct {
	Token token.Token
	Elems []Pattern
}

func (p *TuplePattern) patternNode()          {}
func (p *TuplePattern) GetToken() token.Token { return p.Token }

// PatField is a single field of a record pattern.
type PatField struct {
	Name string
	Pat  Pattern
}

// RecordPattern: {x = p1, y = p2}
type RecordPattern struct {
	Token  token.Token
	Fields []PatField
}

func (p *RecordPattern) patternNode()          {}
func (p *RecordPattern) GetToken() token.Token { return p.Token }

// ConstructorPattern: #some p. Typ is the full sum type the constructor
// belongs to.
type ConstructorPattern struct {
	Token   token.Token
	Name    string
	Payload []Pattern
	Typ     types.Type
}

func (p *ConstructorPattern) patternNode()          {}
func (p *ConstructorPattern) GetToken() token.Token { return p.Token }

// LiteralPattern: 1, true
type LiteralPattern struct {
	Token token.Token
	Value interface{}
	Typ   types.Type
}

func (p *LiteralPattern) patternNode()          {}
func (p *LiteralPattern) GetToken() token.Token { return p.Token }

// PatternType computes the declared type of a pattern.
func PatternType(p Pattern) types.Type {
	switch pat := p.(type) {
	case *WildcardPattern:
		return pat.Typ
	case *IdentPattern:
		return pat.Typ
	case *TuplePattern:
		elems := make([]types.Type, len(pat.Elems))
		for i, e := range pat.Elems {
			elems[i] = PatternType(e)
		}
		return types.NewTuple(elems...)
	case *RecordPattern:
		fields := make([]types.Field, len(pat.Fields))
		for i, f := range pat.Fields {
			fields[i] = types.Field{Name: f.Name, Type: PatternType(f.Pat)}
		}
		return types.NewRecord(fields)
	case *ConstructorPattern:
		return pat.Typ
	case *LiteralPattern:
		return pat.Typ
	default:
		return nil
	}
}

// PatternNames collects the names bound by a pattern, in binding order.
func PatternNames(p Pattern) []string {
	var names []string
	var walk func(Pattern)
	walk = func(p Pattern) {
		switch pat := p.(type) {
		case *IdentPattern:
			names = append(names, pat.Name)
		case *TuplePattern:
			for _, e := range pat.Elems {
				walk(e)
			}
		case *RecordPattern:
			for _, f := range pat.Fields {
				walk(f.Pat)
			}
		case *ConstructorPattern:
			for _, e := range pat.Payload {
				walk(e)
			}
		}
	}
	walk(p)
	return names
}
