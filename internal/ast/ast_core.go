package ast

import (
	"github.com/fray-lang/fray/internal/token"
	"github.com/fray-lang/fray/internal/types"
)

// TokenProvider is an interface for any AST node that can provide its
// primary token. This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	GetToken() token.Token
}

// Expression is a Node that represents a fully type-checked expression.
// Every expression knows its type; the defunctionalizer relies on this to
// decide order-zero-ness without re-running inference.
type Expression interface {
	Node
	expressionNode()
	Type() types.Type
}

// Pattern is a Node that represents a structural binding pattern. Patterns
// carry declared types so that bindings introduced by matching are typed.
type Pattern interface {
	Node
	patternNode()
}

// Program is the root node: a list of top-level value declarations in
// dependency order. Everything else (imports, type declarations, module
// structure) has been resolved away by the front end.
type Program struct {
	Decls []*ValDecl
}

// ValDecl is a top-level value declaration.
// let f [n] (x: [n]i32): i32 = body
// A declaration with no Params is a top-level constant binding.
type ValDecl struct {
	Token      token.Token
	Name       string
	SizeParams []string // declared size parameters, e.g. [n][m]
	Params     []Pattern
	RetType    types.Type
	Body       Expression
}

func (vd *ValDecl) GetToken() token.Token { return vd.Token }

// DeclType folds a declaration's parameter and return types into the type
// of the declared name.
func (vd *ValDecl) DeclType() types.Type {
	params := make([]types.Type, len(vd.Params))
	for i, p := range vd.Params {
		params[i] = PatternType(p)
	}
	return types.FuncType(params, vd.RetType)
}
