package token

import "fmt"

// Type identifies the syntactic class of a token. The middle-end only ever
// sees tokens attached to already-parsed AST nodes, so the set is much
// smaller than a full lexer's: enough to classify positions for diagnostics.
type Type string

const (
	IDENT   Type = "IDENT"
	INT     Type = "INT"
	FLOAT   Type = "FLOAT"
	STRING  Type = "STRING"
	TRUE    Type = "TRUE"
	FALSE   Type = "FALSE"
	LAMBDA  Type = "LAMBDA"
	LET     Type = "LET"
	IF      Type = "IF"
	LOOP    Type = "LOOP"
	MATCH   Type = "MATCH"
	ASSERT  Type = "ASSERT"
	HOLE    Type = "HOLE"
	LPAREN  Type = "LPAREN"
	LBRACE  Type = "LBRACE"
	LBRACK  Type = "LBRACK"
	COLON   Type = "COLON"
	DOT     Type = "DOT"
	RANGE   Type = "RANGE"
	ATTR    Type = "ATTR"
	WITH    Type = "WITH"
	SYNTH   Type = "SYNTH" // attached to synthesized (compiler-generated) nodes
	EOF     Type = "EOF"
	ILLEGAL Type = "ILLEGAL"
)

// Token is a source token. Literal holds the decoded value for literal
// tokens (int64, float64, bool, string), nil otherwise.
type Token struct {
	Type    Type
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

func New(t Type, lexeme string, line, column int) Token {
	return Token{Type: t, Lexeme: lexeme, Line: line, Column: column}
}

// Synthetic returns a token for a node created by the compiler itself.
// Position 0:0 marks it as having no source location.
func Synthetic(lexeme string) Token {
	return Token{Type: SYNTH, Lexeme: lexeme}
}

// Pos renders the token's position as "line:column", or "<synthetic>" when
// the node has no source location.
func (t Token) Pos() string {
	if t.Line == 0 && t.Column == 0 {
		return "<synthetic>"
	}
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}
