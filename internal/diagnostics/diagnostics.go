package diagnostics

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/fray-lang/fray/internal/token"
)

// Code is a stable diagnostic code. D-codes are defunctionalization-stage
// internal-consistency violations: they mean the input broke a guarantee
// the type checker and monomorphizer were supposed to establish.
type Code string

const (
	// ErrD001: an AST shape that should have been eliminated upstream
	// (operator section, nested function definition, surviving binop).
	ErrD001 Code = "D001"
	// ErrD002: a pattern bound against a static value of a different shape.
	ErrD002 Code = "D002"
	// ErrD003: a size variable with no resolvable substitution.
	ErrD003 Code = "D003"
	// ErrD004: a variable that is neither in scope nor a known intrinsic.
	ErrD004 Code = "D004"
	// ErrD005: a function value applied that the static approximation
	// cannot resolve.
	ErrD005 Code = "D005"
)

// Error is a single diagnostic.
type Error struct {
	Code    Code
	Token   token.Token
	Message string
	// Decl names the top-level declaration being processed when the error
	// occurred, when known.
	Decl string
	// ReportID tags internal-consistency violations so a crash report can
	// be correlated with a compiler log line.
	ReportID string
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", e.Code, e.Token.Pos(), e.Message)
	if e.Decl != "" {
		fmt.Fprintf(&b, " (while processing %q)", e.Decl)
	}
	if e.ReportID != "" {
		fmt.Fprintf(&b, " [ice:%s]", e.ReportID)
	}
	return b.String()
}

// NewError creates a diagnostic for the given code and source token.
func NewError(code Code, tok token.Token, msg string) *Error {
	return &Error{Code: code, Token: tok, Message: msg}
}

// NewInternal creates an internal-consistency diagnostic. Internal errors
// are unrecoverable for the compilation unit; the uuid report id lets a
// user-facing crash message be matched against logs.
func NewInternal(code Code, tok token.Token, msg string) *Error {
	return &Error{Code: code, Token: tok, Message: "internal: " + msg, ReportID: uuid.NewString()}
}

// WithDecl attaches the enclosing declaration's name, if not already set.
func (e *Error) WithDecl(name string) *Error {
	if e.Decl == "" {
		e.Decl = name
	}
	return e
}

// AsError reports whether err is a diagnostics Error.
func AsError(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}

const (
	ansiRed   = "\x1b[31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Render writes diagnostics one per line, optionally ANSI-colored.
func Render(w io.Writer, errs []*Error, color bool) {
	for _, e := range errs {
		if color {
			fmt.Fprintf(w, "%s%serror%s %s\n", ansiBold, ansiRed, ansiReset, e.Error())
		} else {
			fmt.Fprintf(w, "error %s\n", e.Error())
		}
	}
}
