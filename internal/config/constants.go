package config

// LiftedNameSep separates the call-chain prefix of a lifted declaration's
// name from its numeric disambiguator.
const LiftedNameSep = "^"

// Intrinsic describes a builtin primitive function. Arity is the number of
// curried parameters; SOACArgs marks the argument positions that accept a
// functional argument (second-order array combinator positions).
type Intrinsic struct {
	Name     string
	Arity    int
	SOACArgs []int
}

// Intrinsics is the table of builtin primitive names known to the
// middle-end. Binary operators arrive from the desugarer as applications of
// these names; a name outside this table that is not in scope is an
// internal-consistency violation.
var Intrinsics = map[string]Intrinsic{
	"add":       {Name: "add", Arity: 2},
	"sub":       {Name: "sub", Arity: 2},
	"mul":       {Name: "mul", Arity: 2},
	"div":       {Name: "div", Arity: 2},
	"mod":       {Name: "mod", Arity: 2},
	"pow":       {Name: "pow", Arity: 2},
	"eq":        {Name: "eq", Arity: 2},
	"neq":       {Name: "neq", Arity: 2},
	"lt":        {Name: "lt", Arity: 2},
	"leq":       {Name: "leq", Arity: 2},
	"gt":        {Name: "gt", Arity: 2},
	"geq":       {Name: "geq", Arity: 2},
	"and":       {Name: "and", Arity: 2},
	"or":        {Name: "or", Arity: 2},
	"length":    {Name: "length", Arity: 1},
	"iota":      {Name: "iota", Arity: 1},
	"replicate": {Name: "replicate", Arity: 2},
	"zip":       {Name: "zip", Arity: 2},
	"unzip":     {Name: "unzip", Arity: 1},
	"map":       {Name: "map", Arity: 2, SOACArgs: []int{0}},
	"reduce":    {Name: "reduce", Arity: 3, SOACArgs: []int{0}},
	"scan":      {Name: "scan", Arity: 3, SOACArgs: []int{0}},
	"filter":    {Name: "filter", Arity: 2, SOACArgs: []int{0}},
}

// IsIntrinsic reports whether the name denotes a builtin primitive.
func IsIntrinsic(name string) bool {
	_, ok := Intrinsics[name]
	return ok
}

// IsSOACArg reports whether argument position i of the named intrinsic
// takes a functional argument.
func IsSOACArg(name string, i int) bool {
	in, ok := Intrinsics[name]
	if !ok {
		return false
	}
	for _, p := range in.SOACArgs {
		if p == i {
			return true
		}
	}
	return false
}
