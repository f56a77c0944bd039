package types

import "strconv"

// Size is an array dimension: either a named size variable or an integer
// constant. Size variables live in their own namespace, separate from value
// variables; substitution is keyed by the bare size name.
type Size interface {
	String() string
	sizeNode()
}

// NamedSize is a size variable, bound by a declaration's size parameters or
// a let's existential size binders.
type NamedSize struct {
	Name string
}

func (s NamedSize) sizeNode()      {}
func (s NamedSize) String() string { return s.Name }

// ConstSize is a literal dimension.
type ConstSize struct {
	N int64
}

func (s ConstSize) sizeNode()      {}
func (s ConstSize) String() string { return strconv.FormatInt(s.N, 10) }

func SizeEqual(a, b Size) bool {
	switch as := a.(type) {
	case NamedSize:
		bs, ok := b.(NamedSize)
		return ok && as.Name == bs.Name
	case ConstSize:
		bs, ok := b.(ConstSize)
		return ok && as.N == bs.N
	default:
		return false
	}
}

// SizeSubst maps size-variable names to replacement sizes (named or
// constant).
type SizeSubst map[string]Size

// Lookup resolves a size through the substitution. Constants pass through
// unchanged; unmapped names stay symbolic.
func (s SizeSubst) Lookup(sz Size) Size {
	named, ok := sz.(NamedSize)
	if !ok {
		return sz
	}
	if repl, ok := s[named.Name]; ok {
		return repl
	}
	return sz
}

// Compose returns a substitution equivalent to applying first, then second.
func (s SizeSubst) Compose(second SizeSubst) SizeSubst {
	out := make(SizeSubst, len(s)+len(second))
	for k, v := range s {
		out[k] = second.Lookup(v)
	}
	for k, v := range second {
		if _, done := out[k]; !done {
			out[k] = v
		}
	}
	return out
}

// ReplaceSizes rewrites every size in the type through the substitution.
func ReplaceSizes(subst SizeSubst, t Type) Type {
	if len(subst) == 0 {
		return t
	}
	switch typ := t.(type) {
	case Array:
		return Array{
			Size:   subst.Lookup(typ.Size),
			Elem:   ReplaceSizes(subst, typ.Elem),
			Unique: typ.Unique,
		}
	case Record:
		fields := make([]Field, len(typ.Fields))
		for i, f := range typ.Fields {
			fields[i] = Field{Name: f.Name, Type: ReplaceSizes(subst, f.Type)}
		}
		return Record{Fields: fields}
	case Sum:
		cs := make([]Constructor, len(typ.Constructors))
		for i, c := range typ.Constructors {
			payload := make([]Type, len(c.Payload))
			for j, p := range c.Payload {
				payload[j] = ReplaceSizes(subst, p)
			}
			cs[i] = Constructor{Name: c.Name, Payload: payload}
		}
		return Sum{Constructors: cs}
	case Func:
		return Func{Param: ReplaceSizes(subst, typ.Param), Ret: ReplaceSizes(subst, typ.Ret)}
	default:
		return t
	}
}

// FreeSizes collects the size-variable names occurring in the type, in
// first-occurrence order.
func FreeSizes(t Type) []string {
	var names []string
	seen := map[string]bool{}
	var walk func(Type)
	walkSize := func(s Size) {
		if named, ok := s.(NamedSize); ok && !seen[named.Name] {
			seen[named.Name] = true
			names = append(names, named.Name)
		}
	}
	walk = func(t Type) {
		switch typ := t.(type) {
		case Array:
			walkSize(typ.Size)
			walk(typ.Elem)
		case Record:
			for _, f := range typ.Fields {
				walk(f.Type)
			}
		case Sum:
			for _, c := range typ.Constructors {
				for _, p := range c.Payload {
					walk(p)
				}
			}
		case Func:
			walk(typ.Param)
			walk(typ.Ret)
		}
	}
	walk(t)
	return names
}

// DimMapping walks two structurally matching types in parallel and records,
// for every named size in the generic type paired with a named or constant
// size in the concrete type, a substitution entry. The first pairing wins,
// so when both sides are names already in scope the left-hand occurrence's
// earlier mapping is preferred. Structural mismatches contribute nothing:
// the caller is responsible for having checked the types match.
func DimMapping(generic, concrete Type) SizeSubst {
	subst := SizeSubst{}
	var walk func(g, c Type)
	walkSize := func(g, c Size) {
		named, ok := g.(NamedSize)
		if !ok {
			return
		}
		if _, done := subst[named.Name]; done {
			return
		}
		subst[named.Name] = c
	}
	walk = func(g, c Type) {
		switch gt := g.(type) {
		case Array:
			ct, ok := c.(Array)
			if !ok {
				return
			}
			walkSize(gt.Size, ct.Size)
			walk(gt.Elem, ct.Elem)
		case Record:
			ct, ok := c.(Record)
			if !ok || len(gt.Fields) != len(ct.Fields) {
				return
			}
			for i := range gt.Fields {
				walk(gt.Fields[i].Type, ct.Fields[i].Type)
			}
		case Sum:
			ct, ok := c.(Sum)
			if !ok || len(gt.Constructors) != len(ct.Constructors) {
				return
			}
			for i := range gt.Constructors {
				gp, cp := gt.Constructors[i].Payload, ct.Constructors[i].Payload
				if len(gp) != len(cp) {
					continue
				}
				for j := range gp {
					walk(gp[j], cp[j])
				}
			}
		case Func:
			ct, ok := c.(Func)
			if !ok {
				return
			}
			walk(gt.Param, ct.Param)
			walk(gt.Ret, ct.Ret)
		}
	}
	walk(generic, concrete)
	return subst
}
