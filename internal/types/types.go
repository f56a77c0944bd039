package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Type is the interface for all types in the monomorphic core language.
// No type variables survive to this stage; the only symbolic component left
// in a type is a named array size.
type Type interface {
	String() string
	typeNode()
}

// Prim is a primitive type: i8..i64, u8..u64, f32, f64, bool.
type Prim struct {
	Name string
}

func (t Prim) typeNode()      {}
func (t Prim) String() string { return t.Name }

// Array is a single-dimension array type. Multidimensional arrays are
// arrays of arrays. Unique marks the in-place-updatable (consuming) variant.
type Array struct {
	Size   Size
	Elem   Type
	Unique bool
}

func (t Array) typeNode() {}
func (t Array) String() string {
	star := ""
	if t.Unique {
		star = "*"
	}
	return fmt.Sprintf("%s[%s]%s", star, t.Size, t.Elem)
}

// Field is a single record field. Records keep their fields in canonical
// (sorted) order; use NewRecord to build one.
type Field struct {
	Name string
	Type Type
}

// Record is a record type. Tuples are records with positional field names
// "0", "1", ... (see IsTuple).
type Record struct {
	Fields []Field
}

func (t Record) typeNode() {}

func (t Record) String() string {
	if t.IsTuple() {
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.Type.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// NewRecord builds a record type with fields in canonical order.
func NewRecord(fields []Field) Record {
	sorted := make([]Field, len(fields))
	copy(sorted, fields)
	SortFields(sorted)
	return Record{Fields: sorted}
}

// NewTuple builds the record encoding of a tuple.
func NewTuple(elems ...Type) Record {
	fields := make([]Field, len(elems))
	for i, e := range elems {
		fields[i] = Field{Name: TupleFieldName(i), Type: e}
	}
	return Record{Fields: fields}
}

// Unit is the empty record, the result type of pure effects.
func Unit() Record { return Record{} }

// TupleFieldName returns the positional field name of tuple element i.
func TupleFieldName(i int) string { return strconv.Itoa(i) }

// IsTuple reports whether the record is the encoding of a tuple: fields
// named "0".."n-1" in order.
func (t Record) IsTuple() bool {
	if len(t.Fields) == 0 {
		return false
	}
	for i, f := range t.Fields {
		if f.Name != TupleFieldName(i) {
			return false
		}
	}
	return true
}

// FieldType looks up a field by name.
func (t Record) FieldType(name string) (Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// SortFields sorts record fields into canonical order. Tuple fields sort
// numerically so "10" follows "9".
func SortFields(fields []Field) {
	sort.SliceStable(fields, func(i, j int) bool {
		return FieldNameLess(fields[i].Name, fields[j].Name)
	})
}

// FieldNameLess is the canonical ordering of record field names.
func FieldNameLess(a, b string) bool {
	an, aerr := strconv.Atoi(a)
	bn, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return an < bn
	}
	return a < b
}

// Constructor is one alternative of a sum type.
type Constructor struct {
	Name    string
	Payload []Type
}

// Sum is a sum (variant) type. Constructors are kept sorted by name.
type Sum struct {
	Constructors []Constructor
}

func (t Sum) typeNode() {}

func (t Sum) String() string {
	parts := make([]string, len(t.Constructors))
	for i, c := range t.Constructors {
		s := "#" + c.Name
		for _, p := range c.Payload {
			s += " " + p.String()
		}
		parts[i] = s
	}
	return strings.Join(parts, " | ")
}

// NewSum builds a sum type with constructors in canonical order.
func NewSum(cs []Constructor) Sum {
	sorted := make([]Constructor, len(cs))
	copy(sorted, cs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return Sum{Constructors: sorted}
}

// ConstructorPayload looks up a constructor's declared payload types.
func (t Sum) ConstructorPayload(name string) ([]Type, bool) {
	for _, c := range t.Constructors {
		if c.Name == name {
			return c.Payload, true
		}
	}
	return nil, false
}

// Func is a (curried) function type with a single parameter.
type Func struct {
	Param Type
	Ret   Type
}

func (t Func) typeNode() {}
func (t Func) String() string {
	if _, ok := t.Param.(Func); ok {
		return fmt.Sprintf("(%s) -> %s", t.Param, t.Ret)
	}
	return fmt.Sprintf("%s -> %s", t.Param, t.Ret)
}

// FuncType folds a parameter list into a curried function type.
func FuncType(params []Type, ret Type) Type {
	t := ret
	for i := len(params) - 1; i >= 0; i-- {
		t = Func{Param: params[i], Ret: t}
	}
	return t
}

// UncurryFunc peels every arrow off a function type, returning the
// parameter types in order and the final result type.
func UncurryFunc(t Type) ([]Type, Type) {
	var params []Type
	for {
		f, ok := t.(Func)
		if !ok {
			return params, t
		}
		params = append(params, f.Param)
		t = f.Ret
	}
}

// Order returns the function order of a type: 0 for types with no arrow,
// 1 + max(order of components) for function types.
func Order(t Type) int {
	switch typ := t.(type) {
	case Prim:
		return 0
	case Array:
		return Order(typ.Elem)
	case Record:
		max := 0
		for _, f := range typ.Fields {
			if o := Order(f.Type); o > max {
				max = o
			}
		}
		return max
	case Sum:
		max := 0
		for _, c := range typ.Constructors {
			for _, p := range c.Payload {
				if o := Order(p); o > max {
					max = o
				}
			}
		}
		return max
	case Func:
		po := Order(typ.Param)
		ro := Order(typ.Ret)
		if po >= ro {
			return po + 1
		}
		return ro + 1
	default:
		return 0
	}
}

// IsOrderZero reports whether the type contains no function arrow and is
// therefore directly representable in the array IR.
func IsOrderZero(t Type) bool { return Order(t) == 0 }

// NonUnique strips the uniqueness attribute from every array in the type.
func NonUnique(t Type) Type {
	switch typ := t.(type) {
	case Array:
		return Array{Size: typ.Size, Elem: NonUnique(typ.Elem), Unique: false}
	case Record:
		fields := make([]Field, len(typ.Fields))
		for i, f := range typ.Fields {
			fields[i] = Field{Name: f.Name, Type: NonUnique(f.Type)}
		}
		return Record{Fields: fields}
	case Sum:
		cs := make([]Constructor, len(typ.Constructors))
		for i, c := range typ.Constructors {
			payload := make([]Type, len(c.Payload))
			for j, p := range c.Payload {
				payload[j] = NonUnique(p)
			}
			cs[i] = Constructor{Name: c.Name, Payload: payload}
		}
		return Sum{Constructors: cs}
	case Func:
		return typ
	default:
		return t
	}
}

// HasUnique reports whether any array in the type is unique.
func HasUnique(t Type) bool {
	switch typ := t.(type) {
	case Array:
		return typ.Unique || HasUnique(typ.Elem)
	case Record:
		for _, f := range typ.Fields {
			if HasUnique(f.Type) {
				return true
			}
		}
		return false
	case Sum:
		for _, c := range typ.Constructors {
			for _, p := range c.Payload {
				if HasUnique(p) {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}

// StripFuncs collapses every function type inside t to the empty record.
// Sum payloads can recursively contain closures, and this is the shape a
// closure of that payload takes after defunctionalization.
func StripFuncs(t Type) Type {
	switch typ := t.(type) {
	case Func:
		return Record{}
	case Array:
		return Array{Size: typ.Size, Elem: StripFuncs(typ.Elem), Unique: typ.Unique}
	case Record:
		fields := make([]Field, len(typ.Fields))
		for i, f := range typ.Fields {
			fields[i] = Field{Name: f.Name, Type: StripFuncs(f.Type)}
		}
		return Record{Fields: fields}
	case Sum:
		cs := make([]Constructor, len(typ.Constructors))
		for i, c := range typ.Constructors {
			payload := make([]Type, len(c.Payload))
			for j, p := range c.Payload {
				payload[j] = StripFuncs(p)
			}
			cs[i] = Constructor{Name: c.Name, Payload: payload}
		}
		return Sum{Constructors: cs}
	default:
		return t
	}
}

// Equal compares two types structurally, including sizes and uniqueness.
func Equal(a, b Type) bool {
	switch at := a.(type) {
	case Prim:
		bt, ok := b.(Prim)
		return ok && at.Name == bt.Name
	case Array:
		bt, ok := b.(Array)
		return ok && at.Unique == bt.Unique && SizeEqual(at.Size, bt.Size) && Equal(at.Elem, bt.Elem)
	case Record:
		bt, ok := b.(Record)
		if !ok || len(at.Fields) != len(bt.Fields) {
			return false
		}
		for i := range at.Fields {
			if at.Fields[i].Name != bt.Fields[i].Name || !Equal(at.Fields[i].Type, bt.Fields[i].Type) {
				return false
			}
		}
		return true
	case Sum:
		bt, ok := b.(Sum)
		if !ok || len(at.Constructors) != len(bt.Constructors) {
			return false
		}
		for i := range at.Constructors {
			ac, bc := at.Constructors[i], bt.Constructors[i]
			if ac.Name != bc.Name || len(ac.Payload) != len(bc.Payload) {
				return false
			}
			for j := range ac.Payload {
				if !Equal(ac.Payload[j], bc.Payload[j]) {
					return false
				}
			}
		}
		return true
	case Func:
		bt, ok := b.(Func)
		return ok && Equal(at.Param, bt.Param) && Equal(at.Ret, bt.Ret)
	default:
		return false
	}
}
