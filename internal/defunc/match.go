package defunc

import (
	"sort"

	"github.com/fray-lang/fray/internal/ast"
	"github.com/fray-lang/fray/internal/diagnostics"
	"github.com/fray-lang/fray/internal/types"
)

// matchPatSV binds a structural pattern against a static value, producing
// the environment extension in binding order. A shape mismatch is an
// internal-consistency violation: the type checker guaranteed these shapes
// agree.
func (d *Defunctionalizer) matchPatSV(pat ast.Pattern, sv StaticVal) ([]EnvBinding, error) {
	switch p := pat.(type) {
	case *ast.WildcardPattern, *ast.LiteralPattern:
		return nil, nil

	case *ast.IdentPattern:
		// The declared type wins when it is order-zero: it carries the
		// accurate uniqueness attribute, and a static value that still
		// looks higher-order (or unique) must be downgraded to it.
		if types.IsOrderZero(p.Typ) {
			if _, isDyn := sv.(*Dynamic); isDyn || !orderZeroSV(sv) {
				return []EnvBinding{{Name: p.Name, Binding: Binding{SV: &Dynamic{Typ: p.Typ}}}}, nil
			}
		}
		return []EnvBinding{{Name: p.Name, Binding: Binding{SV: sv}}}, nil

	case *ast.TuplePattern:
		rec, err := d.asRecordSV(pat, sv)
		if err != nil {
			return nil, err
		}
		if len(rec.Fields) != len(p.Elems) {
			return nil, d.internalErr(diagnostics.ErrD002, pat.GetToken(),
				"tuple pattern of %d elements matched against record of %d fields", len(p.Elems), len(rec.Fields))
		}
		var binds []EnvBinding
		for i, elem := range p.Elems {
			bs, err := d.matchPatSV(elem, rec.Fields[i].Val)
			if err != nil {
				return nil, err
			}
			binds = append(binds, bs...)
		}
		return binds, nil

	case *ast.RecordPattern:
		rec, err := d.asRecordSV(pat, sv)
		if err != nil {
			return nil, err
		}
		fields := sortedPatFields(p.Fields)
		if len(fields) != len(rec.Fields) {
			return nil, d.internalErr(diagnostics.ErrD002, pat.GetToken(),
				"record pattern fields %v do not cover static value fields", patFieldNames(fields))
		}
		var binds []EnvBinding
		for i, f := range fields {
			if f.Name != rec.Fields[i].Name {
				return nil, d.internalErr(diagnostics.ErrD002, pat.GetToken(),
					"record pattern field %q does not match static value field %q", f.Name, rec.Fields[i].Name)
			}
			bs, err := d.matchPatSV(f.Pat, rec.Fields[i].Val)
			if err != nil {
				return nil, err
			}
			binds = append(binds, bs...)
		}
		return binds, nil

	case *ast.ConstructorPattern:
		payload, err := d.constructorPayload(p, sv)
		if err != nil {
			return nil, err
		}
		if len(payload) != len(p.Payload) {
			return nil, d.internalErr(diagnostics.ErrD002, pat.GetToken(),
				"constructor %q pattern arity %d does not match payload arity %d", p.Name, len(p.Payload), len(payload))
		}
		var binds []EnvBinding
		for i, sub := range p.Payload {
			bs, err := d.matchPatSV(sub, payload[i])
			if err != nil {
				return nil, err
			}
			binds = append(binds, bs...)
		}
		return binds, nil

	default:
		return nil, d.internalErr(diagnostics.ErrD001, pat.GetToken(), "unhandled pattern form %T", pat)
	}
}

// asRecordSV views a static value as a record of static values, refining
// Dynamic and Hole values through their types.
func (d *Defunctionalizer) asRecordSV(pat ast.Pattern, sv StaticVal) (*RecordSV, error) {
	switch v := sv.(type) {
	case *RecordSV:
		return v, nil
	case *Dynamic:
		if rec, ok := svFromType(v.Typ).(*RecordSV); ok {
			return rec, nil
		}
	case *HoleSV:
		if rec, ok := svFromType(v.Typ).(*RecordSV); ok {
			return rec, nil
		}
	}
	return nil, d.internalErr(diagnostics.ErrD002, pat.GetToken(),
		"record pattern matched against non-record static value %T", sv)
}

// constructorPayload resolves the static values carried by a constructor
// pattern's payload. A statically known sum with the same tag yields its
// tracked payload; any other constructor falls back to fresh dynamic values
// derived from the declared payload types.
func (d *Defunctionalizer) constructorPayload(p *ast.ConstructorPattern, sv StaticVal) ([]StaticVal, error) {
	switch v := sv.(type) {
	case *SumSV:
		if v.Constructor == p.Name {
			return v.Payload, nil
		}
		for _, c := range v.Others {
			if c.Name == p.Name {
				return dynamicPayload(c.Payload), nil
			}
		}
		return nil, d.internalErr(diagnostics.ErrD002, p.GetToken(),
			"constructor %q not found in static sum value", p.Name)
	case *Dynamic, *HoleSV:
		t, err := typeOfSV(sv)
		if err != nil {
			return nil, err
		}
		sum, ok := t.(types.Sum)
		if !ok {
			return nil, d.internalErr(diagnostics.ErrD002, p.GetToken(),
				"constructor pattern matched against non-sum type %s", t)
		}
		payload, ok := sum.ConstructorPayload(p.Name)
		if !ok {
			return nil, d.internalErr(diagnostics.ErrD002, p.GetToken(),
				"constructor %q not found in sum type %s", p.Name, t)
		}
		return dynamicPayload(payload), nil
	default:
		return nil, d.internalErr(diagnostics.ErrD002, p.GetToken(),
			"constructor pattern matched against static value %T", sv)
	}
}

func dynamicPayload(declared []types.Type) []StaticVal {
	svs := make([]StaticVal, len(declared))
	for i, t := range declared {
		svs[i] = svFromType(t)
	}
	return svs
}

// updatePat rewrites a pattern's declared types to the uniqueness-lowered
// types implied by the static value it was matched against, so downstream
// consumers see accurate order-zero types instead of stale function types.
func (d *Defunctionalizer) updatePat(pat ast.Pattern, sv StaticVal) (ast.Pattern, error) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		t, err := typeOfSV(sv)
		if err != nil {
			return nil, err
		}
		return &ast.WildcardPattern{Token: p.Token, Typ: types.NonUnique(t)}, nil

	case *ast.IdentPattern:
		t, err := typeOfSV(sv)
		if err != nil {
			return nil, err
		}
		// A declared unique type keeps its uniqueness: the function
		// consumes the argument, and erasing that would reject valid
		// in-place updates downstream.
		if types.HasUnique(p.Typ) && types.Equal(types.NonUnique(p.Typ), types.NonUnique(t)) {
			return p, nil
		}
		return &ast.IdentPattern{Token: p.Token, Name: p.Name, Typ: types.NonUnique(t)}, nil

	case *ast.TuplePattern:
		rec, err := d.asRecordSV(pat, sv)
		if err != nil {
			return nil, err
		}
		if len(rec.Fields) != len(p.Elems) {
			return nil, d.internalErr(diagnostics.ErrD002, pat.GetToken(),
				"tuple pattern of %d elements updated against record of %d fields", len(p.Elems), len(rec.Fields))
		}
		elems := make([]ast.Pattern, len(p.Elems))
		for i, elem := range p.Elems {
			elems[i], err = d.updatePat(elem, rec.Fields[i].Val)
			if err != nil {
				return nil, err
			}
		}
		return &ast.TuplePattern{Token: p.Token, Elems: elems}, nil

	case *ast.RecordPattern:
		rec, err := d.asRecordSV(pat, sv)
		if err != nil {
			return nil, err
		}
		fields := sortedPatFields(p.Fields)
		if len(fields) != len(rec.Fields) {
			return nil, d.internalErr(diagnostics.ErrD002, pat.GetToken(),
				"record pattern fields %v do not cover static value fields", patFieldNames(fields))
		}
		out := make([]ast.PatField, len(fields))
		for i, f := range fields {
			if f.Name != rec.Fields[i].Name {
				return nil, d.internalErr(diagnostics.ErrD002, pat.GetToken(),
					"record pattern field %q does not match static value field %q", f.Name, rec.Fields[i].Name)
			}
			sub, err := d.updatePat(f.Pat, rec.Fields[i].Val)
			if err != nil {
				return nil, err
			}
			out[i] = ast.PatField{Name: f.Name, Pat: sub}
		}
		return &ast.RecordPattern{Token: p.Token, Fields: out}, nil

	case *ast.ConstructorPattern:
		payload, err := d.constructorPayload(p, sv)
		if err != nil {
			return nil, err
		}
		if len(payload) != len(p.Payload) {
			return nil, d.internalErr(diagnostics.ErrD002, pat.GetToken(),
				"constructor %q pattern arity %d does not match payload arity %d", p.Name, len(p.Payload), len(payload))
		}
		subs := make([]ast.Pattern, len(p.Payload))
		for i, sub := range p.Payload {
			subs[i], err = d.updatePat(sub, payload[i])
			if err != nil {
				return nil, err
			}
		}
		t, err := typeOfSV(sv)
		if err != nil {
			return nil, err
		}
		return &ast.ConstructorPattern{Token: p.Token, Name: p.Name, Payload: subs, Typ: types.NonUnique(t)}, nil

	case *ast.LiteralPattern:
		return p, nil

	default:
		return nil, d.internalErr(diagnostics.ErrD001, pat.GetToken(), "unhandled pattern form %T", pat)
	}
}

// sortedPatFields returns the record pattern's fields in the same canonical
// order record static values use, so both sides match by name rather than
// textual order.
func sortedPatFields(fields []ast.PatField) []ast.PatField {
	out := make([]ast.PatField, len(fields))
	copy(out, fields)
	sort.SliceStable(out, func(i, j int) bool {
		return types.FieldNameLess(out[i].Name, out[j].Name)
	})
	return out
}

func patFieldNames(fields []ast.PatField) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
