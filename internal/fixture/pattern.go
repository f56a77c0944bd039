package fixture

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/fray-lang/fray/internal/ast"
	"github.com/fray-lang/fray/internal/token"
	"github.com/fray-lang/fray/internal/types"
)

func decodePattern(n *yaml.Node) (ast.Pattern, error) {
	if n == nil {
		return nil, fmt.Errorf("missing pattern")
	}
	if n.Kind == yaml.AliasNode {
		return decodePattern(n.Alias)
	}
	kind, val, err := kindOf(n)
	if err != nil {
		return nil, err
	}
	tok := token.Synthetic(kind)

	switch kind {
	case "wildcard":
		t, err := decodeType(val)
		if err != nil {
			return nil, err
		}
		return &ast.WildcardPattern{Token: tok, Typ: t}, nil

	case "ident":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		t, err := decodeType(fs["type"])
		if err != nil {
			return nil, err
		}
		name := fs["name"].Value
		return &ast.IdentPattern{Token: token.Synthetic(name), Name: name, Typ: t}, nil

	case "tuple":
		items, err := sequence(val)
		if err != nil {
			return nil, err
		}
		elems := make([]ast.Pattern, len(items))
		for i, item := range items {
			p, err := decodePattern(item)
			if err != nil {
				return nil, err
			}
			elems[i] = p
		}
		return &ast.TuplePattern{Token: tok, Elems: elems}, nil

	case "record":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		recFields := make([]ast.PatField, 0, len(fs))
		for name, pn := range fs {
			p, err := decodePattern(pn)
			if err != nil {
				return nil, err
			}
			recFields = append(recFields, ast.PatField{Name: name, Pat: p})
		}
		sortPatFields(recFields)
		return &ast.RecordPattern{Token: tok, Fields: recFields}, nil

	case "constructor":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		t, err := decodeType(fs["type"])
		if err != nil {
			return nil, err
		}
		var payload []ast.Pattern
		if pn, ok := fs["payload"]; ok {
			items, err := sequence(pn)
			if err != nil {
				return nil, err
			}
			payload = make([]ast.Pattern, len(items))
			for i, item := range items {
				p, err := decodePattern(item)
				if err != nil {
					return nil, err
				}
				payload[i] = p
			}
		}
		return &ast.ConstructorPattern{Token: tok, Name: fs["name"].Value, Payload: payload, Typ: t}, nil

	case "lit":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		t, err := decodeType(fs["type"])
		if err != nil {
			return nil, err
		}
		value, err := decodeLitValue(fs["value"])
		if err != nil {
			return nil, err
		}
		return &ast.LiteralPattern{Token: tok, Value: value, Typ: t}, nil

	default:
		return nil, fmt.Errorf("line %d: unknown pattern kind %q", n.Line, kind)
	}
}

func sortPatFields(fields []ast.PatField) {
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0 && types.FieldNameLess(fields[j].Name, fields[j-1].Name); j-- {
			fields[j], fields[j-1] = fields[j-1], fields[j]
		}
	}
}
