package fixture

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/fray-lang/fray/internal/types"
)

// decodeType parses a type node. Primitive types are plain scalars; every
// composite type is a single-key mapping.
func decodeType(n *yaml.Node) (types.Type, error) {
	if n.Kind == yaml.AliasNode {
		return decodeType(n.Alias)
	}
	if n.Kind == yaml.ScalarNode {
		if n.Value == "unit" {
			return types.Unit(), nil
		}
		return types.Prim{Name: n.Value}, nil
	}
	kind, val, err := kindOf(n)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "array":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		size, err := decodeSize(fs["size"])
		if err != nil {
			return nil, err
		}
		elem, err := decodeType(fs["elem"])
		if err != nil {
			return nil, err
		}
		unique := false
		if u, ok := fs["unique"]; ok {
			if err := u.Decode(&unique); err != nil {
				return nil, err
			}
		}
		return types.Array{Size: size, Elem: elem, Unique: unique}, nil

	case "record":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		rec := make([]types.Field, 0, len(fs))
		for name, tn := range fs {
			t, err := decodeType(tn)
			if err != nil {
				return nil, err
			}
			rec = append(rec, types.Field{Name: name, Type: t})
		}
		return types.NewRecord(rec), nil

	case "tuple":
		elems, err := decodeTypes(val)
		if err != nil {
			return nil, err
		}
		return types.NewTuple(elems...), nil

	case "sum":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		cs := make([]types.Constructor, 0, len(fs))
		for name, pn := range fs {
			payload, err := decodeTypes(pn)
			if err != nil {
				return nil, err
			}
			cs = append(cs, types.Constructor{Name: name, Payload: payload})
		}
		return types.NewSum(cs), nil

	case "func":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		ret, err := decodeType(fs["ret"])
		if err != nil {
			return nil, err
		}
		if pn, ok := fs["params"]; ok {
			params, err := decodeTypes(pn)
			if err != nil {
				return nil, err
			}
			return types.FuncType(params, ret), nil
		}
		param, err := decodeType(fs["param"])
		if err != nil {
			return nil, err
		}
		return types.Func{Param: param, Ret: ret}, nil

	default:
		return nil, fmt.Errorf("line %d: unknown type kind %q", n.Line, kind)
	}
}

func decodeTypes(n *yaml.Node) ([]types.Type, error) {
	items, err := sequence(n)
	if err != nil {
		return nil, err
	}
	out := make([]types.Type, len(items))
	for i, item := range items {
		t, err := decodeType(item)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// decodeSize parses a dimension: an integer scalar is a constant, any other
// scalar is a size-variable name.
func decodeSize(n *yaml.Node) (types.Size, error) {
	if n == nil {
		return nil, fmt.Errorf("missing size")
	}
	if n.Kind == yaml.AliasNode {
		return decodeSize(n.Alias)
	}
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("line %d: expected a size scalar", n.Line)
	}
	var c int64
	if err := n.Decode(&c); err == nil {
		return types.ConstSize{N: c}, nil
	}
	return types.NamedSize{Name: n.Value}, nil
}
