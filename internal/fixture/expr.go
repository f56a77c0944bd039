package fixture

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/fray-lang/fray/internal/ast"
	"github.com/fray-lang/fray/internal/token"
	"github.com/fray-lang/fray/internal/types"
)

func decodeExpr(n *yaml.Node) (ast.Expression, error) {
	if n.Kind == yaml.AliasNode {
		return decodeExpr(n.Alias)
	}
	kind, val, err := kindOf(n)
	if err != nil {
		return nil, err
	}
	tok := token.Synthetic(kind)

	switch kind {
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
		return &ast.Literal{Token: tok, Value: value, Typ: t}, nil

	case "var":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		t, err := decodeType(fs["type"])
		if err != nil {
			return nil, err
		}
		return &ast.Var{Token: tok, Name: fs["name"].Value, Typ: t}, nil

	case "hole":
		t, err := decodeType(val)
		if err != nil {
			return nil, err
		}
		return &ast.Hole{Token: tok, Typ: t}, nil

	case "tuple":
		elems, err := decodeExprs(val)
		if err != nil {
			return nil, err
		}
		return &ast.TupleLit{Token: tok, Elems: elems}, nil

	case "record":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		rec := make([]ast.RecordField, 0, len(fs))
		for name, en := range fs {
			e, err := decodeExpr(en)
			if err != nil {
				return nil, err
			}
			rec = append(rec, ast.RecordField{Token: tok, Name: name, Value: e})
		}
		sortRecordFields(rec)
		return &ast.RecordLit{Token: tok, Fields: rec}, nil

	case "record_update":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		rec, err := decodeExpr(fs["record"])
		if err != nil {
			return nil, err
		}
		v, err := decodeExpr(fs["value"])
		if err != nil {
			return nil, err
		}
		return &ast.RecordUpdate{Token: tok, Record: rec, Field: fs["field"].Value, Value: v}, nil

	case "project":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		rec, err := decodeExpr(fs["record"])
		if err != nil {
			return nil, err
		}
		t, err := decodeType(fs["type"])
		if err != nil {
			return nil, err
		}
		return &ast.Project{Token: tok, Record: rec, Field: fs["field"].Value, Typ: t}, nil

	case "array":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		elems, err := decodeExprs(fs["elems"])
		if err != nil {
			return nil, err
		}
		t, err := decodeType(fs["type"])
		if err != nil {
			return nil, err
		}
		return &ast.ArrayLit{Token: tok, Elems: elems, Typ: t}, nil

	case "range":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		start, err := decodeExpr(fs["start"])
		if err != nil {
			return nil, err
		}
		var step ast.Expression
		if sn, ok := fs["step"]; ok {
			step, err = decodeExpr(sn)
			if err != nil {
				return nil, err
			}
		}
		end, err := decodeExpr(fs["end"])
		if err != nil {
			return nil, err
		}
		t, err := decodeType(fs["type"])
		if err != nil {
			return nil, err
		}
		return &ast.Range{Token: tok, Start: start, Step: step, End: end, Typ: t}, nil

	case "ascribe":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		e, err := decodeExpr(fs["expr"])
		if err != nil {
			return nil, err
		}
		t, err := decodeType(fs["type"])
		if err != nil {
			return nil, err
		}
		coerce := false
		if c, ok := fs["coerce"]; ok {
			if err := c.Decode(&coerce); err != nil {
				return nil, err
			}
		}
		return &ast.Ascript{Token: tok, Expr: e, Ann: t, Coercion: coerce}, nil

	case "let":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		var sizes []string
		if sn, ok := fs["sizes"]; ok {
			if err := sn.Decode(&sizes); err != nil {
				return nil, err
			}
		}
		pat, err := decodePattern(fs["pat"])
		if err != nil {
			return nil, err
		}
		value, err := decodeExpr(fs["value"])
		if err != nil {
			return nil, err
		}
		body, err := decodeExpr(fs["body"])
		if err != nil {
			return nil, err
		}
		typ := body.Type()
		if tn, ok := fs["type"]; ok {
			typ, err = decodeType(tn)
			if err != nil {
				return nil, err
			}
		}
		return &ast.Let{Token: tok, SizeBinders: sizes, Pat: pat, Value: value, Body: body, Typ: typ}, nil

	case "if":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		cond, err := decodeExpr(fs["cond"])
		if err != nil {
			return nil, err
		}
		then, err := decodeExpr(fs["then"])
		if err != nil {
			return nil, err
		}
		els, err := decodeExpr(fs["else"])
		if err != nil {
			return nil, err
		}
		return &ast.If{Token: tok, Cond: cond, Then: then, Else: els}, nil

	case "apply":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		fun, err := decodeExpr(fs["fun"])
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(fs["args"])
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("line %d: apply without arguments", n.Line)
		}
		return ast.ApplySpine(tok, fun, args...), nil

	case "negate":
		e, err := decodeExpr(val)
		if err != nil {
			return nil, err
		}
		return &ast.Negate{Token: tok, Expr: e}, nil

	case "not":
		e, err := decodeExpr(val)
		if err != nil {
			return nil, err
		}
		return &ast.Not{Token: tok, Expr: e}, nil

	case "lambda":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		param, err := decodePattern(fs["param"])
		if err != nil {
			return nil, err
		}
		ret, err := decodeType(fs["ret"])
		if err != nil {
			return nil, err
		}
		body, err := decodeExpr(fs["body"])
		if err != nil {
			return nil, err
		}
		return &ast.Lambda{Token: tok, Param: param, RetType: ret, Body: body}, nil

	case "loop":
		return decodeLoop(tok, val)

	case "let_with":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		src, err := decodeExpr(fs["src"])
		if err != nil {
			return nil, err
		}
		srcVar, ok := src.(*ast.Var)
		if !ok {
			return nil, fmt.Errorf("line %d: let_with src must be a var", n.Line)
		}
		indices, err := decodeExprs(fs["indices"])
		if err != nil {
			return nil, err
		}
		value, err := decodeExpr(fs["value"])
		if err != nil {
			return nil, err
		}
		body, err := decodeExpr(fs["body"])
		if err != nil {
			return nil, err
		}
		return &ast.LetWith{Token: tok, Dest: fs["dest"].Value, Src: srcVar,
			Indices: indices, Value: value, Body: body}, nil

	case "index":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		arr, err := decodeExpr(fs["array"])
		if err != nil {
			return nil, err
		}
		indices, err := decodeExprs(fs["indices"])
		if err != nil {
			return nil, err
		}
		t, err := decodeType(fs["type"])
		if err != nil {
			return nil, err
		}
		return &ast.Index{Token: tok, Array: arr, Indices: indices, Typ: t}, nil

	case "update":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		arr, err := decodeExpr(fs["array"])
		if err != nil {
			return nil, err
		}
		indices, err := decodeExprs(fs["indices"])
		if err != nil {
			return nil, err
		}
		value, err := decodeExpr(fs["value"])
		if err != nil {
			return nil, err
		}
		return &ast.Update{Token: tok, Array: arr, Indices: indices, Value: value}, nil

	case "assert":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		cond, err := decodeExpr(fs["cond"])
		if err != nil {
			return nil, err
		}
		e, err := decodeExpr(fs["expr"])
		if err != nil {
			return nil, err
		}
		return &ast.Assert{Token: tok, Cond: cond, Expr: e}, nil

	case "construct":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		payload, err := decodeExprs(fs["payload"])
		if err != nil {
			return nil, err
		}
		t, err := decodeType(fs["type"])
		if err != nil {
			return nil, err
		}
		return &ast.Construct{Token: tok, Name: fs["name"].Value, Payload: payload, Typ: t}, nil

	case "match":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		scrut, err := decodeExpr(fs["scrutinee"])
		if err != nil {
			return nil, err
		}
		caseNodes, err := sequence(fs["cases"])
		if err != nil {
			return nil, err
		}
		cases := make([]*ast.MatchCase, len(caseNodes))
		for i, cn := range caseNodes {
			cf, err := fields(cn)
			if err != nil {
				return nil, err
			}
			pat, err := decodePattern(cf["pat"])
			if err != nil {
				return nil, err
			}
			body, err := decodeExpr(cf["body"])
			if err != nil {
				return nil, err
			}
			cases[i] = &ast.MatchCase{Pat: pat, Body: body}
		}
		return &ast.Match{Token: tok, Scrutinee: scrut, Cases: cases}, nil

	case "attr":
		fs, err := fields(val)
		if err != nil {
			return nil, err
		}
		e, err := decodeExpr(fs["expr"])
		if err != nil {
			return nil, err
		}
		return &ast.Attr{Token: tok, Name: fs["name"].Value, Expr: e}, nil

	default:
		return nil, fmt.Errorf("line %d: unknown expression kind %q", n.Line, kind)
	}
}

func decodeExprs(n *yaml.Node) ([]ast.Expression, error) {
	items, err := sequence(n)
	if err != nil {
		return nil, err
	}
	out := make([]ast.Expression, len(items))
	for i, item := range items {
		e, err := decodeExpr(item)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodeLoop(tok token.Token, val *yaml.Node) (ast.Expression, error) {
	fs, err := fields(val)
	if err != nil {
		return nil, err
	}
	pat, err := decodePattern(fs["pat"])
	if err != nil {
		return nil, err
	}
	init, err := decodeExpr(fs["init"])
	if err != nil {
		return nil, err
	}
	var form ast.LoopForm
	switch {
	case fs["for_count"] != nil:
		ff, err := fields(fs["for_count"])
		if err != nil {
			return nil, err
		}
		vt, err := decodeType(ff["type"])
		if err != nil {
			return nil, err
		}
		bound, err := decodeExpr(ff["bound"])
		if err != nil {
			return nil, err
		}
		form = ast.ForCount{Var: ff["var"].Value, VarType: vt, Bound: bound}
	case fs["for_in"] != nil:
		ff, err := fields(fs["for_in"])
		if err != nil {
			return nil, err
		}
		elem, err := decodePattern(ff["elem"])
		if err != nil {
			return nil, err
		}
		arr, err := decodeExpr(ff["array"])
		if err != nil {
			return nil, err
		}
		form = ast.ForIn{Elem: elem, Array: arr}
	case fs["while"] != nil:
		cond, err := decodeExpr(fs["while"])
		if err != nil {
			return nil, err
		}
		form = ast.While{Cond: cond}
	default:
		return nil, fmt.Errorf("loop without a form")
	}
	body, err := decodeExpr(fs["body"])
	if err != nil {
		return nil, err
	}
	return &ast.Loop{Token: tok, Pat: pat, Init: init, Form: form, Body: body}, nil
}

func decodeLitValue(n *yaml.Node) (interface{}, error) {
	if n == nil {
		return nil, fmt.Errorf("missing literal value")
	}
	var i int64
	if err := n.Decode(&i); err == nil {
		return i, nil
	}
	var f float64
	if err := n.Decode(&f); err == nil {
		return f, nil
	}
	var b bool
	if err := n.Decode(&b); err == nil {
		return b, nil
	}
	var s string
	if err := n.Decode(&s); err == nil {
		return s, nil
	}
	return nil, fmt.Errorf("line %d: cannot decode literal", n.Line)
}

func sortRecordFields(fields []ast.RecordField) {
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0 && types.FieldNameLess(fields[j].Name, fields[j-1].Name); j-- {
			fields[j], fields[j-1] = fields[j-1], fields[j]
		}
	}
}
