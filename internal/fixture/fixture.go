// Package fixture decodes fully typed programs from YAML documents. The
// middle-end has no parser or type checker of its own; tests and the
// command-line driver feed it programs in this form instead.
package fixture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fray-lang/fray/internal/ast"
	"github.com/fray-lang/fray/internal/token"
)

// Load reads and decodes a program document from disk.
func Load(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	prog, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// Decode parses a program document.
//
// A document is a mapping with a decls list; every expression, pattern and
// type is a single-key mapping naming its kind, except that primitive types
// and size names are plain scalars.
func Decode(data []byte) (*ast.Program, error) {
	var doc struct {
		Decls []declDoc `yaml:"decls"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	decls := make([]*ast.ValDecl, len(doc.Decls))
	for i, d := range doc.Decls {
		decl, err := d.build()
		if err != nil {
			return nil, fmt.Errorf("decl %q: %w", d.Name, err)
		}
		decls[i] = decl
	}
	return &ast.Program{Decls: decls}, nil
}

// declDoc holds the raw nodes of one declaration. Ret and Body are value
// nodes because the yaml decoder only captures a raw node into a value
// field; absence is detected with IsZero.
type declDoc struct {
	Name       string      `yaml:"name"`
	SizeParams []string    `yaml:"size_params"`
	Params     []yaml.Node `yaml:"params"`
	Ret        yaml.Node   `yaml:"ret"`
	Body       yaml.Node   `yaml:"body"`
}

func (d declDoc) build() (*ast.ValDecl, error) {
	params := make([]ast.Pattern, len(d.Params))
	for i := range d.Params {
		p, err := decodePattern(&d.Params[i])
		if err != nil {
			return nil, err
		}
		params[i] = p
	}
	if d.Ret.IsZero() {
		return nil, fmt.Errorf("missing ret")
	}
	ret, err := decodeType(&d.Ret)
	if err != nil {
		return nil, err
	}
	if d.Body.IsZero() {
		return nil, fmt.Errorf("missing body")
	}
	body, err := decodeExpr(&d.Body)
	if err != nil {
		return nil, err
	}
	return &ast.ValDecl{
		Token:      token.Synthetic(d.Name),
		Name:       d.Name,
		SizeParams: d.SizeParams,
		Params:     params,
		RetType:    ret,
		Body:       body,
	}, nil
}

// kindOf unwraps a single-key mapping into its kind name and value node.
func kindOf(n *yaml.Node) (string, *yaml.Node, error) {
	if n.Kind == yaml.AliasNode {
		return kindOf(n.Alias)
	}
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return "", nil, fmt.Errorf("line %d: expected a single-key mapping", n.Line)
	}
	return n.Content[0].Value, n.Content[1], nil
}

// fields decodes a mapping node into its key/value pairs.
func fields(n *yaml.Node) (map[string]*yaml.Node, error) {
	if n.Kind == yaml.AliasNode {
		return fields(n.Alias)
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out[n.Content[i].Value] = n.Content[i+1]
	}
	return out, nil
}

func sequence(n *yaml.Node) ([]*yaml.Node, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind == yaml.AliasNode {
		return sequence(n.Alias)
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a sequence", n.Line)
	}
	return n.Content, nil
}
