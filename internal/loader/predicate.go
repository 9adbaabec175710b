package loader

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/matcher/internal/predicate"
	"github.com/roach88/matcher/internal/schema"
)

// Document is a parsed predicate document.
type Document struct {
	// Class names the class the predicate is evaluated against.
	Class string `yaml:"class"`

	// Where is the root of the predicate tree.
	Where Node `yaml:"where"`
}

// Node is one node of a predicate tree in document form.
type Node struct {
	And []Node `yaml:"and,omitempty"`
	Or  []Node `yaml:"or,omitempty"`
	Not []Node `yaml:"not,omitempty"`

	Attr  string `yaml:"attr,omitempty"`
	Op    string `yaml:"op,omitempty"`
	Value any    `yaml:"value,omitempty"`
}

// Query is a predicate bound to the class it was built for.
type Query struct {
	Class     *schema.Class
	Predicate *predicate.Predicate
}

// LoadDocument reads and parses a predicate document file.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read predicate file: %w", err)
	}
	return ParseDocument(data)
}

// ParseDocument parses a predicate document. Unknown fields are rejected.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc.Class == "" {
		return nil, fmt.Errorf("invalid predicate document: class is required")
	}
	return &doc, nil
}

// Build resolves the document against sch and constructs its predicate with
// b. Leaves are built in document order, so aliases are allocated depth
// first, left to right.
func (d *Document) Build(sch *schema.Schema, b *predicate.Builder) (*Query, error) {
	class, err := sch.Class(d.Class)
	if err != nil {
		return nil, err
	}
	p, err := d.Where.Build(class, b)
	if err != nil {
		return nil, err
	}
	return &Query{Class: class, Predicate: p}, nil
}

// LoadQuery reads a predicate document and builds it against sch.
func LoadQuery(path string, sch *schema.Schema, b *predicate.Builder) (*Query, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	q, err := doc.Build(sch, b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return q, nil
}

// Build constructs the predicate for the tree rooted at n. Errors name the
// offending node by its path from "where".
func (n *Node) Build(class *schema.Class, b *predicate.Builder) (*predicate.Predicate, error) {
	return n.build(class, b, "where")
}

func (n *Node) build(class *schema.Class, b *predicate.Builder, path string) (*predicate.Predicate, error) {
	if err := n.check(path); err != nil {
		return nil, err
	}

	switch {
	case n.And != nil:
		children, err := buildAll(n.And, class, b, path+".and")
		if err != nil {
			return nil, err
		}
		return predicate.And(children...), nil
	case n.Or != nil:
		children, err := buildAll(n.Or, class, b, path+".or")
		if err != nil {
			return nil, err
		}
		return predicate.Or(children...), nil
	case n.Not != nil:
		children, err := buildAll(n.Not, class, b, path+".not")
		if err != nil {
			return nil, err
		}
		return predicate.Not(children...), nil
	}

	attr, ok := class.Attribute(n.Attr)
	if !ok {
		return nil, fmt.Errorf("%s: unknown attribute %q on class %s", path, n.Attr, class.Name)
	}
	c, err := predicate.ParseComparator(n.Op)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	value := n.Value
	// Collection membership values are item ids or item objects, not values
	// of the collection's own type.
	if !c.RequiresJoin() {
		if value, err = coerce(attr, value); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return b.Leaf(attr, c, value), nil
}

// check reports nodes that are not exactly one of and/or/not/leaf.
func (n *Node) check(path string) error {
	kinds := 0
	for _, set := range []bool{n.And != nil, n.Or != nil, n.Not != nil, n.Attr != "" || n.Op != ""} {
		if set {
			kinds++
		}
	}
	switch {
	case kinds == 0:
		return fmt.Errorf("%s: empty node", path)
	case kinds > 1:
		return fmt.Errorf("%s: node must be exactly one of and, or, not or a leaf", path)
	case (n.Attr != "" || n.Op != "") && (n.Attr == "" || n.Op == ""):
		return fmt.Errorf("%s: leaf requires attr and op", path)
	}
	return nil
}

func buildAll(nodes []Node, class *schema.Class, b *predicate.Builder, path string) ([]*predicate.Predicate, error) {
	out := make([]*predicate.Predicate, 0, len(nodes))
	for i := range nodes {
		p, err := nodes[i].build(class, b, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
