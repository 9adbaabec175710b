package predicate

import (
	"fmt"
	"strings"

	"github.com/roach88/matcher/internal/schema"
)

// Kind tags the variant a Predicate holds.
type Kind uint8

const (
	KindLeaf Kind = iota
	KindAnd
	KindOr
	KindNot
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindNot:
		return "not"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Predicate is a leaf comparison or a boolean composition of predicates.
//
// Leaves bind one attribute, one comparator and one value. Composites carry
// an ordered list of children and no attribute or value. Not negates the
// conjunction of its children as a whole: Not(a, b) is NOT (a AND b).
//
// A Predicate is immutable after construction and safe to share.
type Predicate struct {
	kind     Kind
	children []*Predicate

	// leaf only
	attr       schema.Attribute
	comparator Comparator
	value      any
	alias      Alias
}

// New creates a leaf predicate. One alias is drawn from alloc for every
// leaf; only contains/containsAny use it when compiling SQL.
func New(alloc AliasAllocator, attr schema.Attribute, c Comparator, value any) *Predicate {
	if alloc == nil {
		panic("predicate: nil AliasAllocator")
	}
	return &Predicate{
		kind:       KindLeaf,
		attr:       attr,
		comparator: c,
		value:      value,
		alias:      alloc.Allocate(),
	}
}

// And is true iff every child is true.
func And(children ...*Predicate) *Predicate {
	return composite(KindAnd, children)
}

// Or is true iff at least one child is true.
func Or(children ...*Predicate) *Predicate {
	return composite(KindOr, children)
}

// Not is true iff the conjunction of its children is false.
func Not(children ...*Predicate) *Predicate {
	return composite(KindNot, children)
}

// composite copies children, dropping nil entries.
func composite(kind Kind, children []*Predicate) *Predicate {
	cs := make([]*Predicate, 0, len(children))
	for _, c := range children {
		if c != nil {
			cs = append(cs, c)
		}
	}
	return &Predicate{kind: kind, children: cs}
}

// Kind returns the variant tag.
func (p *Predicate) Kind() Kind { return p.kind }

// IsLeaf reports whether p is a single comparison.
func (p *Predicate) IsLeaf() bool { return p.kind == KindLeaf }

// Children returns a copy of the child list; nil for leaves.
func (p *Predicate) Children() []*Predicate {
	if len(p.children) == 0 {
		return nil
	}
	cs := make([]*Predicate, len(p.children))
	copy(cs, p.children)
	return cs
}

// Attribute returns the bound attribute. ok is false for composites.
func (p *Predicate) Attribute() (attr schema.Attribute, ok bool) {
	if p.kind != KindLeaf {
		return schema.Attribute{}, false
	}
	return p.attr, true
}

// Value returns the bound value. ok is false for composites.
func (p *Predicate) Value() (value any, ok bool) {
	if p.kind != KindLeaf {
		return nil, false
	}
	return p.value, true
}

// Comparator returns the leaf comparator. ok is false for composites.
func (p *Predicate) Comparator() (c Comparator, ok bool) {
	if p.kind != KindLeaf {
		return 0, false
	}
	return p.comparator, true
}

// Alias returns the join alias assigned at construction. ok is false for
// composites.
func (p *Predicate) Alias() (alias Alias, ok bool) {
	if p.kind != KindLeaf {
		return "", false
	}
	return p.alias, true
}

// Walk visits p and its descendants depth-first in child order.
// Returning false from fn skips the node's children.
func (p *Predicate) Walk(fn func(*Predicate) bool) {
	if !fn(p) {
		return
	}
	for _, c := range p.children {
		c.Walk(fn)
	}
}

// Leaves returns every leaf under p in depth-first order.
func (p *Predicate) Leaves() []*Predicate {
	var out []*Predicate
	p.Walk(func(n *Predicate) bool {
		if n.kind == KindLeaf {
			out = append(out, n)
		}
		return true
	})
	return out
}

// String renders a debugging form, e.g. `(unread = true AND categories contains "l1")`.
func (p *Predicate) String() string {
	switch p.kind {
	case KindLeaf:
		return fmt.Sprintf("%s %s %#v", p.attr.ModelKey, p.comparator, p.value)
	case KindAnd, KindOr, KindNot:
		op := " AND "
		if p.kind == KindOr {
			op = " OR "
		}
		parts := make([]string, len(p.children))
		for i, c := range p.children {
			parts[i] = c.String()
		}
		s := "(" + strings.Join(parts, op) + ")"
		if p.kind == KindNot {
			return "NOT " + s
		}
		return s
	default:
		return p.kind.String()
	}
}

// Builder constructs leaves sharing one AliasAllocator, typically one
// Builder per compiled query.
type Builder struct {
	alloc AliasAllocator
}

// NewBuilder creates a Builder. A nil alloc means a fresh SequentialAllocator.
func NewBuilder(alloc AliasAllocator) *Builder {
	if alloc == nil {
		alloc = NewSequentialAllocator()
	}
	return &Builder{alloc: alloc}
}

// Allocator returns the builder's allocator.
func (b *Builder) Allocator() AliasAllocator { return b.alloc }

// Leaf creates a leaf with an arbitrary comparator.
func (b *Builder) Leaf(attr schema.Attribute, c Comparator, value any) *Predicate {
	return New(b.alloc, attr, c, value)
}

func (b *Builder) Equal(attr schema.Attribute, value any) *Predicate {
	return b.Leaf(attr, Equal, value)
}

func (b *Builder) LessThan(attr schema.Attribute, value any) *Predicate {
	return b.Leaf(attr, LessThan, value)
}

func (b *Builder) GreaterThan(attr schema.Attribute, value any) *Predicate {
	return b.Leaf(attr, GreaterThan, value)
}

func (b *Builder) LessOrEqual(attr schema.Attribute, value any) *Predicate {
	return b.Leaf(attr, LessOrEqual, value)
}

func (b *Builder) GreaterOrEqual(attr schema.Attribute, value any) *Predicate {
	return b.Leaf(attr, GreaterOrEqual, value)
}

// In matches when the object's value is one of values.
func (b *Builder) In(attr schema.Attribute, values any) *Predicate {
	return b.Leaf(attr, In, values)
}

// Contains matches when the object's collection holds an item whose
// identity equals value's identity.
func (b *Builder) Contains(attr schema.Attribute, value any) *Predicate {
	return b.Leaf(attr, Contains, value)
}

// ContainsAny matches when Contains holds for at least one candidate.
func (b *Builder) ContainsAny(attr schema.Attribute, candidates any) *Predicate {
	return b.Leaf(attr, ContainsAny, candidates)
}

// StartsWith matches string prefixes in memory only; see sqlgen for its SQL form.
func (b *Builder) StartsWith(attr schema.Attribute, prefix string) *Predicate {
	return b.Leaf(attr, StartsWith, prefix)
}

// Like matches a case-insensitive substring.
func (b *Builder) Like(attr schema.Attribute, substr string) *Predicate {
	return b.Leaf(attr, Like, substr)
}
