package predicate

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Evaluate reports whether obj satisfies p.
//
// Composites: And is true iff every child is true (vacuously true when
// empty), Or iff any child is true (false when empty, short-circuits), Not
// iff the conjunction of its children is false. The first child error
// aborts evaluation.
func (p *Predicate) Evaluate(obj Object) (bool, error) {
	switch p.kind {
	case KindLeaf:
		return p.evaluateLeaf(obj)
	case KindAnd:
		return evaluateAll(p.children, obj)
	case KindOr:
		for _, c := range p.children {
			ok, err := c.Evaluate(obj)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case KindNot:
		ok, err := evaluateAll(p.children, obj)
		if err != nil {
			return false, err
		}
		return !ok, nil
	default:
		return false, fmt.Errorf("evaluate: unknown predicate kind %s", p.kind)
	}
}

func evaluateAll(children []*Predicate, obj Object) (bool, error) {
	for _, c := range children {
		ok, err := c.Evaluate(obj)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (p *Predicate) evaluateLeaf(obj Object) (bool, error) {
	var modelValue any
	if obj != nil {
		raw, _ := obj.Lookup(p.attr.ModelKey)
		modelValue = Resolve(raw)
	}
	key := p.attr.ModelKey

	switch p.comparator {
	case Equal:
		return equalValues(modelValue, p.value), nil
	case LessThan:
		c, ok := compareValues(modelValue, p.value)
		return ok && c < 0, nil
	case GreaterThan:
		c, ok := compareValues(modelValue, p.value)
		return ok && c > 0, nil
	case LessOrEqual:
		c, ok := compareValues(modelValue, p.value)
		return ok && c <= 0, nil
	case GreaterOrEqual:
		c, ok := compareValues(modelValue, p.value)
		return ok && c >= 0, nil
	case In:
		candidates, ok := Sequence(p.value)
		if !ok {
			return false, NewTypeMismatchError(key, p.comparator, "a sequence of candidates", p.value)
		}
		for _, c := range candidates {
			if equalValues(c, modelValue) {
				return true, nil
			}
		}
		return false, nil
	case Contains:
		items, ok := Sequence(modelValue)
		if !ok {
			return false, NewTypeMismatchError(key, p.comparator, "a collection value", modelValue)
		}
		return containsIdentity(items, p.value), nil
	case ContainsAny:
		items, ok := Sequence(modelValue)
		if !ok {
			return false, NewTypeMismatchError(key, p.comparator, "a collection value", modelValue)
		}
		candidates, ok := Sequence(p.value)
		if !ok {
			return false, NewTypeMismatchError(key, p.comparator, "a sequence of candidates", p.value)
		}
		for _, c := range candidates {
			if containsIdentity(items, c) {
				return true, nil
			}
		}
		return false, nil
	case StartsWith:
		s, ok := modelValue.(string)
		prefix, pok := p.value.(string)
		return ok && pok && strings.HasPrefix(s, prefix), nil
	case Like:
		s, ok := modelValue.(string)
		substr, sok := p.value.(string)
		if !ok || !sok {
			return false, nil
		}
		fold := cases.Fold()
		return strings.Contains(fold.String(s), fold.String(substr)), nil
	default:
		return false, NewUnsupportedComparatorError(key, p.comparator)
	}
}

// containsIdentity reports whether any item's identity equals search's.
// A scalar is its own identity; an object's identity is its id.
func containsIdentity(items []any, search any) bool {
	want := Identity(search)
	for _, item := range items {
		if equalValues(Identity(item), want) {
			return true
		}
	}
	return false
}
