package predicate

import (
	"fmt"

	"github.com/roach88/matcher/internal/schema"
)

// ValidationResult lists hazards found in a predicate tree.
//
// Warnings never stop evaluation or compilation; they point at trees whose
// in-memory and SQL interpretations may disagree or whose SQL is unsafe to
// execute.
type ValidationResult struct {
	// Consistent is true when no warning was raised.
	Consistent bool

	Warnings []string
}

// Validate walks p and reports:
//   - empty composites
//   - comparators outside the closed set
//   - contains/containsAny on attributes without an item class
//   - join aliases used by more than one join-requiring leaf
//   - startsWith leaves, which have no executable SQL form
//   - nil values in relational comparisons, which never match in SQL
//   - attributes unknown to class (skipped when class is nil)
//
// Validate is a pure function with no side effects.
func Validate(p *Predicate, class *schema.Class) ValidationResult {
	v := &validator{class: class, aliases: make(map[Alias]string)}
	if p == nil {
		v.addWarning("nil predicate")
	} else {
		v.validate(p)
	}
	return ValidationResult{
		Consistent: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

type validator struct {
	class    *schema.Class
	aliases  map[Alias]string
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validate(p *Predicate) {
	switch p.kind {
	case KindLeaf:
		v.validateLeaf(p)
	case KindAnd, KindOr, KindNot:
		if len(p.children) == 0 {
			v.addWarning("empty %s composite", p.kind)
		}
		for _, c := range p.children {
			v.validate(c)
		}
	default:
		v.addWarning("unknown predicate kind %s", p.kind)
	}
}

func (v *validator) validateLeaf(p *Predicate) {
	key := p.attr.ModelKey

	if v.class != nil {
		if _, ok := v.class.Attribute(key); !ok {
			v.addWarning("attribute '%s' is not declared on class %s", key, v.class.Name)
		}
	}

	switch {
	case !p.comparator.IsValid():
		v.addWarning("attribute '%s' uses an unsupported comparator", key)
	case p.comparator == StartsWith:
		v.addWarning("attribute '%s' uses startsWith, which has no SQL form", key)
	case p.value == nil && !p.comparator.RequiresJoin():
		v.addWarning("attribute '%s' compared to nil - SQL comparisons with NULL never match", key)
	case p.comparator.RequiresJoin():
		if p.attr.ItemClass == "" {
			v.addWarning("attribute '%s' uses %s but has no item class", key, p.comparator)
		}
		if prev, dup := v.aliases[p.alias]; dup {
			v.addWarning("join alias %s is shared by '%s' and '%s'", p.alias, prev, key)
		} else {
			v.aliases[p.alias] = key
		}
	}
}
