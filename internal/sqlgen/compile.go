package sqlgen

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/matcher/internal/predicate"
	"github.com/roach88/matcher/internal/schema"
)

// NotImplementedFragment is the WHERE fragment emitted for startsWith.
// SQLite only accepts RAISE inside triggers, so any statement containing it
// fails when prepared.
const NotImplementedFragment = "RAISE(ABORT, 'startsWith is not implemented')"

// Compiler compiles predicates to SQL fragments.
type Compiler struct {
	namer  schema.JoinTableNamer
	strict bool
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithJoinTableNamer overrides schema.TableNameForJoin.
func WithJoinTableNamer(namer schema.JoinTableNamer) Option {
	return func(c *Compiler) {
		if namer != nil {
			c.namer = namer
		}
	}
}

// WithStrictStartsWith makes startsWith fail at compile time with
// NotImplemented instead of emitting NotImplementedFragment.
func WithStrictStartsWith() Option {
	return func(c *Compiler) {
		c.strict = true
	}
}

// NewCompiler creates a Compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{namer: schema.TableNameForJoin}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCompiler = NewCompiler()

// JoinSQL compiles p's joins with the default compiler.
func JoinSQL(p *predicate.Predicate, class *schema.Class) ([]string, error) {
	return defaultCompiler.JoinSQL(p, class)
}

// WhereSQL compiles p's WHERE fragment with the default compiler.
func WhereSQL(p *predicate.Predicate, class *schema.Class) (string, error) {
	return defaultCompiler.WhereSQL(p, class)
}

// Fragment is a compiled predicate.
type Fragment struct {
	Joins []string `json:"joins"`
	Where string   `json:"where"`
}

// JoinClause joins the JOIN clauses with single spaces; empty when no join
// is required.
func (f *Fragment) JoinClause() string {
	return strings.Join(f.Joins, " ")
}

// Compile produces both the joins and the WHERE fragment for p.
func (c *Compiler) Compile(class *schema.Class, p *predicate.Predicate) (*Fragment, error) {
	if class == nil {
		return nil, fmt.Errorf("cannot compile against nil class")
	}
	if p == nil {
		return nil, fmt.Errorf("cannot compile nil predicate")
	}
	joins, err := c.JoinSQL(p, class)
	if err != nil {
		return nil, fmt.Errorf("compile joins: %w", err)
	}
	where, err := c.WhereSQL(p, class)
	if err != nil {
		return nil, fmt.Errorf("compile where: %w", err)
	}
	return &Fragment{Joins: joins, Where: where}, nil
}

// Select renders a complete statement returning the ids of matching rows:
//
//	SELECT DISTINCT `C`.`id` FROM `C` <joins> WHERE <where> ORDER BY `C`.`id` ASC
//
// DISTINCT collapses the row multiplication introduced by joins.
func (c *Compiler) Select(class *schema.Class, p *predicate.Predicate) (string, error) {
	frag, err := c.Compile(class, p)
	if err != nil {
		return "", err
	}
	table := QuoteIdent(class.Name)

	var sb strings.Builder
	sb.WriteString("SELECT DISTINCT ")
	sb.WriteString(table)
	sb.WriteString(".`id` FROM ")
	sb.WriteString(table)
	for _, j := range frag.Joins {
		sb.WriteByte(' ')
		sb.WriteString(j)
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(frag.Where)
	sb.WriteString(" ORDER BY ")
	sb.WriteString(table)
	sb.WriteString(".`id` ASC")
	return sb.String(), nil
}

// JoinSQL returns the JOIN clauses p requires, in tree order. Leaves other
// than contains/containsAny require none.
func (c *Compiler) JoinSQL(p *predicate.Predicate, class *schema.Class) ([]string, error) {
	switch p.Kind() {
	case predicate.KindLeaf:
		join, err := c.leafJoin(p, class)
		if err != nil || join == "" {
			return nil, err
		}
		return []string{join}, nil
	case predicate.KindAnd, predicate.KindOr, predicate.KindNot:
		var joins []string
		for _, child := range p.Children() {
			js, err := c.JoinSQL(child, class)
			if err != nil {
				return nil, err
			}
			joins = append(joins, js...)
		}
		return joins, nil
	default:
		return nil, fmt.Errorf("unsupported predicate kind: %s", p.Kind())
	}
}

func (c *Compiler) leafJoin(p *predicate.Predicate, class *schema.Class) (string, error) {
	attr, _ := p.Attribute()
	cmp, _ := p.Comparator()
	alias, _ := p.Alias()

	switch cmp {
	case predicate.Contains, predicate.ContainsAny:
		if attr.ItemClass == "" {
			return "", predicate.NewTypeMismatchError(attr.JSONKey, cmp, "a collection attribute with an item class", attr)
		}
		ref := QuoteIdent(string(alias))
		return fmt.Sprintf("INNER JOIN %s AS %s ON %s.`id` = %s.`id`",
			QuoteIdent(c.namer(class.Name, attr.ItemClass)),
			ref,
			ref,
			QuoteIdent(class.Name)), nil
	case predicate.Equal, predicate.LessThan, predicate.GreaterThan,
		predicate.LessOrEqual, predicate.GreaterOrEqual,
		predicate.In, predicate.StartsWith, predicate.Like:
		return "", nil
	default:
		return "", predicate.NewUnsupportedComparatorError(attr.JSONKey, cmp)
	}
}

// WhereSQL returns the boolean expression for p.
//
//	And(a, b) → (a AND b)      empty → (1 = 1)
//	Or(a, b)  → (a OR b)       empty → (1 = 0)
//	Not(a, b) → NOT ((a AND b))
func (c *Compiler) WhereSQL(p *predicate.Predicate, class *schema.Class) (string, error) {
	switch p.Kind() {
	case predicate.KindLeaf:
		return c.leafWhere(p, class)
	case predicate.KindAnd:
		return c.joinChildren(p, class, " AND ", "1 = 1")
	case predicate.KindOr:
		return c.joinChildren(p, class, " OR ", "1 = 0")
	case predicate.KindNot:
		and, err := c.joinChildren(p, class, " AND ", "1 = 1")
		if err != nil {
			return "", err
		}
		return "NOT (" + and + ")", nil
	default:
		return "", fmt.Errorf("unsupported predicate kind: %s", p.Kind())
	}
}

func (c *Compiler) joinChildren(p *predicate.Predicate, class *schema.Class, op, empty string) (string, error) {
	children := p.Children()
	if len(children) == 0 {
		return "(" + empty + ")", nil
	}
	parts := make([]string, len(children))
	for i, child := range children {
		sql, err := c.WhereSQL(child, class)
		if err != nil {
			return "", err
		}
		parts[i] = sql
	}
	return "(" + strings.Join(parts, op) + ")", nil
}

// identities maps each candidate to its Identity, so object candidates
// compile to their ids.
func identities(list any) []any {
	rv := reflect.ValueOf(list)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = predicate.Identity(rv.Index(i).Interface())
	}
	return out
}

func (c *Compiler) leafWhere(p *predicate.Predicate, class *schema.Class) (string, error) {
	attr, _ := p.Attribute()
	cmp, _ := p.Comparator()
	val, _ := p.Value()
	alias, _ := p.Alias()

	if cmp == predicate.StartsWith {
		if c.strict {
			return "", predicate.NewNotImplementedError(attr.JSONKey, cmp)
		}
		return NotImplementedFragment, nil
	}
	if !cmp.IsValid() {
		return "", predicate.NewUnsupportedComparatorError(attr.JSONKey, cmp)
	}

	if (cmp == predicate.In || cmp == predicate.ContainsAny) && !isList(val) {
		return "", predicate.NewTypeMismatchError(attr.JSONKey, cmp, "a list of strings", val)
	}
	switch cmp {
	case predicate.Like:
		val = "%" + fmt.Sprint(val) + "%"
	case predicate.Contains:
		val = predicate.Identity(val)
	case predicate.ContainsAny:
		val = identities(val)
	}

	escaped, err := Escape(val, attr.JSONKey)
	if err != nil {
		return "", err
	}

	switch cmp {
	case predicate.Contains:
		return fmt.Sprintf("%s.`value` = %s", QuoteIdent(string(alias)), escaped), nil
	case predicate.ContainsAny:
		return fmt.Sprintf("%s.`value` IN %s", QuoteIdent(string(alias)), escaped), nil
	case predicate.Equal, predicate.LessThan, predicate.GreaterThan,
		predicate.LessOrEqual, predicate.GreaterOrEqual,
		predicate.In, predicate.Like:
		return fmt.Sprintf("%s.%s %s %s", QuoteIdent(class.Name), QuoteIdent(attr.JSONKey), cmp, escaped), nil
	default:
		return "", predicate.NewUnsupportedComparatorError(attr.JSONKey, cmp)
	}
}
