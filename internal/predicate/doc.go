// Package predicate provides the predicate model shared by in-memory
// evaluation and SQL compilation.
//
// A Predicate is a single comparison over one attribute (a leaf) or an
// AND/OR/NOT composition of predicates. The same tree can be:
//
//	[Predicate] → Evaluate(object)      → bool
//	            → sqlgen.JoinSQL(class) → []string
//	            → sqlgen.WhereSQL(class) → string
//
// # Variants
//
// Predicate is a single tagged type. Kind selects the variant:
//   - KindLeaf: attribute, Comparator, value and join Alias
//   - KindAnd: all children true
//   - KindOr: at least one child true
//   - KindNot: NOT (c1 AND c2 AND ...), never a per-child negation
//
// Consumers dispatch with a switch over Kind and over Comparator; both
// switches end in a default arm that fails, so a new comparator can not
// silently skip one interpretation.
//
// # Join aliases
//
// contains and containsAny compile to an INNER JOIN against the attribute's
// join table. Each leaf draws its alias from the AliasAllocator passed at
// construction. Use one Builder (and so one allocator) per compiled query.
// CyclicAllocator(LegacyAliasSpace) reproduces the old 50-slot wrap; the
// default SequentialAllocator never reuses an alias.
//
// # Objects
//
// Evaluate reads values through the Object interface. Fields wraps a map;
// ObjectOf adapts structs by json tag or field name. Values that are Thunks
// (or any func() T) are computed properties and are called on every
// evaluation.
//
// Example:
//
//	b := predicate.NewBuilder(nil)
//	unread := b.Equal(schema.Attr("unread"), true)
//	labelled := b.Contains(schema.Collection("categories", "Label"), "inbox")
//
//	ok, err := predicate.And(unread, labelled).Evaluate(predicate.Fields{
//		"unread":     true,
//		"categories": []any{map[string]any{"id": "inbox"}},
//	})
//	// ok == true
package predicate
