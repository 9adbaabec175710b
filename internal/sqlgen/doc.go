// Package sqlgen compiles predicate trees to SQL text for SQLite.
//
// Each predicate yields a list of JOIN clauses (possibly empty) and a WHERE
// fragment. Identifiers are backtick-quoted; values are inlined as literals:
//   - strings are single-quoted with embedded quotes doubled
//   - booleans become 1 / 0
//   - time.Time becomes Unix epoch seconds
//   - slices become ('a','b',...) and must hold only strings
//   - nil becomes NULL; other values use their default formatting
//
// startsWith has no SQL form. By default its fragment is
// NotImplementedFragment, which SQLite rejects when the statement is
// prepared, while predicate.Evaluate still answers in memory. With
// WithStrictStartsWith the compiler fails eagerly with NotImplemented.
//
// Joins are concatenated by the caller at the top-level compile step
// (Compiler.Compile / Compiler.Select). No join deduplication is done:
// two contains leaves on the same attribute produce two joins.
package sqlgen
