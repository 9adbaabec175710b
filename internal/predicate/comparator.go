package predicate

// Comparator is the closed set of operators a leaf predicate may use.
//
// The zero value is not a valid comparator; evaluating or compiling it fails
// with UnsupportedComparator.
type Comparator uint8

const (
	Equal Comparator = iota + 1
	LessThan
	GreaterThan
	LessOrEqual
	GreaterOrEqual
	In
	Contains
	ContainsAny
	StartsWith
	Like
)

// Comparators lists every valid comparator in declaration order.
var Comparators = []Comparator{
	Equal, LessThan, GreaterThan, LessOrEqual, GreaterOrEqual,
	In, Contains, ContainsAny, StartsWith, Like,
}

var comparatorTokens = map[Comparator]string{
	Equal:          "=",
	LessThan:       "<",
	GreaterThan:    ">",
	LessOrEqual:    "<=",
	GreaterOrEqual: ">=",
	In:             "in",
	Contains:       "contains",
	ContainsAny:    "containsAny",
	StartsWith:     "startsWith",
	Like:           "like",
}

// String returns the wire token, which is also the SQL operator for the
// relational comparators.
func (c Comparator) String() string {
	if tok, ok := comparatorTokens[c]; ok {
		return tok
	}
	return "unknown"
}

// IsValid reports whether c is one of Comparators.
func (c Comparator) IsValid() bool {
	_, ok := comparatorTokens[c]
	return ok
}

// RequiresJoin reports whether the comparator compiles against a join table.
func (c Comparator) RequiresJoin() bool {
	return c == Contains || c == ContainsAny
}

// ParseComparator maps a wire token to a Comparator.
// Unknown tokens fail with UnsupportedComparator.
func ParseComparator(token string) (Comparator, error) {
	for c, tok := range comparatorTokens {
		if tok == token {
			return c, nil
		}
	}
	return 0, &Error{
		Code:       ErrCodeUnsupportedComparator,
		Comparator: token,
		Message:    "unknown comparator",
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Comparator) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, &Error{Code: ErrCodeUnsupportedComparator, Comparator: c.String(), Message: "cannot marshal comparator"}
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Comparator) UnmarshalText(text []byte) error {
	parsed, err := ParseComparator(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
