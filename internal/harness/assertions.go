package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when a case check fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Case      string // Case name
	Check     string // Check that failed: expect, sql_expect, sql_error, error
	Expected  string // Human-readable expected outcome
	Actual    string // Human-readable actual outcome
	Predicate string // Rendered predicate for context
	SQL       string // Compiled statement for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "case %s: %s failed\n", e.Case, e.Check)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Predicate != "" {
		fmt.Fprintf(&buf, "  Predicate: %s\n", e.Predicate)
	}
	if e.SQL != "" {
		fmt.Fprintf(&buf, "  SQL: %s\n", e.SQL)
	}

	return buf.String()
}

// CheckCase compares a case outcome with its expectations and returns one
// message per failed check.
func CheckCase(c Case, cr CaseResult) []string {
	var errs []string
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if c.Error != "" {
		add(assertError(c, cr))
		return errs
	}

	if cr.Stage != "" && cr.Stage != StageQuery {
		add(cr.assertion("error", "no error", fmt.Sprintf("%s error %s", cr.Stage, cr.Error)))
		return errs
	}

	add(assertIDs(cr, "expect", c.Expect, cr.Evaluated))

	switch {
	case c.SQLError:
		if cr.Stage != StageQuery {
			add(cr.assertion("sql_error", "query to fail", fmt.Sprintf("ids %v", cr.Queried)))
		}
	case cr.Stage == StageQuery:
		add(cr.assertion("sql_expect", "query to succeed", "query error: "+cr.Error))
	case c.SQLExpect != nil:
		add(assertIDs(cr, "sql_expect", c.SQLExpect, cr.Queried))
	default:
		add(assertIDs(cr, "agreement", c.Expect, cr.Queried))
	}
	return errs
}

func assertError(c Case, cr CaseResult) error {
	if cr.Error == c.Error {
		return nil
	}
	actual := "no error"
	if cr.Error != "" {
		actual = fmt.Sprintf("%s error %s", cr.Stage, cr.Error)
	}
	return cr.assertion("error", c.Error, actual)
}

func assertIDs(cr CaseResult, check string, want, got []string) error {
	if slices.Equal(want, got) {
		return nil
	}
	return cr.assertion(check, fmt.Sprintf("ids %v", want), fmt.Sprintf("ids %v", got))
}

func (cr CaseResult) assertion(check, expected, actual string) error {
	return &AssertionError{
		Case:      cr.Name,
		Check:     check,
		Expected:  expected,
		Actual:    actual,
		Predicate: cr.Predicate,
		SQL:       cr.SQL,
	}
}
