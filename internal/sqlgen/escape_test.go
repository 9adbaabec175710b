package sqlgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/matcher/internal/predicate"
)

func TestEscape(t *testing.T) {
	ts := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	tsMillis := ts.Add(250 * time.Millisecond)

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "inbox", "'inbox'"},
		{"embedded quote", "O'Brien", "'O''Brien'"},
		{"only quotes", "''", "''''''"},
		{"true", true, "1"},
		{"false", false, "0"},
		{"time", ts, "1700000000"},
		{"time millis", tsMillis, "1700000000.25"},
		{"time pointer", &ts, "1700000000"},
		{"nil", nil, "NULL"},
		{"int", 42, "42"},
		{"float", 1.5, "1.5"},
		{"string slice", []string{"a", "b'c"}, "('a','b''c')"},
		{"any slice", []any{"a", "b"}, "('a','b')"},
		{"array", [2]string{"x", "y"}, "('x','y')"},
		{"empty slice", []string{}, "()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Escape(tt.value, "col")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEscape_NonStringArrayElement(t *testing.T) {
	_, err := Escape([]any{1, "x"}, "labels")
	require.Error(t, err)
	assert.True(t, predicate.IsNonStringArrayElement(err))

	var pe *predicate.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "labels", pe.Attribute)
	assert.Equal(t, 1, pe.Value)

	_, err = Escape([]int{1}, "labels")
	assert.True(t, predicate.IsNonStringArrayElement(err))
}

func TestQuoteRoundTrip(t *testing.T) {
	for _, s := range []string{"", "plain", "O'Brien", "'leading", "trailing'", "it''s", "a'b'c"} {
		t.Run(s, func(t *testing.T) {
			got, err := Unquote(Quote(s))
			require.NoError(t, err)
			assert.Equal(t, s, got)
		})
	}
}

func TestUnquote_Malformed(t *testing.T) {
	for _, lit := range []string{"", "'", "abc", "'a'b'", "'open"} {
		_, err := Unquote(lit)
		assert.Error(t, err, lit)
	}
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`Thread`", QuoteIdent("Thread"))
	assert.Equal(t, "`we``ird`", QuoteIdent("we`ird"))
}
