package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComparator_RoundTrip(t *testing.T) {
	for _, c := range Comparators {
		t.Run(c.String(), func(t *testing.T) {
			parsed, err := ParseComparator(c.String())
			require.NoError(t, err)
			assert.Equal(t, c, parsed)
		})
	}
}

func TestParseComparator_Unknown(t *testing.T) {
	_, err := ParseComparator("!=")
	require.Error(t, err)
	assert.True(t, IsUnsupportedComparator(err))
	assert.Contains(t, err.Error(), "comparator=!=")
}

func TestComparator_RequiresJoin(t *testing.T) {
	for _, c := range Comparators {
		want := c == Contains || c == ContainsAny
		assert.Equal(t, want, c.RequiresJoin(), c.String())
	}
}

func TestComparator_ZeroValueInvalid(t *testing.T) {
	var c Comparator
	assert.False(t, c.IsValid())
	assert.Equal(t, "unknown", c.String())

	_, err := c.MarshalText()
	assert.True(t, IsUnsupportedComparator(err))
}

func TestComparator_TextUnmarshal(t *testing.T) {
	var c Comparator
	require.NoError(t, c.UnmarshalText([]byte("containsAny")))
	assert.Equal(t, ContainsAny, c)

	err := c.UnmarshalText([]byte("matches"))
	assert.True(t, IsUnsupportedComparator(err))
}
