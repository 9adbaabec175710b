package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/matcher/internal/schema"
)

type thread struct {
	ID         string  `json:"id"`
	Unread     bool    `json:"unread"`
	Subject    string
	Categories []label `json:"categories"`
	hidden     string
}

func (t *thread) DisplaySubject() string { return "[" + t.Subject + "]" }

func (t thread) Needs(arg string) string { return arg }

func TestObjectOf_Struct(t *testing.T) {
	obj := ObjectOf(&thread{ID: "t1", Unread: true, Subject: "hi", hidden: "x"})

	tests := []struct {
		key   string
		want  any
		found bool
	}{
		{"id", "t1", true},
		{"unread", true, true},
		{"Subject", "hi", true},
		{"subject", "hi", true},
		{"hidden", nil, false},
		{"nope", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v, ok := obj.Lookup(tt.key)
			assert.Equal(t, tt.found, ok)
			if ok {
				assert.Equal(t, tt.want, v)
			}
		})
	}
}

func TestObjectOf_Method(t *testing.T) {
	obj := ObjectOf(&thread{Subject: "hi"})

	v, ok := obj.Lookup("displaySubject")
	require.True(t, ok)
	assert.Equal(t, "[hi]", Resolve(v))

	_, ok = obj.Lookup("needs")
	assert.False(t, ok, "methods with arguments are not properties")
}

func TestObjectOf_Maps(t *testing.T) {
	v, ok := ObjectOf(map[string]any{"a": 1}).Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = ObjectOf(map[string]string{"a": "x"}).Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = ObjectOf(map[int]string{1: "x"}).Lookup("1")
	assert.False(t, ok)
}

func TestObjectOf_NilPointer(t *testing.T) {
	var th *thread
	_, ok := ObjectOf(th).Lookup("id")
	assert.False(t, ok)
}

func TestObjectOf_PassesThroughObject(t *testing.T) {
	f := Fields{"a": 1}
	assert.Equal(t, f, ObjectOf(f))
}

func TestEvaluate_StructObject(t *testing.T) {
	b := NewBuilder(nil)
	th := &thread{
		Subject:    "Weekly sync",
		Categories: []label{{ID: "inbox"}, {ID: "work"}},
	}

	ok, err := b.Contains(categoriesAttr, "work").Evaluate(ObjectOf(th))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Like(schema.Attr("displaySubject"), "weekly").Evaluate(ObjectOf(th))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResolve(t *testing.T) {
	assert.Nil(t, Resolve(nil))
	assert.Equal(t, 3, Resolve(3))
	assert.Equal(t, "x", Resolve(Thunk(func() any { return "x" })))
	assert.Equal(t, "y", Resolve(func() any { return "y" }))
	assert.Equal(t, 7, Resolve(func() int { return 7 }))

	var nilFn func() int
	assert.NotPanics(t, func() { Resolve(nilFn) }, "nil funcs are returned unchanged")
}

func TestIdentity(t *testing.T) {
	assert.Equal(t, "a", Identity(map[string]any{"id": "a"}))
	assert.Equal(t, "a", Identity(Fields{"id": "a"}))
	assert.Equal(t, "a", Identity(&label{ID: "a"}))
	assert.Equal(t, "plain", Identity("plain"))
	assert.Equal(t, 4, Identity(4))

	noID := map[string]any{"id": ""}
	assert.Equal(t, noID, Identity(noID), "zero id falls back to the item itself")
}

func TestSequence(t *testing.T) {
	s, ok := Sequence([]int{1, 2})
	assert.True(t, ok)
	assert.Equal(t, []any{1, 2}, s)

	s, ok = Sequence([2]string{"a", "b"})
	assert.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, s)

	s, ok = Sequence(nil)
	assert.True(t, ok)
	assert.Empty(t, s)

	_, ok = Sequence("abc")
	assert.False(t, ok)
}
