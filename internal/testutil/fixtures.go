package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/matcher/internal/predicate"
	"github.com/roach88/matcher/internal/schema"
	"github.com/roach88/matcher/internal/store"
)

// ThreadSchemaCUE declares the Thread and Label classes used across tests.
const ThreadSchemaCUE = `
class: Thread: attributes: {
	subject: {}
	unread: type: "bool"
	count: type: "number"
	lastDate: {type: "date", column: "last_date"}
	categories: {type: "collection", item: "Label"}
}

class: Label: attributes: {
	name: {}
}
`

// ThreadSchema compiles ThreadSchemaCUE.
func ThreadSchema(t testing.TB) *schema.Schema {
	t.Helper()
	sch, err := schema.LoadString(ThreadSchemaCUE)
	if err != nil {
		t.Fatalf("ThreadSchema: %v", err)
	}
	return sch
}

// ThreadClass returns the Thread class of ThreadSchema.
func ThreadClass(t testing.TB) *schema.Class {
	t.Helper()
	class, err := ThreadSchema(t).Class("Thread")
	if err != nil {
		t.Fatalf("ThreadClass: %v", err)
	}
	return class
}

// NewStore opens a store in a temp directory, closed on test cleanup.
func NewStore(t testing.TB, sch *schema.Schema, opts ...store.Option) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), sch, opts...)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Threads returns four threads with distinct dates taken from clock.
func Threads(clock *DeterministicClock) []predicate.Fields {
	return []predicate.Fields{
		{"id": "t1", "subject": "Quarterly report", "unread": true, "count": 3,
			"lastDate": clock.Next(), "categories": []any{"inbox", "work"}},
		{"id": "t2", "subject": "O'Brien's lunch", "unread": false, "count": 1,
			"lastDate": clock.Next(), "categories": []any{"inbox"}},
		{"id": "t3", "subject": "Re: quarterly REPORT", "unread": true, "count": 12,
			"lastDate": clock.Next(), "categories": []any{"spam"}},
		{"id": "t4", "subject": "Empty", "unread": false, "count": 0,
			"lastDate": clock.Next(), "categories": nil},
	}
}

// FixedAllocator hands out the same alias every time.
//
// Trees built with it share one alias across all join leaves, which is the
// collision the cyclic allocator produces after it wraps.
type FixedAllocator struct {
	alias predicate.Alias
}

// NewFixedAllocator creates an allocator that always returns alias.
// If alias is empty, Allocate returns "M0".
func NewFixedAllocator(alias predicate.Alias) *FixedAllocator {
	if alias == "" {
		alias = "M0"
	}
	return &FixedAllocator{alias: alias}
}

// Allocate returns the fixed alias.
func (a *FixedAllocator) Allocate() predicate.Alias {
	return a.alias
}

// Date returns Epoch plus d, for readable fixture dates.
func Date(d time.Duration) time.Time {
	return Epoch.Add(d)
}
