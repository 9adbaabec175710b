package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/matcher/internal/predicate"
	"github.com/roach88/matcher/internal/schema"
)

var (
	attrSubject    = schema.Attr("subject")
	attrUnread     = schema.Attribute{ModelKey: "unread", JSONKey: "unread", Type: schema.TypeBool}
	attrCount      = schema.Attribute{ModelKey: "count", JSONKey: "count", Type: schema.TypeNumber}
	attrLastDate   = schema.Attribute{ModelKey: "lastDate", JSONKey: "last_date", Type: schema.TypeDate}
	attrCategories = schema.Collection("categories", "Label")
)

func testSchema() *schema.Schema {
	return schema.NewSchema(
		&schema.Class{
			Name:       "Thread",
			Attributes: []schema.Attribute{attrSubject, attrUnread, attrCount, attrLastDate, attrCategories},
		},
		&schema.Class{
			Name:       "Label",
			Attributes: []schema.Attribute{schema.Attr("name")},
		},
	)
}

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, testSchema(), opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// testThreads returns threads covering every attribute type.
func testThreads() []predicate.Fields {
	return []predicate.Fields{
		{
			"id":         "t1",
			"subject":    "Quarterly report",
			"unread":     true,
			"count":      3,
			"lastDate":   testEpoch,
			"categories": []any{predicate.Fields{"id": "inbox"}, predicate.Fields{"id": "work"}},
		},
		{
			"id":         "t2",
			"subject":    "O'Brien's lunch",
			"unread":     false,
			"count":      1,
			"lastDate":   testEpoch.Add(-48 * time.Hour),
			"categories": []any{"inbox"},
		},
		{
			"id":         "t3",
			"subject":    "Re: quarterly REPORT",
			"unread":     true,
			"count":      12,
			"lastDate":   testEpoch.Add(time.Hour),
			"categories": []any{predicate.Fields{"id": "spam"}},
		},
		{
			"id":         "t4",
			"subject":    "Empty",
			"unread":     false,
			"count":      0,
			"lastDate":   testEpoch.Add(-time.Hour),
			"categories": nil,
		},
	}
}

// insertThreads inserts testThreads into s.
func insertThreads(t *testing.T, s *Store) {
	t.Helper()
	for _, thread := range testThreads() {
		if err := s.Insert(t.Context(), "Thread", thread); err != nil {
			t.Fatalf("Insert(%v) failed: %v", thread["id"], err)
		}
	}
}
