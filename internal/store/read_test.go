package store

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/matcher/internal/predicate"
)

// agreementCases are predicates whose SQL form selects exactly the objects
// Evaluate accepts. Negated or OR'd collection tests are excluded: the
// INNER JOIN drops owners without items before WHERE runs.
func agreementCases(b *predicate.Builder) []struct {
	name string
	p    *predicate.Predicate
	want []string
} {
	return []struct {
		name string
		p    *predicate.Predicate
		want []string
	}{
		{"equal bool", b.Equal(attrUnread, true), []string{"t1", "t3"}},
		{"equal quoted string", b.Equal(attrSubject, "O'Brien's lunch"), []string{"t2"}},
		{"equal float against integer", b.Equal(attrCount, 3.0), []string{"t1"}},
		{"less than", b.LessThan(attrCount, 3), []string{"t2", "t4"}},
		{"greater than", b.GreaterThan(attrCount, 2), []string{"t1", "t3"}},
		{"less or equal", b.LessOrEqual(attrCount, 3), []string{"t1", "t2", "t4"}},
		{"greater or equal date", b.GreaterOrEqual(attrLastDate, testEpoch), []string{"t1", "t3"}},
		{"less than date", b.LessThan(attrLastDate, testEpoch.Add(-time.Hour)), []string{"t2"}},
		{"in", b.In(attrSubject, []string{"Empty", "Quarterly report"}), []string{"t1", "t4"}},
		{"contains item", b.Contains(attrCategories, predicate.Fields{"id": "inbox"}), []string{"t1", "t2"}},
		{"contains id", b.Contains(attrCategories, "spam"), []string{"t3"}},
		{"contains any", b.ContainsAny(attrCategories, []string{"work", "spam"}), []string{"t1", "t3"}},
		{"like is case insensitive", b.Like(attrSubject, "quarterly report"), []string{"t1", "t3"}},
		{"like quote", b.Like(attrSubject, "'"), []string{"t2"}},
		{"like on bool", b.Like(attrUnread, "tru"), []string{}},
		{"like on number", b.Like(attrCount, "three"), []string{}},
		{"greater or equal date below millisecond", b.GreaterOrEqual(attrLastDate, testEpoch.Add(500*time.Microsecond)), []string{"t1", "t3"}},
		{"and with join", predicate.And(b.Equal(attrUnread, true), b.Contains(attrCategories, "inbox")), []string{"t1"}},
		{"and of two joins", predicate.And(b.Contains(attrCategories, "inbox"), b.Contains(attrCategories, "work")), []string{"t1"}},
		{"or of scalars", predicate.Or(b.Equal(attrCount, 0), b.Equal(attrSubject, "O'Brien's lunch")), []string{"t2", "t4"}},
		{"not", predicate.Not(b.Equal(attrUnread, true)), []string{"t2", "t4"}},
		{"not of and", predicate.Not(b.Equal(attrUnread, true), b.GreaterThan(attrCount, 5)), []string{"t1", "t2", "t4"}},
		{"empty and", predicate.And(), []string{"t1", "t2", "t3", "t4"}},
		{"empty or", predicate.Or(), []string{}},
	}
}

func evaluateIDs(t *testing.T, p *predicate.Predicate, objects []predicate.Fields) []string {
	t.Helper()
	ids := []string{}
	for _, obj := range objects {
		ok, err := p.Evaluate(obj)
		require.NoError(t, err)
		if ok {
			ids = append(ids, obj["id"].(string))
		}
	}
	return ids
}

func TestFind_AgreesWithEvaluate(t *testing.T) {
	s := createTestStore(t)
	insertThreads(t, s)

	for _, tt := range agreementCases(predicate.NewBuilder(nil)) {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := s.Find(t.Context(), "Thread", tt.p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids, "sql")
			assert.Equal(t, tt.want, evaluateIDs(t, tt.p, testThreads()), "evaluate")
		})
	}
}

func TestFind_CyclicAliasesStillDistinct(t *testing.T) {
	s := createTestStore(t)
	insertThreads(t, s)

	b := predicate.NewBuilder(predicate.NewCyclicAllocator(predicate.LegacyAliasSpace))
	p := predicate.And(b.Contains(attrCategories, "inbox"), b.Contains(attrCategories, "work"))

	ids, err := s.Find(t.Context(), "Thread", p)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, ids)
}

func TestFind_StartsWithFailsOnExecution(t *testing.T) {
	s := createTestStore(t)
	insertThreads(t, s)

	_, err := s.Find(t.Context(), "Thread", predicate.NewBuilder(nil).StartsWith(attrSubject, "Re"))
	assert.Error(t, err)
}

func TestFind_StrictStartsWith(t *testing.T) {
	s := createTestStore(t, WithStrictStartsWith())

	_, err := s.Find(t.Context(), "Thread", predicate.NewBuilder(nil).StartsWith(attrSubject, "Re"))
	require.Error(t, err)
	assert.True(t, predicate.IsNotImplemented(err))
}

func TestFind_UnknownClass(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Find(t.Context(), "Folder", predicate.And())
	assert.ErrorContains(t, err, `unknown class "Folder"`)
}

func TestFind_LogsQuery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := createTestStore(t, WithLogger(logger))

	_, err := s.Find(t.Context(), "Thread", predicate.NewBuilder(nil).Equal(attrUnread, true))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "executing query")
	assert.Contains(t, buf.String(), "`Thread`.`unread` = 1")
}

func TestLoad_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	insertThreads(t, s)

	objects, err := s.Load(t.Context(), "Thread")
	require.NoError(t, err)
	require.Len(t, objects, 4)

	t2 := objects[1]
	assert.Equal(t, "t2", t2["id"])
	assert.Equal(t, "O'Brien's lunch", t2["subject"])
	assert.Equal(t, false, t2["unread"])
	assert.Equal(t, int64(1), t2["count"])
	assert.True(t, testEpoch.Add(-48*time.Hour).Equal(t2["lastDate"].(time.Time)))
	assert.Equal(t, []any{"inbox"}, t2["categories"])
}

func TestLoad_AgreesWithEvaluate(t *testing.T) {
	s := createTestStore(t)
	insertThreads(t, s)

	objects, err := s.Load(t.Context(), "Thread")
	require.NoError(t, err)

	for _, tt := range agreementCases(predicate.NewBuilder(nil)) {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluateIDs(t, tt.p, objects))
		})
	}
}

func TestCount(t *testing.T) {
	s := createTestStore(t)

	n, err := s.Count(t.Context(), "Thread")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	insertThreads(t, s)
	n, err = s.Count(t.Context(), "Thread")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
