package harness

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/matcher/internal/loader"
	"github.com/roach88/matcher/internal/testutil"
)

func leaf(attr, op string, value any) loader.Node {
	return loader.Node{Attr: attr, Op: op, Value: value}
}

func mustParse(t *testing.T, content string) *Scenario {
	t.Helper()
	scenario, err := ParseScenario([]byte(content))
	require.NoError(t, err)
	require.NoError(t, validateScenario(scenario))
	return scenario
}

func TestRun_Minimal(t *testing.T) {
	result, err := Run(t.Context(), mustParse(t, minimalScenario))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Cases, 1)
	assert.Equal(t, []string{"t1"}, result.Cases[0].Evaluated)
	assert.Equal(t, []string{"t1"}, result.Cases[0].Queried)
	assert.Contains(t, result.Cases[0].SQL, "`Thread`.`unread` = 1")
}

func TestRun_ThreadInbox(t *testing.T) {
	scenario, err := LoadScenario("../../testdata/scenarios/thread_inbox.yaml")
	require.NoError(t, err)

	result, err := Run(t.Context(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	byName := make(map[string]CaseResult)
	for _, cr := range result.Cases {
		byName[cr.Name] = cr
	}

	assert.Equal(t, StageQuery, byName["prefix"].Stage)
	assert.Equal(t, StageCompile, byName["mixed_list"].Stage)
	assert.Equal(t, "NON_STRING_ARRAY_ELEMENT", byName["mixed_list"].Error)
	assert.Equal(t, StageBuild, byName["unsupported_comparator"].Stage)
	assert.NotEmpty(t, byName["prefix"].Warnings)
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	scenario := mustParse(t, `
name: wrong
description: "Expectations that do not hold"
schema: |
  class: Thread: attributes: {
    unread: type: "bool"
    subject: {}
  }
class: Thread
records:
  - {id: t1, unread: true}
  - {id: t2, unread: false}
cases:
  - name: wrong_ids
    where: {attr: unread, op: "=", value: true}
    expect: [t2]
  - name: missing_error
    where: {attr: unread, op: "=", value: true}
    error: TYPE_MISMATCH
  - name: unexpected_query_error
    where: {attr: subject, op: startsWith, value: x}
    expect: []
`)

	result, err := Run(t.Context(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "case wrong_ids: expect failed")
	assert.Contains(t, result.Errors[1], "case wrong_ids: agreement failed")
	assert.Contains(t, result.Errors[2], "case missing_error: error failed")
	assert.Contains(t, result.Errors[3], "case unexpected_query_error: sql_expect failed")
}

func TestRun_EvaluateErrorStopsCase(t *testing.T) {
	scenario := mustParse(t, `
name: mismatch
description: "in against a scalar value"
schema: |
  class: Thread: attributes: subject: {}
class: Thread
records:
  - {id: t1, subject: a}
cases:
  - name: scalar_in
    where: {attr: subject, op: in, value: a}
    error: TYPE_MISMATCH
`)

	result, err := Run(t.Context(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, StageEvaluate, result.Cases[0].Stage)
	assert.Nil(t, result.Cases[0].Evaluated)
}

func TestRun_CyclicAllocatorWrapIsReported(t *testing.T) {
	var leaves strings.Builder
	for i := 0; i < 51; i++ {
		fmt.Fprintf(&leaves, "        - {attr: categories, op: contains, value: l%d}\n", i)
	}
	scenario := mustParse(t, `
name: wrap
description: "51 join leaves with the legacy alias space"
schema: |
  class: Thread: attributes: categories: {type: "collection", item: "Label"}
class: Thread
allocator: cyclic
cases:
  - name: fifty_one
    where:
      and:
`+leaves.String()+`    expect: []
`)

	result, err := Run(t.Context(), scenario)
	require.NoError(t, err)

	cr := result.Cases[0]
	require.NotEmpty(t, cr.Warnings)
	assert.Contains(t, cr.Warnings[0], "join alias M0 is shared")
	assert.Equal(t, 2, strings.Count(cr.SQL, "AS `M0`"))
}

func TestRun_SchemaErrors(t *testing.T) {
	scenario := mustParse(t, `
name: bad
description: "Unknown class"
schema: |
  class: Thread: attributes: subject: {}
class: Folder
cases:
  - {name: a, where: {and: []}, expect: []}
`)
	_, err := Run(t.Context(), scenario)
	assert.ErrorContains(t, err, `unknown class "Folder"`)

	scenario.Class = "Thread"
	scenario.Schema = "class: {"
	_, err = Run(t.Context(), scenario)
	assert.ErrorContains(t, err, "failed to load schema")
}

func TestRun_RecordErrors(t *testing.T) {
	scenario := mustParse(t, `
name: bad_records
description: "Record with an invalid date"
schema: |
  class: Thread: attributes: lastDate: type: "date"
class: Thread
records:
  - {id: t1, lastDate: someday}
cases:
  - {name: a, where: {and: []}, expect: [t1]}
`)
	_, err := Run(t.Context(), scenario)
	assert.ErrorContains(t, err, "failed to load records")
}

func TestRun_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Run(t.Context(), mustParse(t, minimalScenario), WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "running scenario")
	assert.Contains(t, out, "running case")
	assert.Contains(t, out, "executing query")
}

func TestRun_ThreadFixtures(t *testing.T) {
	// Fixture threads from testutil satisfy the same scenario shape.
	records := make([]map[string]any, 0, 4)
	for _, thread := range testutil.Threads(testutil.NewDeterministicClock(0)) {
		records = append(records, map[string]any(thread))
	}

	scenario := &Scenario{
		Name:        "fixtures",
		Description: "testutil threads",
		Schema:      testutil.ThreadSchemaCUE,
		Class:       "Thread",
		Records:     records,
		Cases: []Case{
			{Name: "after_second", Expect: []string{"t3", "t4"}, Where: leaf("lastDate", ">", testutil.Date(2*time.Hour))},
		},
	}

	result, err := Run(t.Context(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}
