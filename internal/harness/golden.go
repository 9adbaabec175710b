package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot captures the compiled SQL and outcomes of a scenario run.
type Snapshot struct {
	ScenarioName string         `json:"scenario_name"`
	Cases        []CaseSnapshot `json:"cases"`
}

// CaseSnapshot is the stable part of a CaseResult. Query errors are
// reduced to a flag because their text depends on the SQLite version.
type CaseSnapshot struct {
	Name        string   `json:"name"`
	Predicate   string   `json:"predicate,omitempty"`
	SQL         string   `json:"sql,omitempty"`
	Evaluated   []string `json:"evaluated"`
	Queried     []string `json:"queried"`
	QueryFailed bool     `json:"query_failed,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// NewSnapshot builds the snapshot of a result.
func NewSnapshot(scenarioName string, result *Result) Snapshot {
	s := Snapshot{ScenarioName: scenarioName, Cases: make([]CaseSnapshot, len(result.Cases))}
	for i, cr := range result.Cases {
		cs := CaseSnapshot{
			Name:      cr.Name,
			Predicate: cr.Predicate,
			SQL:       cr.SQL,
			Evaluated: cr.Evaluated,
			Queried:   cr.Queried,
		}
		if cr.Stage == StageQuery {
			cs.QueryFailed = true
		} else {
			cs.Error = cr.Error
		}
		s.Cases[i] = cs
	}
	return s
}

// Marshal renders the snapshot as indented JSON without HTML escaping,
// so SQL comparison operators stay readable.
func (s Snapshot) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenarioName, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
