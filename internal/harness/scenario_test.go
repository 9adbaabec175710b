package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes a scenario file into dir and returns its path.
func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const minimalScenario = `
name: minimal
description: "Smallest valid scenario"
schema: |
  class: Thread: attributes: unread: type: "bool"
class: Thread
records:
  - {id: t1, unread: true}
cases:
  - name: unread
    where: {attr: unread, op: "=", value: true}
    expect: [t1]
`

func TestLoadScenario_ThreadInbox(t *testing.T) {
	scenario, err := LoadScenario("../../testdata/scenarios/thread_inbox.yaml")
	require.NoError(t, err)

	assert.Equal(t, "thread_inbox", scenario.Name)
	assert.Equal(t, "Thread", scenario.Class)
	assert.Len(t, scenario.Records, 4)
	require.Len(t, scenario.SchemaFiles, 1)
	assert.Equal(t, filepath.Join("../../testdata/scenarios", "../schema/thread.cue"), scenario.SchemaFiles[0])

	notSpam := scenario.Cases[7]
	assert.Equal(t, "not_spam", notSpam.Name)
	assert.Equal(t, []string{"t1", "t2", "t4"}, notSpam.Expect)
	assert.Equal(t, []string{"t1", "t2"}, notSpam.SQLExpect)
	require.Len(t, notSpam.Where.Not, 1)
	assert.Equal(t, "contains", notSpam.Where.Not[0].Op)
}

func TestLoadScenario_EmptyExpectIsChecked(t *testing.T) {
	scenario, err := LoadScenario("../../testdata/scenarios/legacy_aliases.yaml")
	require.NoError(t, err)

	emptyOr := scenario.Cases[3]
	assert.NotNil(t, emptyOr.Expect)
	assert.Empty(t, emptyOr.Expect)
}

func TestLoadScenario_Minimal(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "minimal.yaml", minimalScenario)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", scenario.Name)
	assert.Empty(t, scenario.SchemaFiles)
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown field",
			content: minimalScenario + "assertions: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			content: "description: x\nschema: x\nclass: Thread\ncases: [{name: a, where: {and: []}, expect: []}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: x\nschema: x\nclass: Thread\ncases: [{name: a, where: {and: []}, expect: []}]\n",
			wantErr: "description is required",
		},
		{
			name:    "missing schema",
			content: "name: x\ndescription: x\nclass: Thread\ncases: [{name: a, where: {and: []}, expect: []}]\n",
			wantErr: "schema or schema_files is required",
		},
		{
			name:    "missing class",
			content: "name: x\ndescription: x\nschema: x\ncases: [{name: a, where: {and: []}, expect: []}]\n",
			wantErr: "class is required",
		},
		{
			name:    "no cases",
			content: "name: x\ndescription: x\nschema: x\nclass: Thread\n",
			wantErr: "cases list is required",
		},
		{
			name:    "unknown allocator",
			content: "name: x\ndescription: x\nschema: x\nclass: Thread\nallocator: random\ncases: [{name: a, where: {and: []}, expect: []}]\n",
			wantErr: `unknown allocator "random"`,
		},
		{
			name:    "missing schema file",
			content: "name: x\ndescription: x\nschema_files: [nope.cue]\nclass: Thread\ncases: [{name: a, where: {and: []}, expect: []}]\n",
			wantErr: "schema file not found",
		},
		{
			name:    "record without id",
			content: "name: x\ndescription: x\nschema: x\nclass: Thread\nrecords: [{unread: true}]\ncases: [{name: a, where: {and: []}, expect: []}]\n",
			wantErr: "records[0]: id is required",
		},
		{
			name:    "case without name",
			content: "name: x\ndescription: x\nschema: x\nclass: Thread\ncases: [{where: {and: []}, expect: []}]\n",
			wantErr: "cases[0]: name is required",
		},
		{
			name:    "duplicate case",
			content: "name: x\ndescription: x\nschema: x\nclass: Thread\ncases: [{name: a, where: {and: []}, expect: []}, {name: a, where: {and: []}, expect: []}]\n",
			wantErr: `cases[1]: duplicate case name "a"`,
		},
		{
			name:    "case without expectation",
			content: "name: x\ndescription: x\nschema: x\nclass: Thread\ncases: [{name: a, where: {and: []}}]\n",
			wantErr: "cases[0]: expect or error is required",
		},
		{
			name:    "error with expect",
			content: "name: x\ndescription: x\nschema: x\nclass: Thread\ncases: [{name: a, where: {and: []}, expect: [], error: X}]\n",
			wantErr: "error cannot be combined",
		},
		{
			name:    "sql_error with sql_expect",
			content: "name: x\ndescription: x\nschema: x\nclass: Thread\ncases: [{name: a, where: {and: []}, expect: [], sql_expect: [], sql_error: true}]\n",
			wantErr: "sql_error cannot be combined with sql_expect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), "s.yaml", tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "schema"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema", "s.cue"), []byte(`class: T: attributes: a: {}`), 0644))
	path := writeScenario(t, t.TempDir(), "s.yaml",
		"name: x\ndescription: x\nschema_files: [schema/s.cue]\nclass: T\ncases: [{name: a, where: {and: []}, expect: []}]\n")

	scenario, err := LoadScenarioWithBasePath(path, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "schema", "s.cue"), scenario.SchemaFiles[0])
}
