package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/matcher/internal/loader"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is inline CUE source declaring the classes.
	Schema string `yaml:"schema,omitempty"`

	// SchemaFiles lists CUE files declaring the classes.
	// Relative paths are resolved against the scenario file location.
	SchemaFiles []string `yaml:"schema_files,omitempty"`

	// Class is the class records belong to and cases are evaluated against.
	Class string `yaml:"class"`

	// Allocator selects the join alias allocator: sequential, cyclic or uuid.
	Allocator string `yaml:"allocator,omitempty"`

	// Records are inserted into the store and evaluated in memory.
	Records []map[string]any `yaml:"records"`

	// Cases are the predicates under test.
	Cases []Case `yaml:"cases"`
}

// Case is a single predicate with its expected outcome.
type Case struct {
	// Name identifies the case within the scenario.
	Name string `yaml:"name"`

	// Where is the predicate tree.
	Where loader.Node `yaml:"where"`

	// Expect lists the ids evaluation accepts. Nil skips the check.
	Expect []string `yaml:"expect,omitempty"`

	// SQLExpect lists the ids the query returns when they differ from Expect.
	SQLExpect []string `yaml:"sql_expect,omitempty"`

	// SQLError expects query execution to fail.
	SQLError bool `yaml:"sql_error,omitempty"`

	// Error is the expected error code, e.g. NON_STRING_ARRAY_ELEMENT.
	Error string `yaml:"error,omitempty"`
}

// Allocator names.
const (
	AllocatorSequential = "sequential"
	AllocatorCyclic     = "cyclic"
	AllocatorUUID       = "uuid"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// Relative schema_files are resolved against the directory of path.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving schema file paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	// Resolve schema paths relative to base path BEFORE validation
	for i, schemaPath := range scenario.SchemaFiles {
		if !filepath.IsAbs(schemaPath) && basePath != "" {
			scenario.SchemaFiles[i] = filepath.Join(basePath, schemaPath)
		}
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML without validating schema file paths.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "case:" vs "cases:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Schema == "" && len(s.SchemaFiles) == 0 {
		return fmt.Errorf("schema or schema_files is required")
	}

	if s.Class == "" {
		return fmt.Errorf("class is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	switch s.Allocator {
	case "", AllocatorSequential, AllocatorCyclic, AllocatorUUID:
	default:
		return fmt.Errorf("unknown allocator %q", s.Allocator)
	}

	for _, schemaPath := range s.SchemaFiles {
		if _, err := os.Stat(schemaPath); os.IsNotExist(err) {
			return fmt.Errorf("schema file not found: %s", schemaPath)
		}
	}

	for i, rec := range s.Records {
		if _, ok := rec["id"]; !ok {
			return fmt.Errorf("records[%d]: id is required", i)
		}
	}

	names := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if names[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		names[c.Name] = true

		if c.Error != "" && (c.Expect != nil || c.SQLExpect != nil || c.SQLError) {
			return fmt.Errorf("cases[%d]: error cannot be combined with expect, sql_expect or sql_error", i)
		}
		if c.Error == "" && c.Expect == nil {
			return fmt.Errorf("cases[%d]: expect or error is required", i)
		}
		if c.SQLError && c.SQLExpect != nil {
			return fmt.Errorf("cases[%d]: sql_error cannot be combined with sql_expect", i)
		}
	}

	return nil
}
