package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ScenarioNotFoundError is returned when a scenario path doesn't exist.
type ScenarioNotFoundError struct {
	Path         string
	ResolvedPath string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("scenario %q does not exist (resolved to: %s)", e.Path, e.ResolvedPath)
}

// DiscoverScenarios expands paths into scenario files. Directories
// contribute their *.yaml and *.yml files in lexical order; files are
// kept as given.
func DiscoverScenarios(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		resolved, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		info, err := os.Stat(resolved)
		if os.IsNotExist(err) {
			return nil, &ScenarioNotFoundError{Path: p, ResolvedPath: resolved}
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}

		var found []string
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(p, pattern))
			if err != nil {
				return nil, fmt.Errorf("scan %s: %w", p, err)
			}
			found = append(found, matches...)
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}

// SuiteResult summarizes a run over many scenario files.
type SuiteResult struct {
	TotalScenarios int               `json:"total_scenarios"`
	TotalCases     int               `json:"total_cases"`
	Passed         int               `json:"passed"`
	Failed         int               `json:"failed"`
	Failures       []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioFailure represents a scenario that failed to load, run or pass.
type ScenarioFailure struct {
	Scenario     string   `json:"scenario,omitempty"`
	ScenarioPath string   `json:"scenario_path"`
	Errors       []string `json:"errors"`
}

// RunSuite loads and runs every scenario file in paths.
//
// For each path:
// 1. Load the scenario
// 2. Run it via Run
// 3. Collect and report results
//
// Load and run failures are recorded per scenario; RunSuite itself does not
// fail on them.
func RunSuite(ctx context.Context, paths []string, opts ...Option) *SuiteResult {
	result := &SuiteResult{}

	for _, path := range paths {
		result.TotalScenarios++

		scenario, err := LoadScenario(path)
		if err != nil {
			result.fail(ScenarioFailure{
				ScenarioPath: path,
				Errors:       []string{fmt.Sprintf("failed to load scenario: %v", err)},
			})
			continue
		}
		result.TotalCases += len(scenario.Cases)

		runResult, err := Run(ctx, scenario, opts...)
		if err != nil {
			result.fail(ScenarioFailure{
				Scenario:     scenario.Name,
				ScenarioPath: path,
				Errors:       []string{fmt.Sprintf("scenario execution failed: %v", err)},
			})
			continue
		}

		if !runResult.Pass {
			result.fail(ScenarioFailure{
				Scenario:     scenario.Name,
				ScenarioPath: path,
				Errors:       runResult.Errors,
			})
			continue
		}

		result.Passed++
	}

	return result
}

func (r *SuiteResult) fail(f ScenarioFailure) {
	r.Failed++
	r.Failures = append(r.Failures, f)
}
