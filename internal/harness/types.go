package harness

// Stage names where a case stopped with an error.
const (
	StageBuild    = "build"
	StageEvaluate = "evaluate"
	StageCompile  = "compile"
	StageQuery    = "query"
)

// CaseResult is the outcome of a single case.
type CaseResult struct {
	Name string `json:"name"`

	// Predicate is the rendered predicate tree.
	Predicate string `json:"predicate,omitempty"`

	// SQL is the compiled statement.
	SQL string `json:"sql,omitempty"`

	// Evaluated holds the ids accepted by in-memory evaluation.
	Evaluated []string `json:"evaluated"`

	// Queried holds the ids returned by the SQL query.
	Queried []string `json:"queried"`

	// Stage and Error describe the first failure, if any. Error is the
	// error code for predicate errors and the message otherwise.
	Stage string `json:"stage,omitempty"`
	Error string `json:"error,omitempty"`

	// Warnings are the structural hazards reported by predicate.Validate.
	Warnings []string `json:"warnings,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every case check holds.
	Pass bool `json:"pass"`

	// Cases holds per-case outcomes in scenario order.
	Cases []CaseResult `json:"cases"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
