package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/matcher/internal/loader"
	"github.com/roach88/matcher/internal/predicate"
	"github.com/roach88/matcher/internal/schema"
	"github.com/roach88/matcher/internal/store"
)

// Harness is the test execution engine for one scenario.
type Harness struct {
	store  *store.Store
	class  *schema.Class
	alloc  string
	logger *slog.Logger
}

// Option configures a scenario run.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger for scenario progress and executed SQL.
// Runs are silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Compile the scenario schema
// 2. Create a fresh in-memory database and insert the records
// 3. For each case, build the predicate, evaluate it against every record,
// compile it and execute the query
// 4. Check each case against its expectations
//
// An error is returned only when the scenario itself cannot run; failed
// checks are reported in the result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	o := &options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(o)
	}

	sch, err := loadSchema(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	class, err := sch.Class(scenario.Class)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:", sch, store.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	objects, err := loader.Objects(scenario.Records, class)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	for _, obj := range objects {
		if err := st.Insert(ctx, class.Name, obj); err != nil {
			return nil, fmt.Errorf("failed to insert records: %w", err)
		}
	}

	h := &Harness{
		store:  st,
		class:  class,
		alloc:  scenario.Allocator,
		logger: o.logger,
	}
	h.logger.Info("running scenario", "name", scenario.Name, "records", len(objects), "cases", len(scenario.Cases))

	result := NewResult()
	for _, c := range scenario.Cases {
		cr := h.runCase(ctx, c, objects)
		result.Cases = append(result.Cases, cr)
		for _, msg := range CheckCase(c, cr) {
			result.AddError(msg)
		}
	}

	h.logger.Info("scenario finished", "name", scenario.Name, "pass", result.Pass, "errors", len(result.Errors))
	return result, nil
}

func loadSchema(scenario *Scenario) (*schema.Schema, error) {
	if scenario.Schema != "" {
		return schema.LoadString(scenario.Schema)
	}
	return schema.LoadFiles(scenario.SchemaFiles...)
}

// newAllocator returns a fresh allocator for one case.
func newAllocator(name string) predicate.AliasAllocator {
	switch name {
	case AllocatorCyclic:
		return predicate.NewCyclicAllocator(predicate.LegacyAliasSpace)
	case AllocatorUUID:
		return predicate.NewUUIDAllocator()
	default:
		return predicate.NewSequentialAllocator()
	}
}

func (h *Harness) runCase(ctx context.Context, c Case, objects []predicate.Fields) CaseResult {
	cr := CaseResult{Name: c.Name}
	h.logger.Debug("running case", "case", c.Name)

	p, err := c.Where.Build(h.class, predicate.NewBuilder(newAllocator(h.alloc)))
	if err != nil {
		cr.fail(StageBuild, err)
		return cr
	}
	cr.Predicate = p.String()
	cr.Warnings = predicate.Validate(p, h.class).Warnings

	cr.Evaluated = []string{}
	for _, obj := range objects {
		ok, err := p.Evaluate(obj)
		if err != nil {
			cr.Evaluated = nil
			cr.fail(StageEvaluate, err)
			return cr
		}
		if ok {
			cr.Evaluated = append(cr.Evaluated, fmt.Sprint(obj["id"]))
		}
	}

	cr.SQL, err = h.store.SelectSQL(h.class.Name, p)
	if err != nil {
		cr.fail(StageCompile, err)
		return cr
	}

	cr.Queried, err = h.store.Find(ctx, h.class.Name, p)
	if err != nil {
		cr.fail(StageQuery, err)
		return cr
	}
	return cr
}

func (cr *CaseResult) fail(stage string, err error) {
	cr.Stage = stage
	cr.Error = errorCode(err)
}

// errorCode returns the code of a predicate error, or the message of any
// other error.
func errorCode(err error) string {
	var perr *predicate.Error
	if errors.As(err, &perr) {
		return string(perr.Code)
	}
	return err.Error()
}
