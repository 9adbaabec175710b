package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/matcher/internal/predicate"
)

// EvalResult is the JSON payload of the eval command.
type EvalResult struct {
	Class     string        `json:"class"`
	Predicate string        `json:"predicate"`
	Objects   []ObjectMatch `json:"objects"`
	Matched   int           `json:"matched"`
}

// ObjectMatch is the outcome of evaluating the predicate on one object.
type ObjectMatch struct {
	ID    string `json:"id"`
	Match bool   `json:"match"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <predicate.yaml> <objects.json>",
		Short: "Evaluate a predicate against JSON objects",
		Long: `Build the predicate in a YAML document and evaluate it in memory against
each object in a JSON file. Exits 1 when any object does not match.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runEval(opts *RootOptions, predicatePath, objectsPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	sch, err := LoadSchema(opts.Schema)
	if err != nil {
		return failWith(formatter, err, ErrCodeLoadFailed)
	}
	q, err := LoadQuery(predicatePath, sch, newBuilder(opts))
	if err != nil {
		return failWith(formatter, err, ErrCodeInvalidPredicate)
	}
	objects, err := LoadObjects(objectsPath, q.Class)
	if err != nil {
		return failWith(formatter, err, ErrCodeInvalidObject)
	}

	result := EvalResult{
		Class:     q.Class.Name,
		Predicate: q.Predicate.String(),
		Objects:   make([]ObjectMatch, 0, len(objects)),
	}
	for i, obj := range objects {
		ok, err := q.Predicate.Evaluate(obj)
		if err != nil {
			return failWith(formatter, fmt.Errorf("object %s: %w", objectLabel(obj, i), err), ErrCodeGeneric)
		}
		result.Objects = append(result.Objects, ObjectMatch{ID: objectLabel(obj, i), Match: ok})
		if ok {
			result.Matched++
		}
	}

	if formatter.IsJSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, m := range result.Objects {
			mark := "✗"
			if m.Match {
				mark = "✓"
			}
			fmt.Fprintf(w, "%s %s\n", mark, m.ID)
		}
		fmt.Fprintf(w, "%d of %d object(s) matched\n", result.Matched, len(result.Objects))
	}

	if result.Matched < len(result.Objects) {
		return NewExitError(ExitFailure, fmt.Sprintf("%d object(s) did not match", len(result.Objects)-result.Matched))
	}
	return nil
}

// objectLabel names an object by its id, or by position when it has none.
func objectLabel(obj predicate.Fields, i int) string {
	if id, ok := obj["id"]; ok && id != nil {
		return fmt.Sprint(predicate.Identity(id))
	}
	return fmt.Sprintf("#%d", i)
}
