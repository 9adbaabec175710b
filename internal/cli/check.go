package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/matcher/internal/harness"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <scenario.yaml|dir>...",
		Short: "Check that evaluation and SQL agree on scenarios",
		Long: `Run scenario files: each case builds a predicate, evaluates it against the
scenario records and runs its compiled SQL over the same records in an
in-memory database. Directories are searched for *.yaml files.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args, cmd)
		},
	}
}

func runCheck(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	paths, err := harness.DiscoverScenarios(args)
	if err != nil {
		var nf *harness.ScenarioNotFoundError
		if errors.As(err, &nf) {
			return formatter.Fail(ErrCodeNotFound, err.Error(), nil)
		}
		return formatter.Fail(ErrCodeLoadFailed, err.Error(), nil)
	}
	formatter.VerboseLog("Found %d scenario file(s)", len(paths))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result := harness.RunSuite(ctx, paths, harness.WithLogger(formatter.Logger()))

	if formatter.IsJSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, f := range result.Failures {
			name := f.Scenario
			if name == "" {
				name = f.ScenarioPath
			}
			fmt.Fprintf(w, "✗ %s (%s)\n", name, f.ScenarioPath)
			for _, e := range f.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		fmt.Fprintf(w, "%d of %d scenario(s) passed, %d case(s)\n", result.Passed, result.TotalScenarios, result.TotalCases)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}
