package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/matcher/internal/predicate"
	"github.com/roach88/matcher/internal/sqlgen"
)

// CompileResult is the JSON payload of the compile command.
type CompileResult struct {
	Class       string   `json:"class"`
	Predicate   string   `json:"predicate"`
	Fingerprint string   `json:"fingerprint"`
	Joins       []string `json:"joins"`
	Where       string   `json:"where"`
	SQL         string   `json:"sql"`
	Warnings    []string `json:"warnings,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <predicate.yaml>",
		Short: "Compile a predicate document to SQL",
		Long: `Build the predicate in a YAML document against the --schema classes and
print its JOIN clauses, WHERE fragment and the full SELECT statement.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(rootOpts, args[0], cmd)
		},
	}
}

func runCompile(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	sch, err := LoadSchema(opts.Schema)
	if err != nil {
		return failWith(formatter, err, ErrCodeLoadFailed)
	}
	formatter.VerboseLog("Loaded %d class(es) from %s", len(sch.Classes), opts.Schema)

	q, err := LoadQuery(path, sch, newBuilder(opts))
	if err != nil {
		return failWith(formatter, err, ErrCodeInvalidPredicate)
	}

	compiler := sqlgen.NewCompiler(compilerOptions(opts)...)
	frag, err := compiler.Compile(q.Class, q.Predicate)
	if err != nil {
		return failWith(formatter, err, ErrCodeGeneric)
	}
	stmt, err := compiler.Select(q.Class, q.Predicate)
	if err != nil {
		return failWith(formatter, err, ErrCodeGeneric)
	}

	fingerprint, err := predicate.Fingerprint(q.Predicate)
	if err != nil {
		return failWith(formatter, err, ErrCodeGeneric)
	}

	result := CompileResult{
		Class:       q.Class.Name,
		Predicate:   q.Predicate.String(),
		Fingerprint: fingerprint,
		Joins:       frag.Joins,
		Where:       frag.Where,
		SQL:         stmt,
		Warnings:    predicate.Validate(q.Predicate, q.Class).Warnings,
	}
	if result.Joins == nil {
		result.Joins = []string{}
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Compiled predicate for %s\n", result.Class)
	fmt.Fprintf(w, "Predicate: %s\n", result.Predicate)
	fmt.Fprintf(w, "Fingerprint: %s\n", result.Fingerprint)
	if len(result.Joins) > 0 {
		fmt.Fprintln(w, "Joins:")
		for _, j := range result.Joins {
			fmt.Fprintf(w, "  %s\n", j)
		}
	}
	fmt.Fprintf(w, "Where: %s\n", result.Where)
	fmt.Fprintf(w, "SQL: %s\n", result.SQL)
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", warning)
	}
	return nil
}
