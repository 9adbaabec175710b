package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/matcher/internal/schema"
	"github.com/roach88/matcher/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	DBPath  string
	ShowSQL bool
}

// QueryResult is the JSON payload of the query command.
type QueryResult struct {
	Class string   `json:"class"`
	SQL   string   `json:"sql"`
	IDs   []string `json:"ids"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <predicate.yaml>",
		Short: "Select matching object ids from a database",
		Long: `Compile the predicate in a YAML document and run it against a SQLite
database written by the insert command. Classes registered in the database
are used when --schema is not given.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to SQLite database (required)")
	cmd.Flags().BoolVar(&opts.ShowSQL, "sql", false, "print the executed statement")
	cmd.MarkFlagRequired("db")

	return cmd
}

func runQuery(opts *QueryOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	var sch *schema.Schema
	if opts.Schema != "" {
		var err error
		if sch, err = LoadSchema(opts.Schema); err != nil {
			return failWith(formatter, err, ErrCodeLoadFailed)
		}
	}

	st, err := store.Open(opts.DBPath, sch, storeOptions(opts.RootOptions, formatter)...)
	if err != nil {
		return formatter.Fail(ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer st.Close()

	q, err := LoadQuery(path, st.Schema(), newBuilder(opts.RootOptions))
	if err != nil {
		return failWith(formatter, err, ErrCodeInvalidPredicate)
	}

	stmt, err := st.SelectSQL(q.Class.Name, q.Predicate)
	if err != nil {
		return failWith(formatter, err, ErrCodeGeneric)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ids, err := st.Find(ctx, q.Class.Name, q.Predicate)
	if err != nil {
		return failWith(formatter, err, ErrCodeDatabase)
	}

	result := QueryResult{Class: q.Class.Name, SQL: stmt, IDs: ids}
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	if opts.ShowSQL {
		fmt.Fprintf(w, "SQL: %s\n", result.SQL)
	}
	for _, id := range result.IDs {
		fmt.Fprintln(w, id)
	}
	formatter.VerboseLog("%d %s object(s) matched", len(result.IDs), result.Class)
	return nil
}
