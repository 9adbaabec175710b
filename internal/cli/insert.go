package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/matcher/internal/store"
)

// InsertOptions holds flags for the insert command.
type InsertOptions struct {
	*RootOptions
	DBPath string
	Class  string
}

// InsertResult is the JSON payload of the insert command.
type InsertResult struct {
	Class    string `json:"class"`
	Inserted int    `json:"inserted"`
	Total    int    `json:"total"`
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InsertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "insert <objects.json>",
		Short: "Write JSON objects into a database",
		Long: `Create the tables for the --schema classes in a SQLite database and
insert or replace the objects of --class read from a JSON file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Class, "class", "", "class of the objects (required)")
	cmd.MarkFlagRequired("db")
	cmd.MarkFlagRequired("class")

	return cmd
}

func runInsert(opts *InsertOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	sch, err := LoadSchema(opts.Schema)
	if err != nil {
		return failWith(formatter, err, ErrCodeLoadFailed)
	}
	class, err := sch.Class(opts.Class)
	if err != nil {
		return formatter.Fail(ErrCodeNotFound, err.Error(), nil)
	}
	objects, err := LoadObjects(path, class)
	if err != nil {
		return failWith(formatter, err, ErrCodeInvalidObject)
	}

	st, err := store.Open(opts.DBPath, sch, storeOptions(opts.RootOptions, formatter)...)
	if err != nil {
		return formatter.Fail(ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	for i, obj := range objects {
		if err := st.Insert(ctx, class.Name, obj); err != nil {
			return formatter.Fail(ErrCodeWriteError, fmt.Sprintf("object %s: %v", objectLabel(obj, i), err), nil)
		}
	}
	total, err := st.Count(ctx, class.Name)
	if err != nil {
		return formatter.Fail(ErrCodeDatabase, err.Error(), nil)
	}

	result := InsertResult{Class: class.Name, Inserted: len(objects), Total: total}
	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Inserted %d %s object(s) (%d total)\n", result.Inserted, result.Class, result.Total)
	return nil
}
