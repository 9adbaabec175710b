package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	Schema    string // CUE schema directory
	Allocator string // "sequential" | "cyclic" | "uuid"
	Strict    bool   // fail compilation on startsWith
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidAllocators defines the allowed join alias allocators.
var ValidAllocators = []string{"sequential", "cyclic", "uuid"}

// NewRootCommand creates the root command for the matcher CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "matcher",
		Short: "matcher - predicates evaluated in memory and compiled to SQL",
		Long: `Build predicates over model attributes, evaluate them against objects,
and compile them into SQL JOIN and WHERE fragments that select the same objects.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if !contains(ValidAllocators, opts.Allocator) {
				return fmt.Errorf("invalid allocator %q: must be one of %v", opts.Allocator, ValidAllocators)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Schema, "schema", "", "CUE schema directory")
	cmd.PersistentFlags().StringVar(&opts.Allocator, "allocator", "sequential", "join alias allocator (sequential|cyclic|uuid)")
	cmd.PersistentFlags().BoolVar(&opts.Strict, "strict", false, "reject startsWith at compile time")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewInsertCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
