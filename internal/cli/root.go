// Package cli implements budgetctl, the operator command line for the
// recurring obligation engine.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"budgetry/internal/recurring"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Sample  bool

	// Clock overrides the configured timezone's wall clock.
	Clock recurring.Clock
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for budgetctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgetctl",
		Short: "Operate the Budgetry recurring obligation engine",
		Long: `Operate the Budgetry recurring obligation engine.

Commands run against the configured database unless --sample is set, in
which case an in-memory store seeded with demo obligations is used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.Sample, "sample", false, "use the in-memory sample data provider")

	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewPayCommand(opts))
	cmd.AddCommand(NewOccurrencesCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
