package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"budgetry/internal/calendar"
)

// OccurrencesOptions holds flags for the occurrences command.
type OccurrencesOptions struct {
	*RootOptions
	Anchor string
	Period string
	Year   int
	Month  int
}

// NewOccurrencesCommand creates the occurrences command.
func NewOccurrencesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OccurrencesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "occurrences",
		Short: "Print the occurrences of a schedule inside a month",
		Long: `Print the occurrences of a schedule inside a month.

No store is touched; this only evaluates the calendar rules.

Example:
  budgetctl occurrences --anchor 2024-01-31 --period monthly --year 2024 --month 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOccurrences(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Anchor, "anchor", "", "anchor date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Period, "period", string(calendar.Monthly), "billing period (monthly|yearly|weekly|biweekly)")
	cmd.Flags().IntVar(&opts.Year, "year", 0, "window year")
	cmd.Flags().IntVar(&opts.Month, "month", 0, "window month 1-12")
	_ = cmd.MarkFlagRequired("anchor")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("month")

	return cmd
}

type occurrencesOutput struct {
	Anchor      calendar.Date          `json:"anchor"`
	Period      calendar.BillingPeriod `json:"period"`
	Window      calendar.Window        `json:"window"`
	Occurrences []calendar.Date        `json:"occurrences"`
}

func runOccurrences(cmd *cobra.Command, opts *OccurrencesOptions) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	anchor, err := calendar.Parse(opts.Anchor)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --anchor", err)
	}
	period, err := calendar.ParseBillingPeriod(opts.Period)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --period", err)
	}
	if opts.Month < 1 || opts.Month > 12 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --month %d: must be 1-12", opts.Month))
	}

	window := calendar.MonthWindow(opts.Year, time.Month(opts.Month))
	result := occurrencesOutput{
		Anchor:      anchor,
		Period:      period,
		Window:      window,
		Occurrences: calendar.Occurrences(anchor, period, window),
	}
	if result.Occurrences == nil {
		result.Occurrences = []calendar.Date{}
	}

	return out.Success(result, func(w io.Writer) error {
		for _, d := range result.Occurrences {
			if _, err := fmt.Fprintln(w, d); err != nil {
				return err
			}
		}
		return nil
	})
}
