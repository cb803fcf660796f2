package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	apperrors "budgetry/internal/errors"
	"budgetry/internal/models"
	"budgetry/internal/pagination"
	"budgetry/internal/recurring"
	"budgetry/internal/services"
	"budgetry/internal/uuid"
)

// PayOptions holds flags for the pay command.
type PayOptions struct {
	*RootOptions
	Owner      string
	Obligation string
	Count      int
}

// NewPayCommand creates the pay command.
func NewPayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Record upcoming occurrences of an obligation as paid",
		Long: `Record upcoming occurrences of an obligation as paid.

The next --count occurrences starting at the obligation's next due date are
written to the ledger and the due date moves past them.

Example:
  budgetctl --sample pay --obligation Streaming --count 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPay(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", "", "owner id (defaults to the demo owner with --sample)")
	cmd.Flags().StringVar(&opts.Obligation, "obligation", "", "obligation id or name")
	cmd.Flags().IntVar(&opts.Count, "count", 1, "number of occurrences to pay")
	_ = cmd.MarkFlagRequired("obligation")

	return cmd
}

func runPay(cmd *cobra.Command, opts *PayOptions) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	s, err := openStack(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.close()

	owner, err := s.owner(opts.Owner)
	if err != nil {
		return err
	}

	ob, err := resolveObligation(cmd.Context(), s.app.Obligations, owner, opts.Obligation)
	if err != nil {
		return out.Fail(err)
	}

	out.VerboseLog("paying %d occurrence(s) of %s (%s)", opts.Count, ob.Name, ob.ID)
	result, err := s.app.Obligations.PayFutureOccurrences(cmd.Context(), owner, ob.ID, opts.Count)
	if err != nil {
		return out.Fail(err)
	}

	return out.Success(result, func(w io.Writer) error { return writePayResult(w, result) })
}

// resolveObligation looks ref up as an id, or else as a case-insensitive name.
func resolveObligation(ctx context.Context, svc services.ObligationServicer, owner, ref string) (*models.Obligation, error) {
	if uuid.IsValid(ref) {
		return svc.GetObligation(ctx, owner, ref)
	}

	page := pagination.PageRequest{Page: 1, PageSize: pagination.MaxPageSize}
	for {
		list, err := svc.ListObligations(ctx, owner, recurring.ObligationFilter{}, page)
		if err != nil {
			return nil, err
		}
		for i := range list.Data {
			if strings.EqualFold(list.Data[i].Name, ref) {
				return &list.Data[i], nil
			}
		}
		if page.Page >= list.TotalPages {
			return nil, apperrors.WithMessage(apperrors.ErrObligationNotFound,
				fmt.Sprintf("No obligation named %q", ref))
		}
		page.Page++
	}
}

func writePayResult(w io.Writer, result *recurring.PayResult) error {
	for _, e := range result.Entries {
		if _, err := fmt.Fprintf(w, "%s  %-24s %s\n", e.Date, e.Name, e.Amount.StringFixed(2)); err != nil {
			return err
		}
	}
	for _, d := range result.AlreadyRecorded {
		if _, err := fmt.Fprintf(w, "%s  already recorded\n", d); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "next due %s\n", result.NewNextDueDate)
	return err
}
