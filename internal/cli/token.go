package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"budgetry/internal/config"
	"budgetry/internal/middleware"
	"budgetry/internal/store"
	"budgetry/internal/uuid"
)

// TokenOptions holds flags for the token command.
type TokenOptions struct {
	*RootOptions
	Owner string
	TTL   time.Duration
}

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local testing",
		Long: `Mint an access token for local testing.

The token is signed with JWT_SECRET and accepted by the API's auth
middleware. Defaults to the demo owner and JWT_EXPIRES_IN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", store.SampleOwnerID, "owner id")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 0, "token lifetime (default JWT_EXPIRES_IN)")

	return cmd
}

type tokenOutput struct {
	OwnerID     string    `json:"owner_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func runToken(cmd *cobra.Command, opts *TokenOptions) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	if !uuid.IsValid(opts.Owner) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --owner %q: must be a UUID", opts.Owner))
	}

	cfg, err := config.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = cfg.JWTExpirationDur
	}

	token, err := middleware.GenerateAccessToken(opts.Owner, ttl)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to sign token", err)
	}

	result := tokenOutput{OwnerID: opts.Owner, AccessToken: token, ExpiresAt: time.Now().Add(ttl).UTC()}
	return out.Success(result, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, token)
		return err
	})
}
