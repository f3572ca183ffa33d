// internal/cli/token.go
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"safari-connect/internal/middleware"
)

type TokenOptions struct {
	*RootOptions
	Subject string
	TTL     time.Duration
}

func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the admin API",
		Long: `Sign an admin token with admin.jwt_secret (SAFARI_ADMIN_JWT_SECRET).

Example:
  safari-connect token --subject owner --ttl 12h`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Subject, "subject", "admin", "token subject")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}

func runToken(opts *TokenOptions, cmd *cobra.Command) error {
	secret := opts.Config.Admin.JWTSecret
	if secret == "" {
		return NewExitError(ExitCommandError, "admin.jwt_secret is not set")
	}
	if opts.TTL <= 0 {
		return NewExitError(ExitCommandError, "--ttl must be positive")
	}

	token, err := middleware.IssueAdminToken([]byte(secret), opts.Subject, opts.TTL)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to sign token", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Print(map[string]string{"token": token, "subject": opts.Subject}, token)
}
