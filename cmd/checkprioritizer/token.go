package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/checkprioritizer/internal/adapters/driven/auth"
	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP relay (requires JWT_SECRET)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			if a.cfg.Server.JWTSecret == "" {
				return fmt.Errorf("%w: JWT_SECRET is not set", domain.ErrNotConfigured)
			}
			token, err := auth.NewAdapter(a.cfg.Server.JWTSecret).IssueToken(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "chat-ui", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime")
	return cmd
}
