package main

import (
	"fmt"
	"time"

	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	var (
		userFlag string
		email    string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API access token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap("stderr")
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			userID := uuid.New()
			if userFlag != "" {
				if userID, err = uuid.Parse(userFlag); err != nil {
					return fmt.Errorf("invalid user id %q: %w", userFlag, err)
				}
			}

			token, expiresAt, err := security.NewTokenService(cfg.Auth, log).GenerateAccessToken(userID, email)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user:    %s\n", userID)
			fmt.Fprintf(out, "expires: %s\n", expiresAt.Format(time.RFC3339))
			fmt.Fprintln(out, token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "user id, a random one when empty")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	return cmd
}
