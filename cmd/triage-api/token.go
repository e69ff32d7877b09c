package main

import (
	"fmt"
	"time"

	"backend-triage/internal/auth"
	"backend-triage/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newTokenCommand(v *viper.Viper) *cobra.Command {
	var (
		subject string
		roles   []string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token signed with the configured secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(v)
			if err != nil {
				return err
			}
			if ttl == 0 {
				ttl = cfg.TokenExpiry
			}
			token, err := auth.NewVerifier(cfg.JWTSecret).Issue(subject, roles, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject (required)")
	cmd.Flags().StringSliceVar(&roles, "roles", nil, "comma separated roles")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_EXPIRES_IN)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
