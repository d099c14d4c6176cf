package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"stockledger/internal/domain/auth"
)

func (c *cli) tokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:         "token <user-id>",
		Short:       "Issue an API access token signed with JWT_SECRET",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{skipStorage: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.cfg.AuthEnabled() {
				return errors.New("JWT_SECRET is not set")
			}
			jwtCfg := auth.DefaultJWTConfig(c.cfg.JWTSecret)
			if ttl > 0 {
				jwtCfg.AccessTokenTTL = ttl
			}
			token, exp, err := auth.NewJWTService(jwtCfg).GenerateAccessToken(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", exp.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default 12h)")
	return cmd
}
