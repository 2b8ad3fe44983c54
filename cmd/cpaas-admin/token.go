package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/adfharrison1/cpaas-admin/pkg/auth"
	"github.com/adfharrison1/cpaas-admin/pkg/config"
)

func tokenCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var (
		subject string
		email   string
		role    string
		actor   string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed bearer token for local testing",
		Example: `  cpaas-admin token --subject usr_001 --email ada.lovelace@cpaas.example --role admin
  curl -H "Authorization: Bearer $(cpaas-admin token -s usr_001 -e ada@x.io | jq -r .token)" localhost:8080/api/users`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if ttl > 0 {
				cfg.Auth.TTL = ttl
			}
			tokens, err := auth.NewTokenService(cfg.Auth)
			if err != nil {
				return err
			}
			token, claims, err := tokens.Issue(subject, email, role, actor)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"token":      token,
				"expires_at": claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
				"claims":     claims,
			})
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "usr_001", "user id placed in the sub claim")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email claim")
	cmd.Flags().StringVarP(&role, "role", "r", auth.RoleAdmin, "role claim")
	cmd.Flags().StringVar(&actor, "act", "", "impersonating admin id, if any")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to auth.ttl)")
	return cmd
}
