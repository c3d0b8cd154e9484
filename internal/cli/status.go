package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/soyeahso/hookbridge/internal/account"
	"github.com/soyeahso/hookbridge/internal/config"
	"github.com/soyeahso/hookbridge/internal/security"
	"github.com/soyeahso/hookbridge/internal/status"
	"github.com/soyeahso/hookbridge/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show hookbridge status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("hookbridge %s (commit %s)\n\n", version.Version, version.Commit)

			// Show paths
			fmt.Printf("Config:  %s\n", paths.Config)
			fmt.Printf("Logs:    %s\n", paths.Logs)
			fmt.Println()

			// Load config
			cfg, err := config.Load(paths.Config)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Println("Config:  not found (using defaults)")
				} else {
					fmt.Printf("Config:  error loading: %v\n", err)
				}
				return nil
			}

			port := cfg.Server.Port
			if port == 0 {
				port = config.DefaultPort
			}
			bind := cfg.Server.Bind
			if bind == "" {
				bind = "loopback"
			}
			fmt.Printf("Server:  port=%d bind=%s\n\n", port, bind)

			store := account.NewStore()
			snaps := status.BuildAll(&cfg.Webhook, store)
			if len(snaps) == 0 {
				fmt.Println("Accounts: (none configured)")
			}
			for _, snap := range snaps {
				state := "ok"
				if !snap.Enabled {
					state = "disabled"
				} else if !snap.Configured {
					state = "not configured (" + snap.Reason + ")"
				}
				auth := "none"
				if snap.HasAuthToken {
					auth = "bearer"
				}
				fmt.Printf("Account: id=%s path=%s auth=%s dmPolicy=%s state=%s\n",
					snap.AccountID, orDash(snap.WebhookPath), auth, snap.DMPolicy, state)
			}

			// Policy warnings
			var warned bool
			for _, id := range account.ListIDs(&cfg.Webhook) {
				resolved := account.Resolve(&cfg.Webhook, id)
				for _, warning := range security.CollectWarnings(resolved) {
					if !warned {
						fmt.Println()
						warned = true
					}
					fmt.Printf("  warning [%s]: %s\n", id, warning)
				}
			}

			// Actionable problems
			if issues := status.CollectIssues(snaps); len(issues) > 0 {
				fmt.Printf("\nIssues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s (fix: %s)\n", issue.Message, issue.Fix)
				}
			}

			// Validation
			if problems := config.Validate(&cfg); len(problems) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(problems))
				for _, p := range problems {
					fmt.Printf("  - %s: %s\n", p.Path, p.Message)
				}
			}

			return nil
		},
	}

	return cmd
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
