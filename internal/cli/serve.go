package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/soyeahso/hookbridge/internal/account"
	"github.com/soyeahso/hookbridge/internal/config"
	"github.com/soyeahso/hookbridge/internal/gateway"
	"github.com/soyeahso/hookbridge/internal/hooks"
	"github.com/soyeahso/hookbridge/internal/security"
	"github.com/soyeahso/hookbridge/internal/sink"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook gateway server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			hookMgr := hooks.NewManager(log)
			store := account.NewStore()
			consumer := sink.NewRecording(sink.NewLog(log), store, hookMgr)

			// Surface policy problems before taking traffic.
			for _, id := range account.ListIDs(&cfg.Webhook) {
				resolved := account.Resolve(&cfg.Webhook, id)
				for _, warning := range security.CollectWarnings(resolved) {
					log.Warn().Str("account", id).Msg(warning)
				}
			}

			router := gateway.NewRouter(log)
			teardown, err := gateway.BindRoutes(router, &cfg.Webhook, consumer, store, log)
			if err != nil {
				return err
			}
			defer teardown()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := gateway.NewServer(cfg.Server, router, log, gateway.WithHooks(hookMgr))
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override server port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")

	return cmd
}
