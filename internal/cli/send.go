package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/soyeahso/hookbridge/internal/account"
	"github.com/soyeahso/hookbridge/internal/config"
	"github.com/soyeahso/hookbridge/internal/domain"
	"github.com/soyeahso/hookbridge/internal/outbound"
	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	var (
		accountID string
		to        string
		mediaURL  string
		mediaType string
	)

	cmd := &cobra.Command{
		Use:   "send [text]",
		Short: "Deliver a one-off message to an account's callback URL",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "" && mediaURL == "" {
				return fmt.Errorf("nothing to send: provide text or --media")
			}

			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sender := outbound.NewSender(account.NewStore(), log)
			req := outbound.Request{
				AccountID: accountID,
				To:        to,
				Text:      text,
				MediaURL:  mediaURL,
				MediaType: domain.MediaType(mediaType),
			}

			var res outbound.Result
			if mediaURL != "" {
				res = sender.SendMedia(ctx, &cfg.Webhook, req)
			} else {
				res = sender.SendText(ctx, &cfg.Webhook, req)
			}

			if !res.OK {
				return fmt.Errorf("%s", res.Error)
			}
			fmt.Printf("Sent %s\n", res.MessageID)
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", account.DefaultID, "account to send from")
	cmd.Flags().StringVar(&to, "to", "", "recipient id (required)")
	cmd.Flags().StringVar(&mediaURL, "media", "", "media URL to attach")
	cmd.Flags().StringVar(&mediaType, "media-type", string(domain.MediaImage), "media type (image, audio, video, document)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
