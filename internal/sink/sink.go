// Package sink provides inbound message consumers for the gateway.
package sink

import (
	"context"
	"time"

	"github.com/soyeahso/hookbridge/internal/account"
	"github.com/soyeahso/hookbridge/internal/domain"
	"github.com/soyeahso/hookbridge/internal/hooks"
	"github.com/soyeahso/hookbridge/internal/logging"
)

// Recording wraps another sink and stamps per-account inbound activity
// before forwarding. The gateway itself never writes runtime state; this
// decorator is the single writer of inbound timestamps.
type Recording struct {
	next  domain.Sink
	store *account.Store
	hooks *hooks.Manager
	now   func() time.Time
}

// NewRecording creates a recording decorator over next. hooks may be nil.
func NewRecording(next domain.Sink, store *account.Store, hm *hooks.Manager) *Recording {
	return &Recording{next: next, store: store, hooks: hm, now: time.Now}
}

// Deliver records inbound activity, emits the received event, and forwards
// the message. A downstream failure is returned unchanged; the activity
// stamp is kept because the message did arrive.
func (r *Recording) Deliver(ctx context.Context, msg domain.IncomingMessage, accountID string) error {
	r.store.RecordInbound(accountID, r.now())
	if r.hooks != nil {
		r.hooks.Emit(ctx, hooks.EventMessageReceived, map[string]any{
			"account":   account.NormalizeID(accountID),
			"messageId": msg.MessageID,
			"senderId":  msg.SenderID,
		})
	}
	return r.next.Deliver(ctx, msg, accountID)
}

// Log is a terminal sink that writes each accepted message to the logger.
// It is the default consumer when no downstream integration is wired.
type Log struct {
	log *logging.Logger
}

// NewLog creates a logging sink.
func NewLog(log *logging.Logger) *Log {
	return &Log{log: log.Sub("sink")}
}

// Deliver logs the message and always succeeds.
func (l *Log) Deliver(_ context.Context, msg domain.IncomingMessage, accountID string) error {
	evt := l.log.Info().
		Str("account", account.NormalizeID(accountID)).
		Str("messageId", msg.MessageID).
		Str("senderId", msg.SenderID).
		Bool("isGroup", msg.IsGroup)
	if msg.ChatID != "" {
		evt = evt.Str("chatId", msg.ChatID)
	}
	if len(msg.Media) > 0 {
		evt = evt.Int("media", len(msg.Media))
	}
	evt.Msg("message received")
	return nil
}
