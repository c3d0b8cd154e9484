// Package outbound delivers replies to an account's callback URL.
package outbound

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/hookbridge/internal/account"
	"github.com/soyeahso/hookbridge/internal/config"
	"github.com/soyeahso/hookbridge/internal/domain"
	"github.com/soyeahso/hookbridge/internal/hooks"
	"github.com/soyeahso/hookbridge/internal/logging"
)

// textChunkLimit is the maximum text length (in runes) per callback POST.
// Longer texts are split into sequential sends.
const textChunkLimit = 4096

// maxErrorBodyBytes caps how much of a failed callback response is kept
// for diagnostics.
const maxErrorBodyBytes = 8 << 10

// Request describes one outbound delivery.
type Request struct {
	AccountID string
	To        string
	Text      string
	MediaURL  string
	MediaType domain.MediaType
	ReplyToID string
	ThreadID  string
	Metadata  map[string]any
}

// Result is the outcome of a delivery attempt. Failures are values here,
// never errors: the caller decides what a failed send means.
type Result struct {
	OK        bool   `json:"ok"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Sender POSTs outgoing messages to callback URLs and keeps per-account
// delivery bookkeeping. Each send is a single best-effort attempt with no
// retry or queueing.
type Sender struct {
	client *http.Client
	store  *account.Store
	hooks  *hooks.Manager
	log    *logging.Logger
	now    func() time.Time
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithClient overrides the HTTP client used for callback requests.
func WithClient(c *http.Client) SenderOption {
	return func(s *Sender) { s.client = c }
}

// WithHooks emits delivery lifecycle events through the given manager.
func WithHooks(hm *hooks.Manager) SenderOption {
	return func(s *Sender) { s.hooks = hm }
}

// NewSender creates a sender over the given runtime store.
func NewSender(store *account.Store, log *logging.Logger, opts ...SenderOption) *Sender {
	s := &Sender{
		client: &http.Client{Timeout: 30 * time.Second},
		store:  store,
		log:    log.Sub("outbound"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendText delivers a text message. Texts longer than the chunk limit are
// split into sequential sends; the result carries the last chunk's message
// id, and the first failure aborts the remainder.
func (s *Sender) SendText(ctx context.Context, w *config.WebhookConfig, req Request) Result {
	resolved, result := s.prepare(w, &req)
	if !result.OK {
		return result
	}

	var last Result
	for _, chunk := range splitText(req.Text, textChunkLimit) {
		payload := s.buildPayload(req)
		payload.Text = chunk
		last = s.post(ctx, resolved, payload)
		if !last.OK {
			return last
		}
	}
	return last
}

// SendMedia delivers a media message with optional caption text.
func (s *Sender) SendMedia(ctx context.Context, w *config.WebhookConfig, req Request) Result {
	resolved, result := s.prepare(w, &req)
	if !result.OK {
		return result
	}

	payload := s.buildPayload(req)
	payload.Text = req.Text
	payload.MediaURL = req.MediaURL
	payload.MediaType = req.MediaType
	return s.post(ctx, resolved, payload)
}

// prepare normalizes the target and resolves the account, failing fast
// before any network work.
func (s *Sender) prepare(w *config.WebhookConfig, req *Request) (account.Resolved, Result) {
	req.To = strings.TrimSpace(req.To)
	if req.To == "" {
		return account.Resolved{}, Result{OK: false, Error: "Missing target (to)"}
	}

	resolved := account.Resolve(w, req.AccountID)
	if strings.TrimSpace(resolved.CallbackURL) == "" {
		return resolved, Result{OK: false, Error: "Callback URL not configured"}
	}
	return resolved, Result{OK: true}
}

func (s *Sender) buildPayload(req Request) domain.OutgoingMessage {
	return domain.OutgoingMessage{
		MessageID: newMessageID(s.now()),
		To:        req.To,
		ReplyToID: req.ReplyToID,
		ThreadID:  req.ThreadID,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Metadata:  req.Metadata,
	}
}

// post performs one callback POST and interprets the outcome. Runtime
// bookkeeping is updated only on success.
func (s *Sender) post(ctx context.Context, resolved account.Resolved, payload domain.OutgoingMessage) Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{OK: false, Error: "Callback error: " + err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, resolved.CallbackURL, bytes.NewReader(body))
	if err != nil {
		return Result{OK: false, Error: "Callback error: " + err.Error()}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for name, value := range resolved.Config.CallbackHeaders {
		httpReq.Header.Set(name, value)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.log.Warn().Err(err).Str("account", resolved.AccountID).Msg("callback transport error")
		errText := "Callback error: " + err.Error()
		s.store.SetLastError(resolved.AccountID, errText)
		s.emit(hooks.EventDeliveryFailed, resolved.AccountID, payload.MessageID)
		return Result{OK: false, Error: errText}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errText := fmt.Sprintf("Callback failed: %d %s", resp.StatusCode, readErrorBody(resp.Body))
		s.log.Warn().
			Int("status", resp.StatusCode).
			Str("account", resolved.AccountID).
			Msg("callback rejected message")
		s.store.SetLastError(resolved.AccountID, errText)
		s.emit(hooks.EventDeliveryFailed, resolved.AccountID, payload.MessageID)
		return Result{OK: false, Error: errText}
	}

	s.store.RecordOutbound(resolved.AccountID, s.now())
	s.emit(hooks.EventMessageSent, resolved.AccountID, payload.MessageID)
	s.log.Debug().
		Str("account", resolved.AccountID).
		Str("messageId", payload.MessageID).
		Msg("message delivered")
	return Result{OK: true, MessageID: payload.MessageID}
}

func (s *Sender) emit(event, accountID, messageID string) {
	if s.hooks == nil {
		return
	}
	s.hooks.Emit(context.Background(), event, map[string]any{
		"account":   accountID,
		"messageId": messageID,
	})
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	text := strings.TrimSpace(string(data))
	if err != nil || text == "" {
		return "Unknown error"
	}
	return text
}

// newMessageID produces a collision-resistant opaque id from the current
// time and random bits. Uniqueness is probabilistic, not guaranteed under
// adversarial conditions.
func newMessageID(now time.Time) string {
	return fmt.Sprintf("webhook-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

// splitText chunks s into pieces of at most limit runes, preserving order.
func splitText(s string, limit int) []string {
	if s == "" {
		return []string{""}
	}

	var chunks []string
	runes := []rune(s)
	for len(runes) > limit {
		chunks = append(chunks, string(runes[:limit]))
		runes = runes[limit:]
	}
	return append(chunks, string(runes))
}
