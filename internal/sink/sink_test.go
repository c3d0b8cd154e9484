package sink

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/hookbridge/internal/account"
	"github.com/soyeahso/hookbridge/internal/domain"
	"github.com/soyeahso/hookbridge/internal/hooks"
	"github.com/soyeahso/hookbridge/internal/logging"
)

type memorySink struct {
	mu   sync.Mutex
	msgs []domain.IncomingMessage
	err  error
}

func (m *memorySink) Deliver(_ context.Context, msg domain.IncomingMessage, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return m.err
}

func TestRecordingStampsInbound(t *testing.T) {
	store := account.NewStore()
	next := &memorySink{}
	rec := NewRecording(next, store, nil)

	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	rec.now = func() time.Time { return at }

	err := rec.Deliver(context.Background(), domain.IncomingMessage{
		MessageID: "m-1",
		SenderID:  "alice",
	}, "Support")
	require.NoError(t, err)

	require.Len(t, next.msgs, 1)
	view := store.View("support")
	assert.Equal(t, at, view.LastInboundAt)
	assert.Equal(t, at, view.LastMessageAt)
	assert.True(t, view.LastOutboundAt.IsZero())
}

func TestRecordingStampsEvenOnDownstreamFailure(t *testing.T) {
	store := account.NewStore()
	next := &memorySink{err: errors.New("session unavailable")}
	rec := NewRecording(next, store, nil)

	err := rec.Deliver(context.Background(), domain.IncomingMessage{
		MessageID: "m-1",
		SenderID:  "alice",
	}, "default")
	require.EqualError(t, err, "session unavailable")
	assert.False(t, store.View("default").LastInboundAt.IsZero())
}

func TestRecordingEmitsReceivedEvent(t *testing.T) {
	store := account.NewStore()
	hm := hooks.NewManager(logging.New(nil, "silent"))

	var mu sync.Mutex
	var got []hooks.Payload
	hm.On(hooks.EventMessageReceived, "test", func(_ context.Context, p hooks.Payload) error {
		mu.Lock()
		got = append(got, p)
		mu.Unlock()
		return nil
	})

	rec := NewRecording(&memorySink{}, store, hm)
	require.NoError(t, rec.Deliver(context.Background(), domain.IncomingMessage{
		MessageID: "m-7",
		SenderID:  "bob",
	}, "default"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, hooks.EventMessageReceived, got[0].Event)
	assert.Equal(t, "m-7", got[0].Data["messageId"])
	assert.Equal(t, "bob", got[0].Data["senderId"])
}

func TestLogSinkAlwaysSucceeds(t *testing.T) {
	l := NewLog(logging.New(nil, "silent"))
	err := l.Deliver(context.Background(), domain.IncomingMessage{
		MessageID: "m-1",
		SenderID:  "alice",
		ChatID:    "room-9",
		IsGroup:   true,
		Media:     []domain.MediaAttachment{{Type: domain.MediaImage, URL: "https://x/1.png"}},
	}, "default")
	assert.NoError(t, err)
}
