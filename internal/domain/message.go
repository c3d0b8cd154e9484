// Package domain defines the wire payloads exchanged with external
// messaging integrations and the collaborator interfaces around them.
package domain

import "context"

// MediaType classifies a media attachment.
type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaAudio    MediaType = "audio"
	MediaVideo    MediaType = "video"
	MediaDocument MediaType = "document"
)

// MediaAttachment is a media item carried on an incoming message.
type MediaAttachment struct {
	Type     MediaType `json:"type"`
	URL      string    `json:"url"`
	MimeType string    `json:"mimeType,omitempty"`
	Filename string    `json:"filename,omitempty"`
	Size     int64     `json:"size,omitempty"`
	Caption  string    `json:"caption,omitempty"`
}

// IncomingMessage is the JSON payload external systems POST to a webhook
// path. Only MessageID and SenderID are required; Timestamp may be an
// ISO-8601 string or Unix milliseconds, so it is left untyped.
type IncomingMessage struct {
	MessageID  string            `json:"messageId"`
	SenderID   string            `json:"senderId"`
	SenderName string            `json:"senderName,omitempty"`
	Text       string            `json:"text,omitempty"`
	ChatID     string            `json:"chatId,omitempty"`
	IsGroup    bool              `json:"isGroup,omitempty"`
	GroupName  string            `json:"groupName,omitempty"`
	Timestamp  any               `json:"timestamp,omitempty"`
	ReplyToID  string            `json:"replyToId,omitempty"`
	ThreadID   string            `json:"threadId,omitempty"`
	Media      []MediaAttachment `json:"media,omitempty"`
	Metadata   map[string]any    `json:"metadata,omitempty"`
}

// OutgoingMessage is the JSON payload POSTed to an account's callback URL.
type OutgoingMessage struct {
	MessageID string         `json:"messageId"`
	To        string         `json:"to"`
	Text      string         `json:"text,omitempty"`
	MediaURL  string         `json:"mediaUrl,omitempty"`
	MediaType MediaType      `json:"mediaType,omitempty"`
	ReplyToID string         `json:"replyToId,omitempty"`
	ThreadID  string         `json:"threadId,omitempty"`
	Timestamp string         `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Sink receives validated inbound messages from the gateway. Implementations
// own chat-session semantics; the gateway only guarantees the message passed
// schema validation and account authentication.
type Sink interface {
	Deliver(ctx context.Context, msg IncomingMessage, accountID string) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, msg IncomingMessage, accountID string) error

// Deliver calls f.
func (f SinkFunc) Deliver(ctx context.Context, msg IncomingMessage, accountID string) error {
	return f(ctx, msg, accountID)
}
