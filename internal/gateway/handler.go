package gateway

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/soyeahso/hookbridge/internal/account"
	"github.com/soyeahso/hookbridge/internal/config"
	"github.com/soyeahso/hookbridge/internal/domain"
	"github.com/soyeahso/hookbridge/internal/logging"
)

// maxBodyBytes caps inbound request bodies.
const maxBodyBytes = 1 << 20

// HandlerDeps wires one inbound webhook handler to its collaborators.
type HandlerDeps struct {
	Webhook   *config.WebhookConfig
	AccountID string
	Sink      domain.Sink
	Log       *logging.Logger
}

// NewHandler builds the inbound handler for one account. Each request runs
// the fixed pipeline: method check, bearer auth, JSON parse, schema
// validation, dispatch. The first failing check responds and stops.
func NewHandler(deps HandlerDeps) http.Handler {
	log := deps.Log.Sub("inbound").WithAccount(deps.AccountID)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondJSON(w, http.StatusMethodNotAllowed, Response{Success: false, Error: errMethodNotAllowed})
			return
		}

		// Auth is skipped entirely when the account has no token configured.
		resolved := account.Resolve(deps.Webhook, deps.AccountID)
		if expected := resolved.Config.AuthToken; expected != "" {
			if !bearerTokenMatches(r.Header.Get("Authorization"), expected) {
				log.Warn().Str("remote", r.RemoteAddr).Msg("webhook auth failed")
				respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: errUnauthorized})
				return
			}
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			log.Warn().Err(err).Msg("failed to read request body")
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: errInvalidJSON})
			return
		}
		// An empty body parses to an empty object, which then fails
		// validation rather than parsing.
		if len(body) == 0 {
			body = []byte("{}")
		}

		var parsed any
		if err := json.Unmarshal(body, &parsed); err != nil {
			log.Warn().Err(err).Msg("webhook parse error")
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: errInvalidJSON})
			return
		}

		if !validIncomingShape(parsed) {
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: errInvalidFormat})
			return
		}

		// The typed decode is lenient: only the fields vetted by
		// validIncomingShape gate a 400. A type mismatch elsewhere
		// (say a numeric groupName) drops that field and the message
		// still flows through.
		var msg domain.IncomingMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: errInvalidFormat})
				return
			}
		}

		if err := deps.Sink.Deliver(r.Context(), msg, deps.AccountID); err != nil {
			log.Error().Err(err).Str("messageId", msg.MessageID).Msg("webhook processing error")
			respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: errInternal})
			return
		}

		respondJSON(w, http.StatusOK, Response{Success: true, MessageID: msg.MessageID})
	})
}

// bearerTokenMatches extracts the bearer token from an Authorization header
// and compares it against the configured token in constant time. The
// expected side is used verbatim.
func bearerTokenMatches(header, expected string) bool {
	if !strings.HasPrefix(header, "Bearer ") {
		return false
	}
	provided := strings.TrimSpace(header[len("Bearer "):])
	return safeEqual(provided, expected)
}

// safeEqual performs a constant-time string comparison to prevent timing attacks.
// It avoids early-return on length mismatch to prevent leaking secret length via timing.
func safeEqual(a, b string) bool {
	lenMatch := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	cmp := subtle.ConstantTimeCompare([]byte(a), []byte(b))
	return subtle.ConstantTimeSelect(lenMatch, cmp, 0) == 1
}

// validIncomingShape checks the parsed body against the inbound schema:
// a JSON object with non-empty messageId and senderId strings, and, when
// present, text and chatId as strings and isGroup as a boolean. No other
// fields are type-checked at this layer.
func validIncomingShape(parsed any) bool {
	obj, ok := parsed.(map[string]any)
	if !ok {
		return false
	}

	if !nonEmptyString(obj["messageId"]) || !nonEmptyString(obj["senderId"]) {
		return false
	}

	for _, key := range []string{"text", "chatId"} {
		if v, present := obj[key]; present {
			if _, ok := v.(string); !ok {
				return false
			}
		}
	}
	if v, present := obj["isGroup"]; present {
		if _, ok := v.(bool); !ok {
			return false
		}
	}

	return true
}

func nonEmptyString(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) != ""
}
