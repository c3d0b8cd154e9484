// Package security derives the DM admission policy and operator-facing
// warnings from a resolved webhook account.
package security

import (
	"fmt"
	"strings"

	"github.com/soyeahso/hookbridge/internal/account"
	"github.com/soyeahso/hookbridge/internal/config"
	"github.com/soyeahso/hookbridge/internal/logging"
)

// DMPolicy is the resolved direct-message admission rule for one account.
// PolicyPath and AllowFromPath point at the winning configuration layer so
// operators know which setting to edit; they have no runtime effect.
type DMPolicy struct {
	Policy        string
	AllowFrom     []string
	PolicyPath    string
	AllowFromPath string
	ApproveHint   string
}

// NormalizeEntry canonicalizes an allow-list entry or sender id. Allow-list
// checks and display formatting must both go through this.
func NormalizeEntry(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// FormatAllowFrom normalizes entries and drops blanks, preserving order.
func FormatAllowFrom(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if n := NormalizeEntry(e); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// ResolveDMPolicy derives the admission policy for an account. The config
// path breadcrumbs name the account-specific block when one exists for this
// id, and the top-level webhook block otherwise.
func ResolveDMPolicy(w *config.WebhookConfig, accountID string, resolved account.Resolved) DMPolicy {
	id := resolved.AccountID
	if id == "" {
		id = account.NormalizeID(accountID)
	}

	basePath := "webhook."
	if w != nil {
		if _, ok := w.Accounts[id]; ok {
			basePath = fmt.Sprintf("webhook.accounts.%s.", id)
		}
	}

	policy := resolved.Config.DMPolicy
	if policy == "" {
		policy = "pairing"
	}

	return DMPolicy{
		Policy:        policy,
		AllowFrom:     resolved.Config.AllowFrom,
		PolicyPath:    basePath + "dmPolicy",
		AllowFromPath: basePath + "allowFrom",
		ApproveHint:   "hookbridge pairing approve <code>",
	}
}

// Allows reports whether a sender is admitted without a pairing exchange.
// Pairing-policy senders always need explicit approval from the host.
func (p DMPolicy) Allows(senderID string) bool {
	switch p.Policy {
	case "open":
		return true
	case "allowlist":
		normalized := NormalizeEntry(senderID)
		for _, entry := range p.AllowFrom {
			if NormalizeEntry(entry) == normalized {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// CollectWarnings emits human-readable security warnings for an account:
// an open DM policy with no allow-list, and a missing inbound auth token.
// Both can fire at once, open-policy warning first.
func CollectWarnings(resolved account.Resolved) []string {
	var warnings []string

	policy := resolved.Config.DMPolicy
	if policy == "" {
		policy = "pairing"
	}
	if policy == "open" && len(resolved.Config.AllowFrom) == 0 {
		warnings = append(warnings,
			`webhook: dmPolicy="open" with no allowFrom; anyone can send messages. Set dmPolicy="allowlist" or "pairing".`)
	}

	if !resolved.HasAuthToken {
		warnings = append(warnings,
			"webhook: no authToken configured; incoming webhooks are not authenticated. Set webhook.authToken.")
	}

	return warnings
}

// NotifyApproval records a pairing approval for a sender id.
func NotifyApproval(log *logging.Logger, senderID string) {
	log.Info().Str("sender", NormalizeEntry(senderID)).Msg("pairing approved")
}
