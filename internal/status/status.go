// Package status assembles read-only account health reports from
// configuration and runtime state.
package status

import (
	"fmt"
	"time"

	"github.com/soyeahso/hookbridge/internal/account"
	"github.com/soyeahso/hookbridge/internal/config"
)

// AccountSnapshot merges an account's resolved configuration with its
// runtime record at one point in time.
type AccountSnapshot struct {
	AccountID    string    `json:"accountId"`
	Name         string    `json:"name,omitempty"`
	Enabled      bool      `json:"enabled"`
	Configured   bool      `json:"configured"`
	Reason       string    `json:"reason,omitempty"`
	Running      bool      `json:"running"`
	Connected    bool      `json:"connected"`
	WebhookPath  string    `json:"webhookPath,omitempty"`
	CallbackURL  string    `json:"callbackUrl,omitempty"`
	HasAuthToken bool      `json:"hasAuthToken"`
	DMPolicy     string    `json:"dmPolicy"`
	AllowFrom    []string  `json:"allowFrom"`
	MessageCount int64     `json:"messageCount"`
	LastError    string    `json:"lastError,omitempty"`
	LastMessage  time.Time `json:"lastMessageAt,omitzero"`
	LastInbound  time.Time `json:"lastInboundAt,omitzero"`
	LastOutbound time.Time `json:"lastOutboundAt,omitzero"`
}

// Issue is an actionable problem found while inspecting accounts.
type Issue struct {
	AccountID string `json:"accountId"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Fix       string `json:"fix,omitempty"`
}

// BuildSnapshot produces the snapshot for one account. The runtime record
// is read through the store's copying view, so the result is safe to hold.
func BuildSnapshot(w *config.WebhookConfig, store *account.Store, accountID string) AccountSnapshot {
	resolved := account.Resolve(w, accountID)
	rt := store.View(resolved.AccountID)

	snap := AccountSnapshot{
		AccountID:    resolved.AccountID,
		Name:         resolved.Name,
		Enabled:      resolved.Enabled,
		Configured:   resolved.Configured(),
		Running:      rt.Running,
		Connected:    rt.Connected,
		WebhookPath:  resolved.WebhookPath,
		CallbackURL:  resolved.CallbackURL,
		HasAuthToken: resolved.HasAuthToken,
		DMPolicy:     resolved.Config.DMPolicy,
		AllowFrom:    resolved.Config.AllowFrom,
		MessageCount: rt.MessageCount,
		LastError:    rt.LastError,
		LastMessage:  rt.LastMessageAt,
		LastInbound:  rt.LastInboundAt,
		LastOutbound: rt.LastOutboundAt,
	}
	if !snap.Configured {
		snap.Reason = resolved.UnconfiguredReason()
	}
	return snap
}

// BuildAll snapshots every configured account in ListIDs order.
func BuildAll(w *config.WebhookConfig, store *account.Store) []AccountSnapshot {
	ids := account.ListIDs(w)
	snaps := make([]AccountSnapshot, 0, len(ids))
	for _, id := range ids {
		snaps = append(snaps, BuildSnapshot(w, store, id))
	}
	return snaps
}

// CollectIssues scans snapshots for configuration problems. Disabled
// accounts are skipped; being off is not a problem.
func CollectIssues(snaps []AccountSnapshot) []Issue {
	var issues []Issue
	for _, snap := range snaps {
		if !snap.Enabled || snap.Configured {
			continue
		}
		issues = append(issues, Issue{
			AccountID: snap.AccountID,
			Kind:      "config",
			Message:   fmt.Sprintf("account %q is not configured: %s", snap.AccountID, snap.Reason),
			Fix:       "Set webhook.webhookPath and webhook.callbackUrl",
		})
	}
	return issues
}
