// Package account resolves webhook account configuration and tracks
// per-account runtime state.
package account

import (
	"slices"
	"strings"

	"github.com/soyeahso/hookbridge/internal/config"
)

// DefaultID is the well-known id for the account configured by the
// top-level webhook block.
const DefaultID = "default"

// NormalizeID canonicalizes an account id for lookups and map keys.
// Empty or blank ids resolve to DefaultID.
func NormalizeID(id string) string {
	normalized := strings.ToLower(strings.TrimSpace(id))
	if normalized == "" {
		return DefaultID
	}
	return normalized
}

// Resolved is the canonical read-only view of one account at one point in
// time. It is derived fresh on every Resolve call and never cached.
type Resolved struct {
	AccountID    string
	Name         string
	Enabled      bool
	Config       config.AccountConfig
	WebhookPath  string
	CallbackURL  string
	HasAuthToken bool
}

// Configured reports whether both endpoints of the bridge are set.
func (r Resolved) Configured() bool {
	return strings.TrimSpace(r.WebhookPath) != "" && strings.TrimSpace(r.CallbackURL) != ""
}

// UnconfiguredReason names the first missing field, or "unknown" when
// the account is actually configured.
func (r Resolved) UnconfiguredReason() string {
	if strings.TrimSpace(r.WebhookPath) == "" {
		return "webhookPath not set"
	}
	if strings.TrimSpace(r.CallbackURL) == "" {
		return "callbackUrl not set"
	}
	return "unknown"
}

// Resolve produces the canonical account view for the given id from a
// configuration snapshot. Precedence: the account-specific block wins
// outright when present; the top-level block backs only the default id;
// otherwise defaults alone apply.
func Resolve(w *config.WebhookConfig, accountID string) Resolved {
	id := NormalizeID(accountID)

	var acct config.AccountConfig
	if w != nil {
		if specific, ok := w.Accounts[id]; ok {
			acct = copyAccountConfig(specific)
		} else if id == DefaultID {
			acct = copyAccountConfig(w.AccountConfig)
		}
	}

	// Defaults for omitted fields.
	enabled := true
	if acct.Enabled != nil {
		enabled = *acct.Enabled
	}
	if acct.DMPolicy == "" {
		acct.DMPolicy = "pairing"
	}
	if acct.AllowFrom == nil {
		acct.AllowFrom = []string{}
	}

	return Resolved{
		AccountID:    id,
		Name:         acct.Name,
		Enabled:      enabled,
		Config:       acct,
		WebhookPath:  acct.WebhookPath,
		CallbackURL:  acct.CallbackURL,
		HasAuthToken: strings.TrimSpace(acct.AuthToken) != "",
	}
}

// ListIDs enumerates the configured account ids. The default id is included
// once, first, when the top-level block carries any endpoint or token.
func ListIDs(w *config.WebhookConfig) []string {
	if w == nil {
		return nil
	}

	ids := make([]string, 0, len(w.Accounts)+1)
	for id := range w.Accounts {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	hasTopLevel := w.WebhookPath != "" || w.CallbackURL != "" || w.AuthToken != ""
	if hasTopLevel && !slices.Contains(ids, DefaultID) {
		ids = append([]string{DefaultID}, ids...)
	}

	return ids
}

// ResolveRequireMention looks up the per-group mention requirement for the
// given account. Returns nil when the group has no explicit setting.
func ResolveRequireMention(w *config.WebhookConfig, accountID, groupID string) *bool {
	if groupID == "" {
		return nil
	}
	resolved := Resolve(w, accountID)
	group, ok := resolved.Config.Groups[groupID]
	if !ok || group.RequireMention == nil {
		return nil
	}
	v := *group.RequireMention
	return &v
}

// copyAccountConfig detaches slices and maps from the snapshot so a
// resolved view never aliases (or mutates) the configuration it came from.
func copyAccountConfig(in config.AccountConfig) config.AccountConfig {
	out := in
	if in.Enabled != nil {
		v := *in.Enabled
		out.Enabled = &v
	}
	if in.AllowFrom != nil {
		out.AllowFrom = slices.Clone(in.AllowFrom)
	}
	if in.CallbackHeaders != nil {
		out.CallbackHeaders = make(map[string]string, len(in.CallbackHeaders))
		for k, v := range in.CallbackHeaders {
			out.CallbackHeaders[k] = v
		}
	}
	if in.Groups != nil {
		out.Groups = make(map[string]config.GroupConfig, len(in.Groups))
		for k, v := range in.Groups {
			out.Groups[k] = v
		}
	}
	return out
}
