package config

// Config is the root configuration for hookbridge.
type Config struct {
	Server  ServerConfig  `yaml:"server,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Webhook WebhookConfig `yaml:"webhook,omitempty"`
}

// ServerConfig controls the HTTP listener that serves webhook routes.
type ServerConfig struct {
	Port           int    `yaml:"port,omitempty"`
	Bind           string `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string `yaml:"customBindHost,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File  string `yaml:"file,omitempty"`
}

// WebhookConfig is the webhook channel configuration block. Its inline
// account fields describe the default account; Accounts holds additional
// per-account blocks that, when present for an id, replace the inline
// fields entirely for that account.
type WebhookConfig struct {
	AccountConfig `yaml:",inline"`
	Accounts      map[string]AccountConfig `yaml:"accounts,omitempty"`
}

// AccountConfig configures a single webhook account. All fields are
// optional; the resolver fills defaults for anything omitted.
type AccountConfig struct {
	// Enabled defaults to true when unset.
	Enabled *bool `yaml:"enabled,omitempty"`
	// Name is a display name for this account.
	Name string `yaml:"name,omitempty"`
	// WebhookPath is the inbound HTTP path (e.g. /webhook/incoming).
	WebhookPath string `yaml:"webhookPath,omitempty"`
	// CallbackURL is the external endpoint replies are POSTed to.
	CallbackURL string `yaml:"callbackUrl,omitempty"`
	// CallbackHeaders are merged into every callback request.
	CallbackHeaders map[string]string `yaml:"callbackHeaders,omitempty"`
	// AuthToken is the bearer token required on inbound webhooks.
	AuthToken string `yaml:"authToken,omitempty"`
	// DMPolicy is one of "open", "pairing", "allowlist". Defaults to "pairing".
	DMPolicy string `yaml:"dmPolicy,omitempty"`
	// AllowFrom lists sender ids admitted under the allowlist policy.
	AllowFrom []string `yaml:"allowFrom,omitempty"`
	// Groups holds per-group settings keyed by group id.
	Groups map[string]GroupConfig `yaml:"groups,omitempty"`
	// GroupPolicy is one of "open", "allowlist".
	GroupPolicy string `yaml:"groupPolicy,omitempty"`
}

// GroupConfig configures a single group within an account.
type GroupConfig struct {
	RequireMention *bool  `yaml:"requireMention,omitempty"`
	Name           string `yaml:"name,omitempty"`
}
