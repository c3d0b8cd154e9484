package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "server.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Server.Port),
		})
	}

	validBinds := []string{"loopback", "lan", "custom"}
	if cfg.Server.Bind != "" && !slices.Contains(validBinds, cfg.Server.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "server.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Server.Bind),
		})
	}
	if cfg.Server.Bind == "custom" && cfg.Server.CustomBindHost == "" {
		issues = append(issues, ValidationIssue{
			Path:    "server.customBindHost",
			Message: "required when bind is custom",
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	issues = append(issues, validateAccount("webhook", &cfg.Webhook.AccountConfig)...)
	for id, acct := range cfg.Webhook.Accounts {
		issues = append(issues, validateAccount("webhook.accounts."+id, &acct)...)
	}

	issues = append(issues, validatePathCollisions(&cfg.Webhook)...)

	return issues
}

func validateAccount(path string, acct *AccountConfig) []ValidationIssue {
	var issues []ValidationIssue

	validDMPolicies := []string{"open", "pairing", "allowlist"}
	if acct.DMPolicy != "" && !slices.Contains(validDMPolicies, acct.DMPolicy) {
		issues = append(issues, ValidationIssue{
			Path:    path + ".dmPolicy",
			Message: fmt.Sprintf("must be one of %v, got %q", validDMPolicies, acct.DMPolicy),
		})
	}

	validGroupPolicies := []string{"open", "allowlist"}
	if acct.GroupPolicy != "" && !slices.Contains(validGroupPolicies, acct.GroupPolicy) {
		issues = append(issues, ValidationIssue{
			Path:    path + ".groupPolicy",
			Message: fmt.Sprintf("must be one of %v, got %q", validGroupPolicies, acct.GroupPolicy),
		})
	}

	if acct.WebhookPath != "" && !strings.HasPrefix(acct.WebhookPath, "/") {
		issues = append(issues, ValidationIssue{
			Path:    path + ".webhookPath",
			Message: fmt.Sprintf("must start with /, got %q", acct.WebhookPath),
		})
	}

	return issues
}

// validatePathCollisions rejects two enabled accounts sharing a webhook path.
// Routes are keyed by path, so a collision would shadow one account.
func validatePathCollisions(w *WebhookConfig) []ValidationIssue {
	var issues []ValidationIssue
	seen := map[string]string{} // path → config path of first claimant

	claim := func(cfgPath string, acct *AccountConfig) {
		if acct.Enabled != nil && !*acct.Enabled {
			return
		}
		p := strings.TrimSpace(acct.WebhookPath)
		if p == "" {
			return
		}
		if first, ok := seen[p]; ok {
			issues = append(issues, ValidationIssue{
				Path:    cfgPath + ".webhookPath",
				Message: fmt.Sprintf("path %q already used by %s", p, first),
			})
			return
		}
		seen[p] = cfgPath
	}

	// The inline block only backs the default account when no explicit
	// "default" account block exists.
	if _, ok := w.Accounts["default"]; !ok {
		claim("webhook", &w.AccountConfig)
	}
	for id, acct := range w.Accounts {
		claim("webhook.accounts."+id, &acct)
	}

	return issues
}
