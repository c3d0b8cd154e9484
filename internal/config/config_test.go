package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "loopback", cfg.Server.Bind)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
}

func TestLoadParsesWebhookBlock(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
webhook:
  name: Main
  webhookPath: /webhook/incoming
  callbackUrl: https://example.com/api/messages
  authToken: secret
  dmPolicy: allowlist
  allowFrom: [alice, bob]
  accounts:
    support:
      webhookPath: /webhook/support
      callbackUrl: https://example.com/api/support
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "Main", cfg.Webhook.Name)
	assert.Equal(t, "/webhook/incoming", cfg.Webhook.WebhookPath)
	assert.Equal(t, "secret", cfg.Webhook.AuthToken)
	assert.Equal(t, "allowlist", cfg.Webhook.DMPolicy)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Webhook.AllowFrom)

	support, ok := cfg.Webhook.Accounts["support"]
	require.True(t, ok)
	assert.Equal(t, "/webhook/support", support.WebhookPath)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "webhook: [not a map")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoadExpandsEnvInSecrets(t *testing.T) {
	t.Setenv("TEST_HB_TOKEN", "from-env")
	t.Setenv("TEST_HB_CB", "cb-secret")
	path := writeConfig(t, `
webhook:
  authToken: ${TEST_HB_TOKEN}
  callbackHeaders:
    Authorization: Bearer ${TEST_HB_CB}
  accounts:
    alt:
      authToken: ${TEST_HB_TOKEN}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Webhook.AuthToken)
	assert.Equal(t, "Bearer cb-secret", cfg.Webhook.CallbackHeaders["Authorization"])
	assert.Equal(t, "from-env", cfg.Webhook.Accounts["alt"].AuthToken)
}

func TestLoadUnsetEnvLeftAlone(t *testing.T) {
	path := writeConfig(t, `
webhook:
  authToken: ${DEFINITELY_NOT_SET_12345}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${DEFINITELY_NOT_SET_12345}", cfg.Webhook.AuthToken)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HOOKBRIDGE_PORT", "7777")
	t.Setenv("HOOKBRIDGE_LOG_LEVEL", "DEBUG")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRawAndSaveRaw(t *testing.T) {
	path := writeConfig(t, "webhook:\n  name: Main\n")

	raw, err := LoadRaw(path)
	require.NoError(t, err)

	p, err := ParseConfigPath("webhook.authToken")
	require.NoError(t, err)
	SetValueAtPath(raw, p, "tok")
	require.NoError(t, SaveRaw(path, raw))

	raw2, err := LoadRaw(path)
	require.NoError(t, err)
	val, ok := GetValueAtPath(raw2, p)
	require.True(t, ok)
	assert.Equal(t, "tok", val)

	assert.True(t, UnsetValueAtPath(raw2, p))
	_, ok = GetValueAtPath(raw2, p)
	assert.False(t, ok)
}

func TestParseConfigPathRejectsBlockedKeys(t *testing.T) {
	_, err := ParseConfigPath("webhook.__proto__.x")
	require.Error(t, err)

	_, err = ParseConfigPath("")
	require.Error(t, err)

	_, err = ParseConfigPath("webhook..name")
	require.Error(t, err)
}
