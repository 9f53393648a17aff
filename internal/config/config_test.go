package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 0.3, cfg.Citations.RelevanceThreshold)
	assert.Equal(t, 10*time.Minute, cfg.GetPendingTTL())
	assert.False(t, cfg.Integrations.CRM.Enabled)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dealdesk.yaml")
	yaml := `
citations:
  relevance_threshold: 0.55
confirm:
  pending_ttl: 5m
integrations:
  crm:
    enabled: true
    base_url: https://crm.internal.example
    timeout: 20s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.55, cfg.Citations.RelevanceThreshold)
	assert.Equal(t, 5*time.Minute, cfg.GetPendingTTL())
	assert.True(t, cfg.Integrations.CRM.Enabled)
	assert.Equal(t, 20*time.Second, cfg.GetCRMTimeout())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DEALDESK_DB", "/tmp/override.db")
	t.Setenv("DEALDESK_CRM_URL", "https://crm.example")
	t.Setenv("DEALDESK_CRM_TOKEN", "tok-123")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "https://crm.example", cfg.Integrations.CRM.BaseURL)
	assert.True(t, cfg.Integrations.CRM.Enabled)
	assert.Equal(t, "tok-123", cfg.Integrations.CRM.Token)
}

func TestCRMTimeoutClamped(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Integrations.CRM.Timeout = "2s"
	assert.Equal(t, 10*time.Second, cfg.GetCRMTimeout())

	cfg.Integrations.CRM.Timeout = "5m"
	assert.Equal(t, 30*time.Second, cfg.GetCRMTimeout())

	cfg.Integrations.CRM.Timeout = "garbage"
	assert.Equal(t, 15*time.Second, cfg.GetCRMTimeout())
}
