// Package config holds dealdesk's dispatch-core configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"dealdesk/internal/collab"
)

// Config holds all dispatch-core configuration.
type Config struct {
	// Storage settings
	Storage StorageConfig `yaml:"storage"`

	// Citation aggregation
	Citations CitationsConfig `yaml:"citations"`

	// Confirmation gate
	Confirm ConfirmConfig `yaml:"confirm"`

	// External collaborator integrations
	Integrations IntegrationsConfig `yaml:"integrations"`
}

// StorageConfig configures the local SQLite store.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// CitationsConfig configures the citation aggregator.
type CitationsConfig struct {
	// RelevanceThreshold drops sources scored below it. Sources with no
	// score are always kept.
	RelevanceThreshold float64 `yaml:"relevance_threshold"`
}

// ConfirmConfig configures the confirmation gate.
type ConfirmConfig struct {
	// PendingTTL is how long a confirmation prompt stays honorable.
	PendingTTL string `yaml:"pending_ttl"`
}

// IntegrationsConfig configures external collaborators.
type IntegrationsConfig struct {
	CRM CRMIntegration `yaml:"crm"`
}

// CRMIntegration configures the CRM webhook collaborator.
type CRMIntegration struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`

	// Token is never written back to disk; it arrives via DEALDESK_CRM_TOKEN.
	Token string `yaml:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DatabasePath: "data/dealdesk.db",
		},
		Citations: CitationsConfig{
			RelevanceThreshold: 0.3,
		},
		Confirm: ConfirmConfig{
			PendingTTL: "10m",
		},
		Integrations: IntegrationsConfig{
			CRM: CRMIntegration{
				Enabled: false,
				BaseURL: "http://localhost:8090",
				Timeout: "15s",
			},
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment variables override either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("DEALDESK_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
	if url := os.Getenv("DEALDESK_CRM_URL"); url != "" {
		c.Integrations.CRM.BaseURL = url
		c.Integrations.CRM.Enabled = true
	}
	if token := os.Getenv("DEALDESK_CRM_TOKEN"); token != "" {
		c.Integrations.CRM.Token = token
	}
}

// GetPendingTTL returns the confirmation TTL as a duration.
func (c *Config) GetPendingTTL() time.Duration {
	d, err := time.ParseDuration(c.Confirm.PendingTTL)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}

// GetCRMTimeout returns the CRM call timeout as a duration, clamped to
// the 10s-30s band collaborator calls must stay inside.
func (c *Config) GetCRMTimeout() time.Duration {
	d, err := time.ParseDuration(c.Integrations.CRM.Timeout)
	if err != nil {
		return collab.DefaultTimeout
	}
	return collab.ClampTimeout(d)
}
