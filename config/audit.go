package config

import "fmt"

// AuditConfig controls the scheduling event trail. An empty Backend
// disables it.
type AuditConfig struct {
	// Backend is "jsonl" (rotated file at Path) or "sqlite" (the storage
	// database).
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	// Token guards GET /api/audit when set.
	Token string `json:"token"`
}

func (c *AuditConfig) SetDefaults() {
	if c.Backend != "jsonl" {
		return
	}
	if c.Path == "" {
		c.Path = "audit/events.jsonl"
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 5
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 30
	}
}

func (c AuditConfig) Validate() error {
	switch c.Backend {
	case "", "jsonl", "sqlite":
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("rotation limits must not be negative")
	}
	return nil
}
