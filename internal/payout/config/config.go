// Package config handles configuration for the payout processor CLI,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the payout processor.
//
// Fields:
//   - APIBaseURL: base URL of the Expenses API (e.g., "http://127.0.0.1:8080").
//   - TokenURL: OAuth2 token endpoint of the identity provider used for the
//     client-credentials grant.
//   - ClientID / ClientSecret: the application's credentials. When the
//     secret is empty, the CLI prompts for it on the terminal.
//   - Scope: scope requested with the client-credentials grant.
//   - JournalPath: path of the local SQLite payout journal.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	APIBaseURL     string
	TokenURL       string
	ClientID       string
	ClientSecret   string
	Scope          string
	JournalPath    string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible development defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.TokenURL = ""
	c.ClientID = "payout-processor"
	c.ClientSecret = ""
	c.Scope = ".default"
	c.JournalPath = "payouts.db"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
