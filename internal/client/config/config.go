// Package config handles configuration for the scanonce client,
// including defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings for the scanonce client.
//
// Fields:
//   - ServerURL: base URL of the backend HTTP API.
//   - DatabasePath: path to the local SQLite file holding the saved session.
type Config struct {
	ServerURL    string
	DatabasePath string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabasePath = "scanonce.db"
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
