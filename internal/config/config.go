package config

import "time"

// Config holds runtime settings for the gophdesk CLI.
type Config struct {
	// DatabasePath is the SQLite file of the persistent medium.
	DatabasePath string
	// SessionMaxAge bounds a session's lifetime; zero means the session
	// lasts until logout or client exit.
	SessionMaxAge time.Duration
	LogLevel      string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "data/gophdesk.db"
	c.SessionMaxAge = 0
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults, then the JSON file (if any), then
// flags. Later sources win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
