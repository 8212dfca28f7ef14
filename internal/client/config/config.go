package config

import "time"

// Config holds runtime settings for the otpnotes CLI.
type Config struct {
	// APIBaseURL is the REST root, e.g. http://localhost:5000/api.
	APIBaseURL string `env:"NOTES_API_BASE"`
	// SessionDBPath is the SQLite file holding the stored session.
	SessionDBPath string `env:"NOTES_SESSION_DB"`
	// RequestTimeout bounds each backend call; zero disables it.
	RequestTimeout time.Duration `env:"NOTES_REQUEST_TIMEOUT"`
	LogLevel       string        `env:"NOTES_LOG_LEVEL"`
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5000/api"
	c.SessionDBPath = "session.db"
	c.RequestTimeout = 0
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults, then the environment, then an
// optional JSON file, then command-line flags. Later sources win. Malformed
// input in any layer panics.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
