package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/otpnotes/internal/flagx"
	"github.com/dmitrijs2005/otpnotes/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations are
// timex.Duration so both "3s" and integer nanoseconds are accepted.
type JsonConfig struct {
	APIBaseURL     string          `json:"api_base_url"`
	SessionDBPath  string          `json:"session_db_path"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	LogLevel       string          `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config. Keys missing
// from the file leave cfg unchanged. Read or decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.SessionDBPath != "" {
		cfg.SessionDBPath = jc.SessionDBPath
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
