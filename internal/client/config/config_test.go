package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"otpnotes"}, args...)
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	want := Config{
		APIBaseURL:     "http://localhost:5000/api",
		SessionDBPath:  "session.db",
		RequestTimeout: 0,
		LogLevel:       "info",
	}
	assert.Empty(t, cmp.Diff(want, c))
}

func TestLoadConfig_DefaultsWithoutInput(t *testing.T) {
	withArgs(t)

	cfg := LoadConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:5000/api", cfg.APIBaseURL)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"api_base_url": "https://json.example/api",
		"session_db_path": "json.db",
		"request_timeout": "7s"
	}`), 0o600))

	t.Setenv("NOTES_API_BASE", "https://env.example/api")
	t.Setenv("NOTES_SESSION_DB", "env.db")
	t.Setenv("NOTES_LOG_LEVEL", "warn")
	withArgs(t, "-c", path, "-a", "https://flag.example/api")

	cfg := LoadConfig()

	want := &Config{
		APIBaseURL:     "https://flag.example/api", // flag beats json and env
		SessionDBPath:  "json.db",                  // json beats env
		RequestTimeout: 7 * time.Second,
		LogLevel:       "warn", // env only
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}
