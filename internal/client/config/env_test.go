package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("NOTES_API_BASE", "https://notes.example/api")
	t.Setenv("NOTES_SESSION_DB", "/tmp/s.db")
	t.Setenv("NOTES_REQUEST_TIMEOUT", "1500ms")
	t.Setenv("NOTES_LOG_LEVEL", "debug")

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NotPanics(t, func() { parseEnv(cfg) })

	want := &Config{
		APIBaseURL:     "https://notes.example/api",
		SessionDBPath:  "/tmp/s.db",
		RequestTimeout: 1500 * time.Millisecond,
		LogLevel:       "debug",
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestParseEnv_UnsetKeepsValues(t *testing.T) {
	t.Setenv("NOTES_LOG_LEVEL", "error")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "http://localhost:5000/api", cfg.APIBaseURL)
	assert.Equal(t, "session.db", cfg.SessionDBPath)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestParseEnv_BadDurationPanics(t *testing.T) {
	t.Setenv("NOTES_REQUEST_TIMEOUT", "soon")

	cfg := &Config{}
	assert.Panics(t, func() { parseEnv(cfg) })
}
