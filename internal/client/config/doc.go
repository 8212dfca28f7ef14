// Package config loads runtime configuration for the otpnotes CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. NOTES_* environment variables.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   API base URL (default http://localhost:5000/api)
//	-d string   session database file (default session.db)
//	-t int      request timeout in seconds (default 0, disabled)
//	-l string   log level (default info)
//
// Environment
//
//	NOTES_API_BASE, NOTES_SESSION_DB, NOTES_REQUEST_TIMEOUT ("5s"), NOTES_LOG_LEVEL
//
// # JSON schema
//
//	{
//	  "api_base_url": "https://notes.example.com/api",
//	  "session_db_path": "/var/lib/otpnotes/session.db",
//	  "request_timeout": "10s",
//	  "log_level": "debug"
//	}
package config
