// Package common contains shared constants and helpers used across
// otpnotes components.
package common

const (
	// AuthorizationHeaderName carries the session token on outbound note requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the token inside the Authorization header.
	BearerPrefix = "Bearer "

	// RequestIDHeaderName tags every outbound request for backend log correlation.
	RequestIDHeaderName = "X-Request-ID"
)
