// Package cli is the interactive otpnotes client.
//
// App wires configuration, the REST client, the session store and the
// services, then hands control to a line-oriented REPL. Signed out, the REPL
// offers signin and signup, both of which run the emailed-code flow. Signed
// in, it shows the notes dashboard: list, add, delete, whoami and signout.
//
// A stored session opens the dashboard directly on start.
package cli
