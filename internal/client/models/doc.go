// Package models defines the client-side data shapes exchanged with the
// notes backend and kept in the local session store.
package models
