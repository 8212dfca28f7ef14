// Package client contains the transport-side building blocks of the notes
// client.
//
// # Overview
//
//  1. The Client interface: the REST contract of the notes backend
//     (OTP send/verify, sign-in, sign-up, notes list/create/delete).
//  2. HTTPClient, the concrete JSON-over-HTTP implementation. Every request
//     carries an X-Request-ID; once a session is mounted, requests also carry
//     the bearer token.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the
//     SQLite file behind the session store, using embedded goose migrations.
//
// # Error Handling
//
// Failures fall in three buckets that callers tell apart with errors.Is and
// errors.As:
//
//   - ErrUnavailable: the request never produced a readable reply.
//   - ErrBadResponse: the reply body was not the expected JSON.
//   - *APIError: the backend replied with a non-2xx status. Message holds
//     the backend "message" field when there is one.
//
// No call is retried.
package client
