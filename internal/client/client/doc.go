// Package client contains client-side building blocks for userbase.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     Register, Login, Me, ListUsers and Ping.
//  2. A concrete HTTP implementation (see HTTPClient) that speaks the
//     server's JSON envelope and maps status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the CLI,
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Failures are reported as *APIError values that match the sentinels
// ErrUnauthorized, ErrConflict, ErrNotFound, ErrBadRequest and ErrServer with
// errors.Is. Transport failures match ErrUnavailable.
package client
