// Package client holds the pieces of the taskflow client that every other
// client package agrees on: the sentinel errors callers match with errors.Is,
// and the bootstrap of the local SQLite database.
//
// ErrUnavailable means the backend could not be reached or answered with a
// gateway error. ErrUnauthorized means the backend rejected the credential.
//
// InitDatabase creates the database directory if needed, opens the database
// with the pure-Go modernc driver and applies the embedded goose migrations.
// RunMigrations is idempotent.
package client
