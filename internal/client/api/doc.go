// Package api is the typed client of the taskflow backend REST API.
//
// Every endpoint except the outbox trigger answers with the envelope
//
//	{"success": true, "data": ..., "error": {"code": "...", "message": "..."}}
//
// Client unwraps it and returns the data, or a *NetworkFailure carrying the
// HTTP status and the structured error. NetworkFailure matches
// client.ErrUnauthorized for 401/403 and client.ErrUnavailable for transport
// errors and gateway statuses.
//
// Requests are never retried.
package api
