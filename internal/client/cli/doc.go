// Package cli provides the taskflow command-line client.
//
// It exposes the backend's projects, tasks and calendar outbox as cobra
// commands, plus an interactive shell that runs the same commands and
// watches backend reachability in the background.
//
// Key features:
//   - Login through the browser (local OAuth callback) or with a token
//   - Projects: list, show, create
//   - Tasks: list with filters, show, create, update, move, delete, history,
//     calendar sync status
//   - Outbox: list with per-status counts, show, trigger a worker pass
//   - Client metrics in the Prometheus text format
//
// Commands that need a session go through the session guard; a 401 from the
// backend signs the user out.
package cli
