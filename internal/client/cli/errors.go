package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskflow/internal/client/api"
	"github.com/dmitrijs2005/taskflow/internal/client/client"
	"github.com/dmitrijs2005/taskflow/internal/client/models"
	"github.com/dmitrijs2005/taskflow/internal/client/query"
	"github.com/dmitrijs2005/taskflow/internal/client/session"
	"github.com/dmitrijs2005/taskflow/internal/client/token"
)

var (
	ErrMoveNotOffered = errors.New("status change not offered")
	ErrCancelled      = errors.New("cancelled")
	ErrNeedsInput     = errors.New("background command needs input")
)

// reportedError marks an error whose message was already shown.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported reports whether err was already shown to the user.
func Reported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// report shows err to the user and applies its side effects: an
// unauthorized response ends the session, an unreachable backend switches
// to offline mode.
func (a *App) report(ctx context.Context, err error) error {
	if err == nil || Reported(err) {
		return err
	}

	var ve *models.ValidationError
	failure, isFailure := api.AsFailure(err)

	switch {
	case errors.As(err, &ve):
		a.println("Please fix the following:")
		for _, p := range ve.Problems {
			a.printf("  - %s\n", p)
		}
	case errors.Is(err, query.ErrActionInFlight):
		a.println("That action is already running; wait for it to finish.")
	case errors.Is(err, session.ErrNotAuthenticated):
		a.println("You are not signed in.")
	case errors.Is(err, token.ErrDecode):
		a.println("The credential could not be read.")
	case errors.Is(err, client.ErrUnauthorized):
		a.println("Your session is no longer accepted by the server. Please sign in again.")
		if lerr := a.auth.Logout(ctx); lerr != nil {
			a.logger.Error(ctx, "logout after 401 failed", "error", lerr)
		}
		a.Navigate(ctx, session.RouteLogin)
	case isFailure:
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		a.printf("Error: %s\n", failure.UserMessage())
	case errors.Is(err, ErrCancelled):
		a.println("Cancelled.")
	case errors.Is(err, ErrNeedsInput):
		a.println("This command asks questions; run it without '&' or pass the answers as flags (--title, --yes).")
	default:
		a.printf("Error: %v\n", err)
	}

	a.logger.Debug(ctx, "command failed", "error", err)
	return &reportedError{err: err}
}
