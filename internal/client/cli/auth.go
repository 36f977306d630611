package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskflow/internal/client/oauth"
	"github.com/dmitrijs2005/taskflow/internal/client/services"
	"github.com/dmitrijs2005/taskflow/internal/client/session"
)

var errLoginAborted = errors.New("login aborted")

// sessionLogin lets the redirect handler sign in through AuthService, so a
// browser login gets the same expiry check and cache reset as --token.
type sessionLogin struct{ auth services.AuthService }

func (s sessionLogin) Login(ctx context.Context, credential string, _ int64) error {
	_, err := s.auth.LoginWithToken(ctx, credential)
	return err
}

// callbackServer is a test seam.
type callbackServer interface {
	Start() (string, error)
	Wait(ctx context.Context) (oauth.Outcome, error)
	Shutdown(ctx context.Context) error
}

var newCallbackServer = func(addr string, h *oauth.Handler) callbackServer {
	return oauth.NewCallbackServer(addr, h)
}

// Login signs in. With a credential it is stored directly; otherwise the
// browser flow runs: the user opens the identity provider URL and the
// backend redirects back to the local callback server.
func (a *App) Login(ctx context.Context, credential string, wait time.Duration) error {
	if credential != "" {
		uid, err := a.auth.LoginWithToken(ctx, credential)
		if err != nil {
			return err
		}
		a.printf("Signed in as user %d.\n", uid)
		a.Navigate(ctx, session.RouteTasks)
		return nil
	}

	authURL, err := a.auth.AuthorizeURL(ctx)
	if err != nil {
		return err
	}

	h := oauth.NewHandler(sessionLogin{auth: a.auth}, a, a, oauth.WithLogger(a.logger))
	srv := newCallbackServer(a.config.CallbackAddr, h)
	callbackURL, err := srv.Start()
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.printf("Open this URL in your browser to sign in:\n  %s\n", authURL)
	a.printf("Waiting for the redirect on %s ...\n", callbackURL)

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	out, err := srv.Wait(waitCtx)
	if err != nil {
		return fmt.Errorf("waiting for login: %w", err)
	}

	switch out.Phase {
	case oauth.Succeeded:
		a.printf("Signed in as user %d.\n", out.UserID)
		return nil
	case oauth.Failed:
		// the handler already told the user why
		return &reportedError{err: errors.New(out.Reason)}
	default:
		return &reportedError{err: errLoginAborted}
	}
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.println("Signed out.")
	a.Navigate(ctx, session.RouteLogin)
	return nil
}

// Status prints the session, backend reachability and cache counters.
func (a *App) Status(ctx context.Context) error {
	st, err := a.auth.Status(ctx)
	if err != nil {
		return err
	}
	if st.Authenticated {
		a.printf("Signed in as user %d", st.UserID)
		if !st.ExpiresAt.IsZero() {
			a.printf(" until %s", st.ExpiresAt.Local().Format(time.RFC1123))
		}
		a.println(".")
	} else {
		a.println("Not signed in.")
	}

	if err := a.auth.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		a.printf("Backend %s is unreachable: %v\n", a.config.ServerBaseURL, err)
	} else {
		a.setMode(ModeOnline)
		a.printf("Backend %s is up.\n", a.config.ServerBaseURL)
	}

	s := a.cache.Stats()
	a.printf("Cache: %d entries, %d hits, %d misses, %d stale discarded\n", s.Size, s.Hits, s.Misses, s.Stale)
	return nil
}
