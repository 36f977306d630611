// Package oauth completes the browser login: the backend redirects to the
// client's callback URL with either a credential or an error, and Handler
// turns that redirect into a signed-in session or a return to login.
package oauth

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/taskflow/internal/client/session"
	"github.com/dmitrijs2005/taskflow/internal/client/token"
	"github.com/dmitrijs2005/taskflow/internal/logging"
)

// Query parameters set by the backend on the redirect.
const (
	ParamToken = "token"
	ParamError = "error"
)

// ErrAlreadyHandled is returned by every Handle call after the first.
var ErrAlreadyHandled = errors.New("oauth redirect already handled")

type Phase int

const (
	Awaiting Phase = iota
	Succeeded
	Failed
	Aborted
)

func (p Phase) String() string {
	switch p {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Aborted:
		return "aborted"
	default:
		return "awaiting"
	}
}

// Outcome is the terminal state of one redirect.
type Outcome struct {
	Phase  Phase
	UserID int64
	// Reason is the error shown to the user on Failed.
	Reason string
	Route  session.Route
}

// SessionLogin is the part of the session store the handler needs.
type SessionLogin interface {
	Login(ctx context.Context, credential string, userID int64) error
}

// Notifier shows a message to the user.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}

type Option func(*Handler)

func WithLogger(l logging.Logger) Option { return func(h *Handler) { h.logger = l } }

// Handler processes exactly one redirect.
type Handler struct {
	login  SessionLogin
	nav    session.Navigator
	notify Notifier
	logger logging.Logger

	mu      sync.Mutex
	handled bool
	outcome Outcome
}

func NewHandler(login SessionLogin, nav session.Navigator, notify Notifier, opts ...Option) *Handler {
	h := &Handler{login: login, nav: nav, notify: notify, logger: logging.Nop()}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Handle evaluates the redirect URL u. Only the first call has any effect;
// later calls return the first outcome with ErrAlreadyHandled.
func (h *Handler) Handle(ctx context.Context, u *url.URL) (Outcome, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.handled {
		return h.outcome, ErrAlreadyHandled
	}
	h.handled = true
	h.outcome = h.evaluate(ctx, u.Query())

	h.logger.Info(ctx, "oauth redirect handled", "phase", h.outcome.Phase.String(), "route", string(h.outcome.Route))
	if h.outcome.Phase == Failed {
		h.notify.Notify(ctx, "Login failed: "+h.outcome.Reason)
	}
	h.nav.Navigate(ctx, h.outcome.Route)
	return h.outcome, nil
}

// Outcome returns the result of the first Handle call, or Awaiting.
func (h *Handler) Outcome() Outcome {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.outcome
}

func (h *Handler) evaluate(ctx context.Context, q url.Values) Outcome {
	if cred := q.Get(ParamToken); cred != "" {
		claims, err := token.Decode(cred)
		if err != nil {
			h.logger.Warn(ctx, "oauth credential rejected", "error", err)
			return Outcome{Phase: Failed, Reason: "the credential could not be read", Route: session.RouteLogin}
		}
		if err := h.login.Login(ctx, cred, claims.Subject); err != nil {
			h.logger.Error(ctx, "storing oauth session failed", "error", err)
			return Outcome{Phase: Failed, Reason: "the session could not be saved", Route: session.RouteLogin}
		}
		return Outcome{Phase: Succeeded, UserID: claims.Subject, Route: session.RouteTasks}
	}

	if reason := q.Get(ParamError); reason != "" {
		return Outcome{Phase: Failed, Reason: reason, Route: session.RouteLogin}
	}

	return Outcome{Phase: Aborted, Route: session.RouteLogin}
}
