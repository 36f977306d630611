package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskflow/internal/client/query"
	"github.com/dmitrijs2005/taskflow/internal/client/session"
	"github.com/dmitrijs2005/taskflow/internal/client/token"
)

// AuthService covers sign-in, sign-out and backend liveness.
//
// Contract:
//   - AuthorizeURL: the identity provider URL that starts a browser login.
//   - LoginWithToken: sign in with a credential obtained out of band.
//   - Logout: forget the session and every cached result.
//   - Status: the current session and its expiry.
//   - Ping: check that the backend answers.
type AuthService interface {
	AuthorizeURL(ctx context.Context) (string, error)
	LoginWithToken(ctx context.Context, credential string) (int64, error)
	Logout(ctx context.Context) error
	Status(ctx context.Context) (SessionStatus, error)
	Ping(ctx context.Context) error
}

// SessionStatus describes the signed-in state for display.
type SessionStatus struct {
	Authenticated bool
	UserID        int64
	ExpiresAt     time.Time
}

type authService struct {
	oauth  OAuthBackend
	health HealthBackend
	store  *session.Store
	cache  *query.Cache
	now    func() time.Time
}

func NewAuthService(oauth OAuthBackend, health HealthBackend, store *session.Store, cache *query.Cache) AuthService {
	return &authService{oauth: oauth, health: health, store: store, cache: cache, now: time.Now}
}

func (a *authService) AuthorizeURL(ctx context.Context) (string, error) {
	u, err := a.oauth.AuthorizeURL(ctx)
	if err != nil {
		return "", fmt.Errorf("get authorize url: %w", err)
	}
	return u, nil
}

// LoginWithToken stores credential if it decodes and has not expired. It
// returns the user id taken from the credential.
func (a *authService) LoginWithToken(ctx context.Context, credential string) (int64, error) {
	claims, err := token.Decode(credential)
	if err != nil {
		return 0, err
	}
	if !claims.ValidAt(a.now()) {
		return 0, fmt.Errorf("credential expired at %s", claims.Expiry.Format(time.RFC3339))
	}
	if err := a.store.Login(ctx, credential, claims.Subject); err != nil {
		return 0, err
	}
	a.cache.Clear()
	return claims.Subject, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.store.Logout(ctx); err != nil {
		return err
	}
	a.cache.Clear()
	return nil
}

func (a *authService) Status(ctx context.Context) (SessionStatus, error) {
	snap, err := a.store.Validate(ctx)
	if err != nil {
		return SessionStatus{}, err
	}
	if !snap.Authenticated {
		return SessionStatus{}, nil
	}
	st := SessionStatus{Authenticated: true, UserID: snap.UserID}
	if claims, err := token.Decode(snap.Credential); err == nil {
		st.ExpiresAt = claims.Expiry
	}
	return st, nil
}

func (a *authService) Ping(ctx context.Context) error {
	h, err := a.health.Health(ctx)
	if err != nil {
		return err
	}
	if h.Status != "ok" && h.Status != "UP" {
		return fmt.Errorf("backend reports status %q", h.Status)
	}
	return nil
}
