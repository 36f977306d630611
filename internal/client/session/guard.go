package session

import (
	"context"
	"errors"
)

// Route is a client destination.
type Route string

const (
	RouteLogin    Route = "/login"
	RouteTasks    Route = "/tasks"
	RouteProjects Route = "/projects"
)

// Navigator moves the client to another route.
type Navigator interface {
	Navigate(ctx context.Context, to Route)
}

// Guard protects routes that need a signed-in user.
type Guard struct {
	store *Store
	nav   Navigator
}

func NewGuard(store *Store, nav Navigator) *Guard {
	return &Guard{store: store, nav: nav}
}

// Require returns the current session, or redirects to the login route and
// returns ErrNotAuthenticated.
func (g *Guard) Require(ctx context.Context) (Session, error) {
	snap, err := g.store.Require(ctx)
	if errors.Is(err, ErrNotAuthenticated) {
		g.nav.Navigate(ctx, RouteLogin)
	}
	return snap, err
}
