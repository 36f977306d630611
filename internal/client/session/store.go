// Package session owns the signed-in state of the client: the current
// credential, the user it belongs to, and whether the user is authenticated.
//
// A Store is created once per process and passed to whoever needs it (the
// route guard, the API client, the logout command). Every mutation writes
// durable storage before the in-memory state flips, under the same lock
// readers take, so a reader never sees a state that storage disagrees with.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskflow/internal/client/token"
	"github.com/dmitrijs2005/taskflow/internal/logging"
)

// Storage keys, shared by every Storage implementation.
const (
	KeyToken  = "jwt_token"
	KeyUserID = "user_id"
)

var (
	// ErrNotAuthenticated is returned by Require when no valid session exists.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrEmptyCredential is returned by Login when called without a credential.
	ErrEmptyCredential = errors.New("empty credential")
)

// Persisted is the serialized form kept in durable storage. Token and
// UserID are always written and erased together.
type Persisted struct {
	Token  string
	UserID string
}

// Storage is the durable side of the store.
//
// Load returns found=false when nothing is stored. Save and Erase must
// write or remove both entries atomically.
type Storage interface {
	Load(ctx context.Context) (p Persisted, found bool, err error)
	Save(ctx context.Context, p Persisted) error
	Erase(ctx context.Context) error
}

// Session is a consistent snapshot of the signed-in state.
// Authenticated is true exactly when Credential is non-empty, and UserID is
// zero whenever Authenticated is false.
type Session struct {
	Credential    string
	UserID        int64
	Authenticated bool
}

var anonymous = Session{}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger attaches a logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store holds the session state and mirrors it into Storage.
type Store struct {
	storage Storage
	now     func() time.Time
	logger  logging.Logger

	// pubMu orders state changes together with their notifications.
	pubMu sync.Mutex

	mu    sync.RWMutex
	state Session

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Session)
}

// NewStore returns an unauthenticated store backed by storage. Call Init to
// restore a previously persisted session.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		now:     time.Now,
		logger:  logging.Nop(),
		subs:    make(map[int]func(Session)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Init restores the session from storage. A stored credential that does not
// decode, or has expired, is erased and the store stays unauthenticated.
// The user id is always re-derived from the credential.
func (s *Store) Init(ctx context.Context) error {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	next, err := s.restore(ctx)
	s.state = next
	s.mu.Unlock()

	s.publish(next)
	return err
}

func (s *Store) restore(ctx context.Context) (Session, error) {
	p, found, err := s.storage.Load(ctx)
	if err != nil {
		return anonymous, fmt.Errorf("load session: %w", err)
	}
	if !found || p.Token == "" {
		return anonymous, nil
	}

	claims, err := token.Decode(p.Token)
	if err != nil || !claims.ValidAt(s.now()) {
		reason := "expired"
		if err != nil {
			reason = err.Error()
		}
		s.logger.Info(ctx, "discarding stored credential", "reason", reason)
		if err := s.storage.Erase(ctx); err != nil {
			return anonymous, fmt.Errorf("erase invalid session: %w", err)
		}
		return anonymous, nil
	}

	if p.UserID != strconv.FormatInt(claims.Subject, 10) {
		s.logger.Warn(ctx, "stored user id disagrees with credential subject", "stored", p.UserID, "subject", claims.Subject)
	}

	return Session{Credential: p.Token, UserID: claims.Subject, Authenticated: true}, nil
}

// Login persists credential and userID, then marks the store authenticated.
// If persisting fails the in-memory state is left untouched.
func (s *Store) Login(ctx context.Context, credential string, userID int64) error {
	if credential == "" {
		return ErrEmptyCredential
	}

	next := Session{Credential: credential, UserID: userID, Authenticated: true}

	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	err := s.storage.Save(ctx, Persisted{Token: credential, UserID: strconv.FormatInt(userID, 10)})
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save session: %w", err)
	}
	s.state = next
	s.mu.Unlock()

	s.logger.Info(ctx, "signed in", "user_id", userID)
	s.publish(next)
	return nil
}

// Logout erases storage and marks the store unauthenticated. It is safe to
// call when already signed out. If erasing fails the state is left as is.
func (s *Store) Logout(ctx context.Context) error {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	wasAuthenticated := s.state.Authenticated
	if err := s.storage.Erase(ctx); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("erase session: %w", err)
	}
	s.state = anonymous
	s.mu.Unlock()

	if wasAuthenticated {
		s.logger.Info(ctx, "signed out")
		s.publish(anonymous)
	}
	return nil
}

// Snapshot returns the current state without touching storage.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the credential to attach to outgoing requests.
func (s *Store) Token() (string, bool) {
	snap := s.Snapshot()
	return snap.Credential, snap.Authenticated
}

// Validate re-checks the current credential against the clock and signs
// out when it has expired since it was loaded.
func (s *Store) Validate(ctx context.Context) (Session, error) {
	snap := s.Snapshot()
	if !snap.Authenticated {
		return snap, nil
	}
	if token.Valid(snap.Credential, s.now()) {
		return snap, nil
	}

	s.logger.Info(ctx, "credential expired", "user_id", snap.UserID)
	if err := s.Logout(ctx); err != nil {
		return s.Snapshot(), err
	}
	return anonymous, nil
}

// Require admits the caller when a valid session exists, and returns
// ErrNotAuthenticated otherwise.
func (s *Store) Require(ctx context.Context) (Session, error) {
	snap, err := s.Validate(ctx)
	if err != nil {
		return snap, err
	}
	if !snap.Authenticated {
		return snap, ErrNotAuthenticated
	}
	return snap, nil
}

// Subscribe registers fn to be called with the new state after each change.
// Notifications arrive in the order the changes were made. fn must not call
// Init, Login or Logout. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish(state Session) {
	s.subMu.Lock()
	fns := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
