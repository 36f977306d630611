package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskflow/internal/client/config"
	"github.com/dmitrijs2005/taskflow/internal/client/metrics"
	"github.com/dmitrijs2005/taskflow/internal/client/query"
	"github.com/dmitrijs2005/taskflow/internal/client/services"
	"github.com/dmitrijs2005/taskflow/internal/client/session"
	"github.com/dmitrijs2005/taskflow/internal/logging"
)

type Mode string

const (
	ModeUnknown Mode = ""
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Deps is everything the command tree needs. Auth, Projects, Tasks, Outbox
// and Store are required.
type Deps struct {
	Config   *config.Config
	Auth     services.AuthService
	Projects services.ProjectService
	Tasks    services.TaskService
	Outbox   services.OutboxService
	Store    *session.Store
	Cache    *query.Cache
	InFlight *query.InFlight
	Metrics  *metrics.Metrics
	Logger   logging.Logger
	In       io.Reader
	Out      io.Writer
}

type App struct {
	config   *config.Config
	auth     services.AuthService
	projects services.ProjectService
	tasks    services.TaskService
	outbox   services.OutboxService
	store    *session.Store
	guard    *session.Guard
	cache    *query.Cache
	inflight *query.InFlight
	metrics  *metrics.Metrics
	logger   logging.Logger
	reader   *bufio.Reader

	// out is shared by commands running in the background from the shell.
	outMu sync.Mutex
	out   io.Writer

	mu    sync.Mutex
	mode  Mode
	route session.Route
}

func NewApp(d Deps) *App {
	a := &App{
		config:   d.Config,
		auth:     d.Auth,
		projects: d.Projects,
		tasks:    d.Tasks,
		outbox:   d.Outbox,
		store:    d.Store,
		cache:    d.Cache,
		inflight: d.InFlight,
		metrics:  d.Metrics,
		logger:   d.Logger,
		reader:   bufio.NewReader(d.In),
		out:      d.Out,
	}
	if a.config == nil {
		a.config = &config.Config{}
		a.config.LoadDefaults()
	}
	if a.cache == nil {
		a.cache = query.NewCache(query.Config{})
	}
	if a.inflight == nil {
		a.inflight = query.NewInFlight(a.metrics)
	}
	if a.logger == nil {
		a.logger = logging.Nop()
	}
	a.guard = session.NewGuard(a.store, a)
	return a
}

// input returns the terminal reader, unless ctx runs in the background.
func (a *App) input(ctx context.Context) (*bufio.Reader, error) {
	if inBackground(ctx) {
		return nil, ErrNeedsInput
	}
	return a.reader, nil
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

// write runs fn with exclusive access to the output.
func (a *App) write(fn func(w io.Writer)) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fn(a.out)
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
		a.printf("Switched to %s mode\n", mode)
	}
}

// Route is where the last navigation pointed.
func (a *App) Route() session.Route {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

var routeHints = map[session.Route]string{
	session.RouteLogin:    "Sign in with: taskflow login",
	session.RouteTasks:    "Continue with: taskflow projects list, then taskflow tasks list --project <id>",
	session.RouteProjects: "Continue with: taskflow projects list",
}

// Navigate implements session.Navigator. In a terminal, moving to a route
// means telling the user which command to run next.
func (a *App) Navigate(ctx context.Context, to session.Route) {
	a.mu.Lock()
	a.route = to
	a.mu.Unlock()

	a.logger.Debug(ctx, "navigate", "route", string(to))
	if hint, ok := routeHints[to]; ok {
		a.println(hint)
	}
}

// Notify implements oauth.Notifier.
func (a *App) Notify(_ context.Context, msg string) {
	a.println(msg)
}

// cachedNote tells the user that the listing under key came from a result
// fetched a while ago.
func (a *App) cachedNote(key query.Key) {
	st := a.cache.State(key)
	if st.Status != query.StatusSuccess || st.FetchedAt.IsZero() {
		return
	}
	if age := time.Since(st.FetchedAt); age >= time.Second {
		a.printf("(cached %s ago, use --refresh to reload)\n", age.Round(time.Second))
	}
}

// sessionChanged drops cached data whenever the session ends, whatever
// ended it.
func (a *App) sessionChanged(s session.Session) {
	a.logger.Debug(context.Background(), "session changed", "authenticated", s.Authenticated, "user_id", s.UserID)
	if !s.Authenticated {
		a.cache.Clear()
	}
}

// StartOnlineStatusWatcher pings the backend every interval until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.auth.Ping(pingCtx)
	cancel()

	if err != nil {
		a.logger.Debug(ctx, "ping failed", "error", err)
		if a.Mode() != ModeOffline {
			a.setMode(ModeOffline)
		}
		return
	}
	if a.Mode() != ModeOnline {
		a.setMode(ModeOnline)
	}
}
