package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/taskflow/internal/buildinfo"
	"github.com/dmitrijs2005/taskflow/internal/client/api"
	"github.com/dmitrijs2005/taskflow/internal/client/cli"
	"github.com/dmitrijs2005/taskflow/internal/client/client"
	"github.com/dmitrijs2005/taskflow/internal/client/config"
	"github.com/dmitrijs2005/taskflow/internal/client/metrics"
	"github.com/dmitrijs2005/taskflow/internal/client/query"
	"github.com/dmitrijs2005/taskflow/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskflow/internal/client/services"
	"github.com/dmitrijs2005/taskflow/internal/client/session"
	"github.com/dmitrijs2005/taskflow/internal/flagx"
	"github.com/dmitrijs2005/taskflow/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	cfg, err := config.Load(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: logging.Format(cfg.LogFormat)})

	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Error(ctx, "opening credential storage failed", "backend", cfg.StorageBackend, "error", err)
		return 1
	}
	defer closeStorage()

	store := session.NewStore(storage, session.WithLogger(logger))
	if err := store.Init(ctx); err != nil {
		logger.Error(ctx, "restoring session failed", "error", err)
		return 1
	}

	m := metrics.New()
	backend, err := api.New(cfg.ServerBaseURL, store,
		api.WithTimeout(cfg.RequestTimeout), api.WithLogger(logger), api.WithMetrics(m))
	if err != nil {
		logger.Error(ctx, "invalid backend address", "url", cfg.ServerBaseURL, "error", err)
		return 1
	}

	cache := query.NewCache(query.Config{TTL: cfg.CacheTTL, MaxSize: cfg.CacheMaxSize}, query.WithMetrics(m))
	inflight := query.NewInFlight(m)

	app := cli.NewApp(cli.Deps{
		Config:   cfg,
		Auth:     services.NewAuthService(backend.OAuth(), backend, store, cache),
		Projects: services.NewProjectService(backend.Projects(), cache, inflight),
		Tasks:    services.NewTaskService(backend.Tasks(), store, cache, inflight),
		Outbox:   services.NewOutboxService(backend.Outbox(), cache, inflight),
		Store:    store,
		Cache:    cache,
		InFlight: inflight,
		Metrics:  m,
		Logger:   logger,
		In:       os.Stdin,
		Out:      os.Stdout,
	})

	root := cli.NewRootCommand(app)
	root.Version = buildinfo.Version
	root.SetVersionTemplate(buildinfo.String())
	root.SetArgs(flagx.StripArgs(args, config.Flags))

	if err := root.ExecuteContext(ctx); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

// openStorage returns the durable session storage selected by cfg and a
// function that releases it.
func openStorage(ctx context.Context, cfg *config.Config) (session.Storage, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageRedis:
		rdb, err := metadata.ConnectRedis(ctx, metadata.RedisConfig{
			Addr:    cfg.RedisAddr,
			DB:      cfg.RedisDB,
			Timeout: cfg.RequestTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return metadata.NewRedisStorage(rdb, ""), closer(rdb), nil
	default:
		db, err := client.InitDatabase(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return metadata.NewSQLiteStorage(db), closer(db), nil
	}
}

func closer(c io.Closer) func() {
	return func() { _ = c.Close() }
}
