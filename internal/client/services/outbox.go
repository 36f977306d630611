package services

import (
	"context"

	"github.com/dmitrijs2005/taskflow/internal/client/models"
	"github.com/dmitrijs2005/taskflow/internal/client/query"
)

type OutboxService interface {
	List(ctx context.Context, f models.OutboxFilter) ([]models.OutboxEntry, error)
	Get(ctx context.Context, entryID int64) (models.OutboxEntry, error)
	Trigger(ctx context.Context) (string, error)
}

var outboxEntity = query.Entity{Kind: "outbox"}

type outboxService struct {
	backend  OutboxBackend
	cache    *query.Cache
	inflight *query.InFlight
}

func NewOutboxService(backend OutboxBackend, cache *query.Cache, inflight *query.InFlight) OutboxService {
	return &outboxService{backend: backend, cache: cache, inflight: inflight}
}

func (s *outboxService) List(ctx context.Context, f models.OutboxFilter) ([]models.OutboxEntry, error) {
	return query.Get(ctx, s.cache, query.OutboxKey(string(f.Status), f.TaskID), func(ctx context.Context) ([]models.OutboxEntry, error) {
		return s.backend.List(ctx, f)
	})
}

func (s *outboxService) Get(ctx context.Context, entryID int64) (models.OutboxEntry, error) {
	return query.Get(ctx, s.cache, query.OutboxEntryKey(entryID), func(ctx context.Context) (models.OutboxEntry, error) {
		return s.backend.Get(ctx, entryID)
	})
}

// Trigger runs one worker pass. Outbox entries and task sync snapshots may
// all have changed afterwards.
func (s *outboxService) Trigger(ctx context.Context) (string, error) {
	return query.Mutate(ctx, s.inflight, s.cache, outboxEntity, query.OpTrigger, s.backend.TriggerWorker,
		func(string) []query.Key {
			return []query.Key{query.OutboxPrefix(), query.NewKey("outbox-entry"), query.NewKey("task-sync")}
		},
	)
}
