package query

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/taskflow/internal/client/metrics"
)

// ErrActionInFlight is returned by Begin while another action runs for the
// same entity. Callers treat it as a no-op.
var ErrActionInFlight = errors.New("action already in flight")

// Entity names the thing an action targets, e.g. {"task", 42}.
type Entity struct {
	Kind string
	ID   int64
}

func (e Entity) String() string { return fmt.Sprintf("%s #%d", e.Kind, e.ID) }

type Op string

const (
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpStatus  Op = "status"
	OpDelete  Op = "delete"
	OpTrigger Op = "trigger"
)

// InFlight records which entities have an action running.
type InFlight struct {
	mu      sync.Mutex
	busy    map[Entity]Op
	metrics *metrics.Metrics
}

func NewInFlight(m *metrics.Metrics) *InFlight {
	return &InFlight{busy: make(map[Entity]Op), metrics: m}
}

// Begin marks e busy with op. The returned release must be called when the
// action ends, whether it failed or not; calling it twice is harmless.
func (f *InFlight) Begin(e Entity, op Op) (release func(), err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if running, ok := f.busy[e]; ok {
		f.metrics.ActionRejected(string(op))
		return nil, fmt.Errorf("%s %s: %w (%s running)", op, e, ErrActionInFlight, running)
	}
	f.busy[e] = op

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.busy, e)
			f.mu.Unlock()
		})
	}, nil
}

// Busy reports the action running for e, if any.
func (f *InFlight) Busy(e Entity) (Op, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op, ok := f.busy[e]
	return op, ok
}

// Mutate runs fn as op on e, then invalidates the keys returned by affected
// when fn succeeds. The entity is released on both outcomes.
func Mutate[T any](ctx context.Context, f *InFlight, c *Cache, e Entity, op Op,
	fn func(context.Context) (T, error), affected func(T) []Key,
) (T, error) {
	release, err := f.Begin(e, op)
	if err != nil {
		var zero T
		return zero, err
	}
	defer release()

	out, err := fn(ctx)
	if err != nil {
		return out, err
	}
	if affected != nil {
		c.Invalidate(affected(out)...)
	}
	return out, nil
}
