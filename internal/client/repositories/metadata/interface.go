package metadata

import "context"

// Repository keeps string values under string keys. Keys missing from the
// store are absent from the GetMany result.
type Repository interface {
	GetMany(ctx context.Context, keys ...string) (map[string]string, error)
	SetMany(ctx context.Context, values map[string]string) error
	DeleteMany(ctx context.Context, keys ...string) error
}

var _ Repository = (*SQLiteRepository)(nil)
