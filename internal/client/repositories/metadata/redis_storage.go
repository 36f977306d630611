package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/taskflow/internal/client/session"
)

const (
	defaultRedisTimeout = 5 * time.Second
	defaultRedisPrefix  = "taskflow:"
)

// RedisConfig captures the settings for the Redis session backend.
type RedisConfig struct {
	Addr    string
	DB      int
	Prefix  string
	Timeout time.Duration
}

// ConnectRedis opens a client and checks it with a ping.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, DB: cfg.DB})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// RedisStorage persists the session pair under two prefixed keys, written
// in one MULTI/EXEC block.
type RedisStorage struct {
	client redis.Cmdable
	prefix string
}

var _ session.Storage = (*RedisStorage)(nil)

func NewRedisStorage(client redis.Cmdable, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStorage{client: client, prefix: prefix}
}

func (s *RedisStorage) key(k string) string { return s.prefix + k }

func (s *RedisStorage) Load(ctx context.Context) (session.Persisted, bool, error) {
	vals, err := s.client.MGet(ctx, s.key(session.KeyToken), s.key(session.KeyUserID)).Result()
	if err != nil {
		return session.Persisted{}, false, fmt.Errorf("redis load session: %w", err)
	}

	tok, ok := vals[0].(string)
	if !ok || tok == "" {
		return session.Persisted{}, false, nil
	}
	uid, _ := vals[1].(string)
	return session.Persisted{Token: tok, UserID: uid}, true, nil
}

func (s *RedisStorage) Save(ctx context.Context, p session.Persisted) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(session.KeyToken), p.Token, 0)
		pipe.Set(ctx, s.key(session.KeyUserID), p.UserID, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

func (s *RedisStorage) Erase(ctx context.Context) error {
	err := s.client.Del(ctx, s.key(session.KeyToken), s.key(session.KeyUserID)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis erase session: %w", err)
	}
	return nil
}
