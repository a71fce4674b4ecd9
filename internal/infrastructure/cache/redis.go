package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"skill-staffing/internal/config"
	"skill-staffing/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

var ErrUnavailable = errors.New("redis unavailable")

// Redis wraps a go-redis client. When the server cannot be reached at
// startup the wrapper degrades to a no-op: writes succeed silently and reads
// return nothing.
type Redis struct {
	client *redis.Client
	logger *logger.Logger

	warnedUnavailable atomic.Bool
}

func NewRedis(cfg config.RedisConfig, log *logger.Logger) *Redis {
	log = logger.OrNop(log)
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, bypassing", "addr", cfg.Addr(), "error", err)
		_ = client.Close()
		return &Redis{logger: log}
	}

	return &Redis{client: client, logger: log}
}

// NewRedisWithClient wraps an existing client without probing it.
func NewRedisWithClient(client *redis.Client, log *logger.Logger) *Redis {
	return &Redis{client: client, logger: logger.OrNop(log)}
}

func (r *Redis) Available() bool {
	return r != nil && r.client != nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn("redis command failed", "error", err)
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if !r.Available() {
		return ErrUnavailable
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if !r.Available() {
		return nil
	}
	return r.client.Close()
}

// PushCapped prepends value to the list at key, keeps at most max entries
// and refreshes the key's ttl.
func (r *Redis) PushCapped(ctx context.Context, key string, value []byte, max int, ttl time.Duration) error {
	if !r.Available() {
		return nil
	}
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, value)
	if max > 0 {
		pipe.LTrim(ctx, key, 0, int64(max-1))
	}
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

// Range returns up to limit entries from the head of the list at key.
func (r *Redis) Range(ctx context.Context, key string, limit int) ([][]byte, error) {
	if !r.Available() {
		return nil, nil
	}
	if limit <= 0 {
		return nil, nil
	}
	vals, err := r.client.LRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.warnUnavailableOnce(err)
		return nil, err
	}
	out := make([][]byte, 0, len(vals))
	for _, v := range vals {
		out = append(out, []byte(v))
	}
	return out, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if !r.Available() {
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}
