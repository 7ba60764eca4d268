package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "visit-tracker:lock:"

// releaseScript deletes the lease only if it is still ours.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript resets the lease TTL only if it is still ours.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Redis holds per-key leases in Redis so several replicas can share them.
// A held lease is extended every ttl/3 until it is released.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
	retry  time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(cfg Config, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewRedisWithClient(client, cfg, logger), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, cfg Config, logger *zap.Logger) *Redis {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	retry := time.Duration(cfg.RetryMillis) * time.Millisecond
	if retry <= 0 {
		retry = 25 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, logger: logger, ttl: ttl, retry: retry}
}

// Lock implements Locker.
func (r *Redis) Lock(ctx context.Context, key string) (context.Context, func(), error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	if err := r.acquire(ctx, redisKey, token); err != nil {
		return nil, nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	held, cancel := context.WithCancelCause(ctx)
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.keepAlive(held, cancel, redisKey, token, stop)
	}()

	var once sync.Once
	return held, func() {
		once.Do(func() {
			close(stop)
			<-done
			cancel(nil)

			releaseCtx, releaseCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer releaseCancel()
			if err := releaseScript.Run(releaseCtx, r.client, []string{redisKey}, token).Err(); err != nil {
				r.logger.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
			}
		})
	}, nil
}

func (r *Redis) acquire(ctx context.Context, redisKey, token string) error {
	ticker := time.NewTicker(r.retry)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// keepAlive extends the lease until stop is closed. When the lease is taken
// over, or cannot be extended for a full ttl, held is cancelled with ErrLeaseLost.
func (r *Redis) keepAlive(held context.Context, cancel context.CancelCauseFunc, redisKey, token string, stop <-chan struct{}) {
	ticker := time.NewTicker(r.ttl / 3)
	defer ticker.Stop()

	extended := time.Now()
	for {
		select {
		case <-stop:
			return
		case <-held.Done():
			return
		case <-ticker.C:
		}

		ok, err := r.extend(redisKey, token)
		switch {
		case err == nil && ok:
			extended = time.Now()
			continue
		case err == nil:
			r.logger.Warn("Lock lease taken over", zap.String("key", redisKey))
		case time.Since(extended) < r.ttl:
			r.logger.Warn("Failed to extend lock lease", zap.String("key", redisKey), zap.Error(err))
			continue
		default:
			r.logger.Error("Lock lease expired", zap.String("key", redisKey), zap.Error(err))
		}
		cancel(ErrLeaseLost)
		return
	}
}

func (r *Redis) extend(redisKey, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.ttl/3)
	defer cancel()
	n, err := extendScript.Run(ctx, r.client, []string{redisKey}, token, r.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
