package redislocker

import (
	"context"
	"fmt"
	"time"

	"github.com/crowdescrow/escrowd/internal/core/ports"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	keyPrefix     = "escrowd:lock:"
	defaultTTL    = 30 * time.Second
	retryInterval = 50 * time.Millisecond
)

// releaseScript deletes the lock only if it is still owned by the caller.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type locker struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewLocker connects to the redis instance at url. Locks expire after ttl
// so that a crashed holder cannot block a subject forever.
func NewLocker(url string, ttl time.Duration) (ports.Locker, error) {
	if len(url) <= 0 {
		return nil, fmt.Errorf("missing redis url")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &locker{rdb, ttl}, nil
}

func (l *locker) Lock(ctx context.Context, key string) (func(), error) {
	key = keyPrefix + key
	token := uuid.New().String()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
			log.WithError(err).Warnf("failed to release lock %s", key)
		}
	}, nil
}

func (l *locker) Close() {
	if err := l.rdb.Close(); err != nil {
		log.WithError(err).Warn("failed to close redis client")
	}
}
