package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/IntegrationHub/internal/pkg/env"
)

// NewClient connects to the Redis-compatible cache configured by CACHE_HOST,
// CACHE_PORT and CACHE_PASSWORD. A failed ping is logged, not fatal.
func NewClient(ctx context.Context) *redis.Client {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       env.GetEnvInt("CACHE_DB", 0),
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Warnf("[Cache] Could not connect to cache at %s:%s: %v", host, port, err)
	} else {
		log.Infof("[Cache] Connected to cache: %s", pong)
	}
	return client
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out best-effort mutual exclusion via SET NX with a TTL.
type Locker struct {
	client redis.UniversalClient
	prefix string
}

// NewLocker creates a locker whose keys are prefixed with "lock:".
func NewLocker(client redis.UniversalClient) *Locker {
	return &Locker{client: client, prefix: "lock:"}
}

// Acquire tries to take the named lock for ttl. When acquired is false the
// lock is held elsewhere. The returned release func is safe to call once the
// lock has expired; it never removes a lock taken by someone else.
func (l *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), acquired bool, err error) {
	key := l.prefix + name
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}

	release = func() {
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			log.Warnf("[Cache] Failed to release lock %s: %v", name, err)
		}
	}
	return release, true, nil
}
