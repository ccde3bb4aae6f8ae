package cache

import (
	"context"
	"net"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	redisstorage "github.com/gofiber/storage/redis"
	"github.com/redis/go-redis/v9"
)

// NewFiberStorage returns a fiber.Storage on the same server as client, using
// database 1 so limiter keys stay apart from locks and cached values.
// It returns nil when the server is unreachable; fiber middlewares then fall
// back to in-memory storage.
func NewFiberStorage(ctx context.Context, client *redis.Client) fiber.Storage {
	if client == nil {
		return nil
	}
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnf("[Cache] Cache unreachable, rate limiter uses in-memory storage: %v", err)
		return nil
	}

	host := "localhost"
	port := 6379
	if h, p, err := net.SplitHostPort(client.Options().Addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	return newRedisStorage(redisstorage.Config{
		Host:     host,
		Port:     port,
		Password: client.Options().Password,
		Database: 1,
		Reset:    false,
	})
}

// newRedisStorage converts the constructor's connection panic into a nil storage.
func newRedisStorage(cfg redisstorage.Config) (storage fiber.Storage) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("[Cache] Could not open limiter storage, using in-memory storage: %v", r)
			storage = nil
		}
	}()
	return redisstorage.New(cfg)
}
