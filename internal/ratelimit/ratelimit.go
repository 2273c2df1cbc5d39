package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"codeberg.org/lunos/server/internal/errors"
	"codeberg.org/lunos/server/internal/logger"
)

const storePrefix = "lunos_limiter"

// holds the counter store shared by every limited route
type Store struct {
	store  limiter.Store
	client *redis.Client
}

// creates a redis-backed store when redisURL is set, in-process otherwise
func NewStore(ctx context.Context, redisURL string) (*Store, error) {
	if redisURL == "" {
		return &Store{store: memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          storePrefix,
			CleanUpInterval: time.Minute,
		})}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   storePrefix,
		MaxRetry: 3,
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}

	logger.Info("connected to redis", "purpose", "rate limiting")

	return &Store{store: store, client: client}, nil
}

// closes the Redis connection, if any
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}

	return s.client.Close()
}

// returns a per-client-IP limiter for formatted rates like "20-M"
func (s *Store) Middleware(formatted string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", formatted, err)
	}

	return mgin.NewMiddleware(
		limiter.New(s.store, rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			errors.TooManyRequests(c, "too many attempts, try again later")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// a broken limiter must not lock everyone out
			logger.FromContext(c.Request.Context()).Warn("rate limiter unavailable", "error", err)
			c.Next()
		}),
	), nil
}
