// Package throttle counts password attempts per share link and locks a
// link's password gate once too many pile up without a success.
package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xxxsen/docshare/internal/config"
)

type Limiter interface {
	// Attempt reserves one attempt for key and reports whether it is allowed.
	// The reservation is atomic, so concurrent callers can never be allowed
	// more than threshold attempts per window between two Resets.
	Attempt(ctx context.Context, key string) (bool, error)
	// Reset forgets all attempts for key.
	Reset(ctx context.Context, key string) error
}

// New builds the limiter selected by cfg. A threshold <= 0 disables lockout.
func New(cfg config.ThrottleConfig, threshold int, window time.Duration) (Limiter, error) {
	if threshold <= 0 || window <= 0 {
		return Noop{}, nil
	}
	switch cfg.Type {
	case "", "memory":
		return NewMemory(cfg.Size, threshold, window), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedis(client, threshold, window), nil
	default:
		return nil, fmt.Errorf("unsupported throttle type: %s", cfg.Type)
	}
}

type Noop struct{}

func (Noop) Attempt(context.Context, string) (bool, error) { return true, nil }
func (Noop) Reset(context.Context, string) error            { return nil }
