package domain

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations. Supports
// two-phase caching: local LRU for a single desk, Redis when several
// desks share a scoring service.
type Cache interface {
	// Get retrieves a value from cache.
	// Returns nil, nil if key not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, key string) error

	// GetAssessment retrieves a cached assessment by its ID.
	// Returns nil, nil on a miss.
	GetAssessment(ctx context.Context, id string) (*Assessment, error)

	// SetAssessment caches a completed assessment under its ID.
	SetAssessment(ctx context.Context, id string, a *Assessment, ttl time.Duration) error

	// IncrementCounter atomically increments a counter and returns the
	// new value. Used for the submission rate limit.
	IncrementCounter(ctx context.Context, key string, window time.Duration) (int64, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "memory" or "redis"
	Type string

	// Local LRU cache settings
	LocalMaxSize int
	LocalTTL     time.Duration

	// Redis settings
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Two-phase settings
	EnableTwoPhase bool // If true, check local first, then Redis
}
