// Package db defines the narrow key-value store facade used by the
// embedding cache.
package db

import (
	"context"
	"time"
)

// Store combines the sub-interfaces the service consumes. Consumers should
// depend on the narrowest interface that serves them (ISP).
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides the key-value operations the embedding cache performs.
// Every write carries a TTL; there is no unbounded Set.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
