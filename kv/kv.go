package kv

import (
	"context"
	"time"
)

// KV is the narrow key-value contract the vector index, cache, and session
// store are built on. Implementations must make each individual operation
// safe for concurrent use; multi-operation invariants are the caller's
// problem.
type KV interface {
	// Get returns the value at key, or nil if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetEx sets the value with a time-to-live enforced by the store.
	SetEx(ctx context.Context, key string, ttl time.Duration, value []byte) error
	// Delete reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)

	HSet(ctx context.Context, key string, fields map[string]string) error
	// HGetAll returns an empty map when the key does not exist.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)

	Exists(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context, pattern string) ([]string, error)

	Close() error
}
