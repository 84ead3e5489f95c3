// Package cache provides an injected TTL cache for derived read models,
// keeping cache access explicit rather than ambient.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// Get unmarshals the cached value for key into out, reporting whether
	// the key was present. Decode failures are treated as misses.
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}
