package providers

import (
	"context"
	"time"
)

// CacheProvider defines the interface for shared counters kept in a cache
type CacheProvider interface {
	// Increment atomically adds one to a counter and returns the new value
	// and the time until the counter expires. The expiration is applied when
	// the counter has none.
	Increment(ctx context.Context, key string, expirationSeconds int) (int64, time.Duration, error)
}
