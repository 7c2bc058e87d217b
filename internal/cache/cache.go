package cache

import (
	"context"
	"time"
)

// Cache is the minimal contract both backends implement. It stores
// opaque values; callers use UnmarshalCacheValue to recover types.
type Cache interface {
	// Set stores a value with a TTL. A zero TTL uses the backend default.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)

	// Get retrieves a value, reporting whether it was present.
	Get(ctx context.Context, key string) (interface{}, bool)

	// Delete removes a key.
	Delete(ctx context.Context, key string)

	// DeleteByPrefix removes every key with the given prefix.
	DeleteByPrefix(ctx context.Context, prefix string)
}
