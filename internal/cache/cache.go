// Package cache provides the result-cache contract used by the aggregation
// engine. Entries are opaque payloads with a time-to-live; expiry is checked
// on read, so no background sweep is needed.
package cache

import (
	"context"
	"time"
)

// Store is a TTL'd key/value cache. Put replaces any existing entry for the
// key atomically; readers never observe a partially written payload.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}
