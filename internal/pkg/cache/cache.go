// Package cache provides a small keyed string cache used for the active
// checkout working state (the cart snapshot cleared after confirmation).
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is the port; Redis backs it in production, Memory in tests.
type Cache interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Get returns "" with a nil error when the key is absent or expired.
	Get(ctx context.Context, key string) (string, error)

	Delete(ctx context.Context, key string) error

	GenerateKey(operation, key string) string
}

func generateKey(serviceName, operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", serviceName, operation, key)
}
