package repositories

import (
	"context"
	"time"
)

// DistributedLocker hands out short-lived named locks shared across processes.
type DistributedLocker interface {
	// TryLock acquires key for ttl and returns the token that identifies this grant.
	// It returns false without error when someone else holds it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, acquired bool, err error)

	// Unlock releases key only if it is still held under token.
	Unlock(ctx context.Context, key, token string) error
}
