package policies

import (
	"context"
	"errors"
)

var ErrLockNotAcquired = errors.New("policies: lock not acquired")

// Locker serializes work on a key across callers. Implementations may be
// process-local or distributed.
type Locker interface {
	// Lock blocks until the key is held or ctx is done. The returned release
	// must be called exactly once.
	Lock(ctx context.Context, key string) (release func(), err error)
}
