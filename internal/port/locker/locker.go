// Package locker defines the port for per-mapping mutual exclusion.
package locker

import "context"

// Locker serializes sync passes per mapping. TryAcquire returns ok=false
// without blocking when another holder owns the key; release must be called
// on every exit path of a successful acquire.
type Locker interface {
	TryAcquire(ctx context.Context, key string) (release func(), ok bool, err error)
}
