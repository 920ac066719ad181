package postgres

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Locker implements the per-mapping sync lock using postgres session
// advisory locks. The lock is held on a dedicated connection for the
// duration of one sync pass, so it serializes concurrent triggers across
// all backend instances sharing the database.
type Locker struct {
	pool *pgxpool.Pool
}

// NewLocker creates an advisory-lock based Locker.
func NewLocker(pool *pgxpool.Pool) *Locker {
	return &Locker{pool: pool}
}

// lockClass namespaces TaskBridge advisory locks away from other users of
// the same database. It occupies the high bits of the 64-bit lock key.
const lockClass = uint64(0x7461736b) // "task"

// TryAcquire attempts the advisory lock for key without blocking. On
// success it returns a release func that must run on every exit path.
func (l *Locker) TryAcquire(ctx context.Context, key string) (release func(), ok bool, err error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire conn for lock: %w", err)
	}

	var locked bool
	keyHash := hashKey(key)
	err = conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, keyHash).Scan(&locked)
	if err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !locked {
		conn.Release()
		return nil, false, nil
	}

	release = func() {
		// Unlock on the same session; a background context so release still
		// works when the pass context is already canceled.
		if _, err := conn.Exec(context.Background(),
			`SELECT pg_advisory_unlock($1)`, keyHash); err != nil {
			slog.Error("advisory unlock failed", "key", key, "error", err)
		}
		conn.Release()
	}
	return release, true, nil
}

// hashKey folds a mapping ID into the 64-bit advisory lock keyspace, with
// lockClass mixed into the high bits.
func hashKey(key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return int64(lockClass<<32 ^ h.Sum64())
}
