package store

import "context"

/**
 * Store is the byte-oriented registry backing for process-lifetime
 * state (run summaries). Keys live under a prefix namespace.
 * Only in-memory implementations exist; nothing here survives a
 * process restart.
 */
type Store interface {
	Get(ctx context.Context, prefix, key string) ([]byte, error)
	Set(ctx context.Context, prefix, key string, value []byte) error
	/**
	 * Remove a prefix and key.
	 * Removing a key that does not exist is NOT an error.
	 */
	Remove(ctx context.Context, prefix, key string) error

	List(ctx context.Context, prefix string, iterator func(key string) bool) error
}
