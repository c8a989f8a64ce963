package cart

import "context"

// keyPrefix namespaces snapshots so each session token gets an isolated cart.
const keyPrefix = "cart:"

// Store persists cart snapshots keyed by session token. The snapshot is the
// system of record between operations: callers re-read before every mutation
// and write the full list back after, last write wins.
type Store interface {
	// Get returns the cart for token. A missing or corrupt snapshot yields
	// an empty cart and a nil error; only storage I/O failures are returned.
	Get(ctx context.Context, token string) ([]Item, error)

	// Set replaces the snapshot for token with items.
	Set(ctx context.Context, token string, items []Item) error

	Ping(ctx context.Context) error
}

func snapshotKey(token string) string {
	return keyPrefix + token
}
