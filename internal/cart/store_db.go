package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// PostgresStore persists snapshots in a single key-value table, one row per
// session cart.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

// EnsureSchema creates the snapshot table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS cart_snapshots (
				key        TEXT PRIMARY KEY,
				snapshot   TEXT NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`)
		return err
	})
}

func (s *PostgresStore) Get(ctx context.Context, token string) ([]Item, error) {
	var raw string

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT snapshot
			FROM cart_snapshots
			WHERE key = $1
		`, snapshotKey(token)).Scan(&raw)
	})

	if err == sql.ErrNoRows {
		return []Item{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot([]byte(raw)), nil
}

func (s *PostgresStore) Set(ctx context.Context, token string, items []Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}

	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO cart_snapshots (key, snapshot, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE
			SET snapshot = EXCLUDED.snapshot, updated_at = now()
		`, snapshotKey(token), string(raw))
		return err
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
