package cart

import (
	"context"
	"encoding/json"
	"sync"
)

// MemStore keeps serialized snapshots in a mutex-guarded map. Values are
// stored as JSON strings rather than live slices so it behaves like the real
// key-value backend, corrupt-snapshot handling included.
type MemStore struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string]string)}
}

func NewStore() Store {
	return NewMemStore()
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Get(ctx context.Context, token string) ([]Item, error) {
	s.mu.RLock()
	raw, ok := s.m[snapshotKey(token)]
	s.mu.RUnlock()

	if !ok {
		return []Item{}, nil
	}
	return decodeSnapshot([]byte(raw)), nil
}

func (s *MemStore) Set(ctx context.Context, token string, items []Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.m[snapshotKey(token)] = string(raw)
	s.mu.Unlock()
	return nil
}

// Put stores a raw snapshot verbatim. Test hook for exercising corrupt data.
func (s *MemStore) Put(token, raw string) {
	s.mu.Lock()
	s.m[snapshotKey(token)] = raw
	s.mu.Unlock()
}

// decodeSnapshot treats malformed persisted data as "no cart": the store
// favors availability over raising on snapshots it can no longer read.
func decodeSnapshot(raw []byte) []Item {
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return []Item{}
	}
	return items
}
