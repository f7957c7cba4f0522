package record

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"podscript/internal/script"
)

// MemoryStore assigns ids monotonically and timestamps rows itself; it backs
// local mode and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	rows   []script.Record
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Insert(_ context.Context, meta script.Metadata) (*script.Record, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	name := strings.TrimSpace(meta.Name)
	key := strings.TrimSpace(meta.StorageKey)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if key == "" {
		return nil, fmt.Errorf("storage_key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.StorageKey == key {
			return nil, fmt.Errorf("storage_key %q already recorded", key)
		}
	}
	rec := script.Record{
		ID:         s.nextID,
		Name:       name,
		StorageKey: key,
		Personas:   append([]string(nil), meta.Personas...),
		CreatedAt:  time.Now().UTC(),
	}
	s.nextID++
	s.rows = append(s.rows, rec)
	return &rec, nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (*script.Record, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rows {
		if r.ID == id {
			rec := r
			return &rec, nil
		}
	}
	return nil, script.ErrNotFound
}

func (s *MemoryStore) List(_ context.Context) ([]script.Record, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]script.Record(nil), s.rows...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
