package blob

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheEntries = 256

// CachedStore is a read-through LRU over an origin store. Scripts are
// immutable once written, so a cached entry never goes stale; Put and Delete
// still evict to keep a recycled key from serving old bytes.
type CachedStore struct {
	origin Store
	cache  *lru.Cache[string, []byte]
}

func NewCachedStore(origin Store, maxEntries int) (*CachedStore, error) {
	if origin == nil {
		return nil, fmt.Errorf("origin store is nil")
	}
	if maxEntries <= 0 {
		maxEntries = defaultCacheEntries
	}
	cache, err := lru.New[string, []byte](maxEntries)
	if err != nil {
		return nil, err
	}
	return &CachedStore{origin: origin, cache: cache}, nil
}

func (s *CachedStore) Put(ctx context.Context, key string, content []byte) error {
	if s == nil || s.origin == nil {
		return fmt.Errorf("store is nil")
	}
	if err := s.origin.Put(ctx, key, content); err != nil {
		return err
	}
	s.cache.Remove(strings.TrimSpace(key))
	return nil
}

func (s *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s == nil || s.origin == nil {
		return nil, fmt.Errorf("store is nil")
	}
	key = strings.TrimSpace(key)
	if cached, ok := s.cache.Get(key); ok {
		return append([]byte(nil), cached...), nil
	}
	raw, err := s.origin.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, append([]byte(nil), raw...))
	return raw, nil
}

func (s *CachedStore) Delete(ctx context.Context, key string) error {
	if s == nil || s.origin == nil {
		return fmt.Errorf("store is nil")
	}
	s.cache.Remove(strings.TrimSpace(key))
	return s.origin.Delete(ctx, key)
}

func (s *CachedStore) List(ctx context.Context) ([]string, error) {
	if s == nil || s.origin == nil {
		return nil, fmt.Errorf("store is nil")
	}
	return s.origin.List(ctx)
}
