// Package cached puts an LRU read cache in front of a storage.Storage.
package cached

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"mytasks/internal/storage"
)

type entry struct {
	value string
	ok    bool
}

// Storage serves repeated reads from memory. Writes go to the base storage
// first and update the cache only on success.
type Storage struct {
	base  storage.Storage
	cache *lru.Cache[string, entry]
}

// New wraps base with a cache of up to size keys.
func New(base storage.Storage, size int) (*Storage, error) {
	cache, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Storage{base: base, cache: cache}, nil
}

// GetItem implements storage.Storage. Missing keys are cached too.
func (s *Storage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if e, ok := s.cache.Get(key); ok {
		return e.value, e.ok, nil
	}
	v, ok, err := s.base.GetItem(ctx, key)
	if err != nil {
		return "", false, err
	}
	s.cache.Add(key, entry{value: v, ok: ok})
	return v, ok, nil
}

// SetItem implements storage.Storage.
func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	if err := s.base.SetItem(ctx, key, value); err != nil {
		s.cache.Remove(key)
		return err
	}
	s.cache.Add(key, entry{value: value, ok: true})
	return nil
}

// RemoveItem implements storage.Storage.
func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	s.cache.Remove(key)
	return s.base.RemoveItem(ctx, key)
}

// Close implements storage.Storage.
func (s *Storage) Close() error {
	s.cache.Purge()
	return s.base.Close()
}

// Watch implements storage.Watcher when the base storage does.
// The cache is purged before onChange runs so reloads see fresh data.
func (s *Storage) Watch(ctx context.Context, onChange func()) error {
	return storage.Watch(ctx, s.base, func() {
		s.cache.Purge()
		onChange()
	})
}
