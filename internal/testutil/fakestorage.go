// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"maps"
	"sync"

	"mytasks/internal/storage"
)

// FakeStorage is an in-memory implementation of storage.Storage for testing.
type FakeStorage struct {
	mu       sync.Mutex
	items    map[string]string
	onChange func()

	// Call counters
	Gets    int
	Sets    int
	Removes int
	Closed  bool

	// Error injection for testing
	GetErr    error
	SetErr    error
	RemoveErr error

	// WatchEnabled makes Watch succeed; Touch then fires the callback.
	WatchEnabled bool
}

// NewFakeStorage creates an empty FakeStorage.
func NewFakeStorage() *FakeStorage {
	return &FakeStorage{items: make(map[string]string)}
}

// Put seeds a value without counting a call.
func (f *FakeStorage) Put(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value
}

// Value returns the raw stored value without counting a call.
func (f *FakeStorage) Value(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[key]
	return v, ok
}

// Items returns a snapshot of all stored values.
func (f *FakeStorage) Items() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.items)
}

// GetItem implements storage.Storage.
func (f *FakeStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Gets++
	if f.GetErr != nil {
		return "", false, f.GetErr
	}
	v, ok := f.items[key]
	return v, ok, nil
}

// SetItem implements storage.Storage.
func (f *FakeStorage) SetItem(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sets++
	if f.SetErr != nil {
		return f.SetErr
	}
	f.items[key] = value
	return nil
}

// RemoveItem implements storage.Storage.
func (f *FakeStorage) RemoveItem(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Removes++
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	delete(f.items, key)
	return nil
}

// Close implements storage.Storage.
func (f *FakeStorage) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Watch implements storage.Watcher when WatchEnabled is set.
func (f *FakeStorage) Watch(ctx context.Context, onChange func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.WatchEnabled {
		return storage.ErrWatchUnsupported
	}
	f.onChange = onChange
	return nil
}

// Touch simulates an out-of-process write by firing the watch callback.
func (f *FakeStorage) Touch() {
	f.mu.Lock()
	fn := f.onChange
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}
