// Package storage defines the string-keyed persistence layer that the task
// and preference stores write through to.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Storage is a durable key-value store of strings.
// Implementations must make a successful SetItem visible to the next GetItem.
type Storage interface {
	// GetItem returns the value stored under key.
	// ok is false when no value has been stored.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error

	// Close releases any resources held by the storage.
	Close() error
}

// Watcher is implemented by storages that can observe writes made by other
// processes. onChange is called from a background goroutine until ctx is done.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}

var (
	// ErrWatchUnsupported is returned when the storage cannot observe changes.
	ErrWatchUnsupported = errors.New("storage does not support watching")

	// ErrUnauthorized indicates missing, expired or revoked credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// CorruptError reports a persisted value that could not be decoded.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt value for key %q: %v", e.Key, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Watch starts watching st if it implements Watcher.
func Watch(ctx context.Context, st Storage, onChange func()) error {
	w, ok := st.(Watcher)
	if !ok {
		return ErrWatchUnsupported
	}
	return w.Watch(ctx, onChange)
}
