// Package theme persists the light/dark display preference.
package theme

import (
	"context"
	"errors"
	"fmt"

	"mytasks/internal/log"
	"mytasks/internal/storage"
)

// StorageKey is the key the theme is stored under.
const StorageKey = "color-scheme"

// Theme is the display mode.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"

	// Default is used until a theme has been stored.
	Default = Light
)

// ErrInvalidTheme is returned for anything other than light or dark.
var ErrInvalidTheme = errors.New("invalid theme")

// Parse converts a stored or user-supplied token into a Theme.
func Parse(s string) (Theme, error) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
	}
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

func (t Theme) String() string { return string(t) }

// Store reads and writes the theme preference.
type Store struct {
	storage storage.Storage
}

// NewStore creates a Store backed by st.
func NewStore(st storage.Storage) *Store {
	return &Store{storage: st}
}

// Get returns the stored theme, or Default when none is stored.
// An unrecognized stored value is logged and treated as unset.
func (s *Store) Get(ctx context.Context) (Theme, error) {
	raw, ok, err := s.storage.GetItem(ctx, StorageKey)
	if err != nil {
		return "", fmt.Errorf("load theme: %w", err)
	}
	if !ok || raw == "" {
		return Default, nil
	}
	t, err := Parse(raw)
	if err != nil {
		log.Warn().Err(&storage.CorruptError{Key: StorageKey, Err: err}).Msg("ignoring unreadable theme")
		return Default, nil
	}
	return t, nil
}

// Set stores t, replacing the previous value.
func (s *Store) Set(ctx context.Context, t Theme) error {
	if _, err := Parse(string(t)); err != nil {
		return err
	}
	if err := s.storage.SetItem(ctx, StorageKey, string(t)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// Toggle sets value when it is non-empty, otherwise flips the current theme.
// It returns the theme now in effect.
func (s *Store) Toggle(ctx context.Context, value Theme) (Theme, error) {
	next := value
	if next == "" {
		current, err := s.Get(ctx)
		if err != nil {
			return "", err
		}
		next = current.Toggle()
	}
	if err := s.Set(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}
