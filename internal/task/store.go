package task

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"mytasks/internal/log"
	"mytasks/internal/storage"
)

// Store holds the authoritative in-memory task list.
// Every mutation writes the full list to storage before it takes effect, so
// the in-memory list and the persisted value never drift.
// A Store is not safe for concurrent use.
type Store struct {
	storage storage.Storage
	tasks   []Task
}

// NewStore creates an empty Store backed by st.
func NewStore(st storage.Storage) *Store {
	return &Store{
		storage: st,
		tasks:   []Task{},
	}
}

// Tasks returns a copy of the current list.
func (s *Store) Tasks() []Task {
	return slices.Clone(s.tasks)
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Create appends a task and persists the list.
// The title is not validated; presence checks belong to the caller.
func (s *Store) Create(ctx context.Context, title, summary string) error {
	updated := append(slices.Clone(s.tasks), Task{Title: title, Summary: summary})
	if err := s.Persist(ctx, updated); err != nil {
		return err
	}
	s.tasks = updated
	log.Debug().Int("count", len(s.tasks)).Msg("task created")
	return nil
}

// Delete removes the task at index and persists the list.
// An out-of-range index returns an *IndexError and writes nothing.
func (s *Store) Delete(ctx context.Context, index int) error {
	if index < 0 || index >= len(s.tasks) {
		return &IndexError{Index: index, Len: len(s.tasks)}
	}
	updated := slices.Delete(slices.Clone(s.tasks), index, index+1)
	if err := s.Persist(ctx, updated); err != nil {
		return err
	}
	s.tasks = updated
	log.Debug().Int("index", index).Int("count", len(s.tasks)).Msg("task deleted")
	return nil
}

// Load replaces the in-memory list with the persisted one.
// With nothing persisted the current list is kept. A corrupt value is logged
// and replaced by an empty list.
func (s *Store) Load(ctx context.Context) ([]Task, error) {
	raw, ok, err := s.storage.GetItem(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if !ok || raw == "" {
		return s.Tasks(), nil
	}

	tasks, err := Decode(raw)
	if err != nil {
		var corrupt *storage.CorruptError
		if !errors.As(err, &corrupt) {
			return nil, err
		}
		log.Warn().Err(err).Str("key", StorageKey).Msg("discarding unreadable task list")
		tasks = []Task{}
	}

	s.tasks = tasks
	log.Debug().Int("count", len(s.tasks)).Msg("tasks loaded")
	return s.Tasks(), nil
}

// Persist writes tasks under StorageKey, overwriting any previous value.
func (s *Store) Persist(ctx context.Context, tasks []Task) error {
	raw, err := Encode(tasks)
	if err != nil {
		return err
	}
	if err := s.storage.SetItem(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}
