// Package task owns the ordered task list and keeps it in lockstep with
// persistent storage.
package task

import (
	"encoding/json"
	"errors"
	"fmt"

	"mytasks/internal/storage"
)

// StorageKey is the key the serialized task list is stored under.
const StorageKey = "tasks"

// Task is a user-created record. A task has no identifier; its identity is
// its position in the list.
type Task struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// ErrIndexOutOfRange is returned when deleting a position that does not exist.
var ErrIndexOutOfRange = errors.New("index out of range")

// IndexError describes an out-of-range delete.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index out of range: %d (len %d)", e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }

// Encode serializes a task list to its stored form.
func Encode(tasks []Task) (string, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("encode tasks: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored task list.
// Malformed input returns a *storage.CorruptError.
func Decode(raw string) ([]Task, error) {
	var tasks []Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, &storage.CorruptError{Key: StorageKey, Err: err}
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}
