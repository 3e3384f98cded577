// Package service defines the backend-agnostic interface the presentation
// layers use for task and theme operations.
package service

import (
	"context"

	"mytasks/internal/task"
	"mytasks/internal/theme"
)

// Service defines the operations available to the CLI, TUI and web page.
// Commands never touch a storage backend directly.
type Service interface {
	// ListTasks returns the task list in display order.
	ListTasks(ctx context.Context) ([]task.Task, error)

	// CreateTask appends a task and persists the list.
	CreateTask(ctx context.Context, title, summary string) error

	// DeleteTask removes the task at the 0-based index and persists the list.
	// Returns task.ErrIndexOutOfRange for an invalid index.
	DeleteTask(ctx context.Context, index int) error

	// Reload re-reads the task list from storage.
	Reload(ctx context.Context) error

	// Theme returns the current theme, light if unset.
	Theme(ctx context.Context) (theme.Theme, error)

	// SetTheme stores the theme.
	SetTheme(ctx context.Context, t theme.Theme) error

	// ToggleTheme flips the theme, or sets value if it is non-empty.
	ToggleTheme(ctx context.Context, value theme.Theme) (theme.Theme, error)

	// Watch calls onChange when another process writes the storage.
	// Returns storage.ErrWatchUnsupported if the backend cannot watch.
	Watch(ctx context.Context, onChange func()) error

	// Close releases the storage.
	Close() error
}
