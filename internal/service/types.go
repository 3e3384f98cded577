package service

import (
	"context"
	"fmt"

	"mytasks/internal/storage"
	"mytasks/internal/task"
	"mytasks/internal/theme"
)

// Workspace implements Service over a single storage.
type Workspace struct {
	storage storage.Storage
	tasks   *task.Store
	prefs   *theme.Store
}

// New creates a Workspace and loads the persisted task list.
func New(ctx context.Context, st storage.Storage) (*Workspace, error) {
	w := &Workspace{
		storage: st,
		tasks:   task.NewStore(st),
		prefs:   theme.NewStore(st),
	}
	if _, err := w.tasks.Load(ctx); err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	return w, nil
}

// ListTasks implements Service.
func (w *Workspace) ListTasks(ctx context.Context) ([]task.Task, error) {
	return w.tasks.Tasks(), nil
}

// CreateTask implements Service.
func (w *Workspace) CreateTask(ctx context.Context, title, summary string) error {
	return w.tasks.Create(ctx, title, summary)
}

// DeleteTask implements Service.
func (w *Workspace) DeleteTask(ctx context.Context, index int) error {
	return w.tasks.Delete(ctx, index)
}

// Reload implements Service.
func (w *Workspace) Reload(ctx context.Context) error {
	_, err := w.tasks.Load(ctx)
	return err
}

// Theme implements Service.
func (w *Workspace) Theme(ctx context.Context) (theme.Theme, error) {
	return w.prefs.Get(ctx)
}

// SetTheme implements Service.
func (w *Workspace) SetTheme(ctx context.Context, t theme.Theme) error {
	return w.prefs.Set(ctx, t)
}

// ToggleTheme implements Service.
func (w *Workspace) ToggleTheme(ctx context.Context, value theme.Theme) (theme.Theme, error) {
	return w.prefs.Toggle(ctx, value)
}

// Watch implements Service.
func (w *Workspace) Watch(ctx context.Context, onChange func()) error {
	return storage.Watch(ctx, w.storage, onChange)
}

// Close implements Service.
func (w *Workspace) Close() error {
	return w.storage.Close()
}
