package service_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"mytasks/internal/service"
	"mytasks/internal/storage"
	"mytasks/internal/task"
	"mytasks/internal/testutil"
	"mytasks/internal/theme"
)

var _ service.Service = (*service.Workspace)(nil)

func TestNew_FreshStart(t *testing.T) {
	ctx := context.Background()
	w, err := service.New(ctx, testutil.NewFakeStorage())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	tasks, _ := w.ListTasks(ctx)
	if len(tasks) != 0 {
		t.Errorf("expected empty list, got %v", tasks)
	}
	th, err := w.Theme(ctx)
	if err != nil || th != theme.Light {
		t.Errorf("expected light theme, got %s, %v", th, err)
	}
}

func TestNew_LoadsPersistedTasks(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewFakeStorage()
	st.Put(task.StorageKey, `[{"title":"A","summary":"a"}]`)

	w, err := service.New(ctx, st)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	tasks, _ := w.ListTasks(ctx)
	if !reflect.DeepEqual(tasks, []task.Task{{Title: "A", Summary: "a"}}) {
		t.Errorf("unexpected tasks %v", tasks)
	}
}

func TestNew_StorageError(t *testing.T) {
	st := testutil.NewFakeStorage()
	st.GetErr = errors.New("connection refused")

	if _, err := service.New(context.Background(), st); !errors.Is(err, st.GetErr) {
		t.Errorf("expected storage error, got %v", err)
	}
}

func TestWorkspace_SharesStorageBetweenStores(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewFakeStorage()
	w, err := service.New(ctx, st)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := w.CreateTask(ctx, "A", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := w.ToggleTheme(ctx, ""); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	items := st.Items()
	if items[task.StorageKey] != `[{"title":"A","summary":""}]` {
		t.Errorf("unexpected tasks value %q", items[task.StorageKey])
	}
	if items[theme.StorageKey] != "dark" {
		t.Errorf("unexpected theme value %q", items[theme.StorageKey])
	}
}

func TestWorkspace_Reload(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewFakeStorage()
	w, err := service.New(ctx, st)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	st.Put(task.StorageKey, `[{"title":"from elsewhere","summary":""}]`)
	if err := w.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	tasks, _ := w.ListTasks(ctx)
	if len(tasks) != 1 || tasks[0].Title != "from elsewhere" {
		t.Errorf("expected reloaded tasks, got %v", tasks)
	}
}

func TestWorkspace_WatchAndClose(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewFakeStorage()
	w, err := service.New(ctx, st)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := w.Watch(ctx, func() {}); !errors.Is(err, storage.ErrWatchUnsupported) {
		t.Errorf("expected ErrWatchUnsupported, got %v", err)
	}

	st.WatchEnabled = true
	fired := 0
	if err := w.Watch(ctx, func() { fired++ }); err != nil {
		t.Fatalf("watch: %v", err)
	}
	st.Touch()
	if fired != 1 {
		t.Errorf("expected callback to fire once, got %d", fired)
	}

	if err := w.Close(); err != nil || !st.Closed {
		t.Errorf("expected storage to be closed, err=%v", err)
	}
}
