package file

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"mytasks/internal/log"
)

// debounceDelay coalesces the burst of events a single atomic write produces.
const debounceDelay = 50 * time.Millisecond

// Watch implements storage.Watcher. The parent directory is watched because
// writes replace the file, which drops watches held on the old inode.
func (s *Storage) Watch(ctx context.Context, onChange func()) error {
	dir := filepath.Dir(s.path)
	if err := ensureDir(dir); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return err
	}

	log.Debug().Str("dir", dir).Msg("watching storage file")
	go s.eventLoop(ctx, w, onChange)
	return nil
}

func (s *Storage) eventLoop(ctx context.Context, w *fsnotify.Watcher, onChange func()) {
	defer w.Close()

	name := filepath.Clean(s.path)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(debounceDelay, onChange)
			} else {
				timer.Reset(debounceDelay)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("storage watcher error")
		}
	}
}
