package cli

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDir calls onChange for every write, create, remove or rename in dir
// until ctx is done.
func watchDir(ctx context.Context, dir string, log *zap.Logger, onChange func(name string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	const changed = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&changed != 0 {
					onChange(ev.Name)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("watch error", zap.String("dir", dir), zap.Error(err))
			}
		}
	}()
	return nil
}
