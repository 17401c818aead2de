package view

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 100 * time.Millisecond

// Watch reloads the templates whenever an .html file under dir changes. It
// blocks until ctx is done. dir must be the directory the renderer reads.
func (r *Renderer) Watch(ctx context.Context, dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, sub := range []string{"", "partials", "pages"} {
		if err := w.Add(filepath.Join(dir, sub)); err != nil {
			return fmt.Errorf("watch %s: %w", filepath.Join(dir, sub), err)
		}
	}
	r.logger.Info("watching templates", "dir", dir)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".html") || ev.Op == fsnotify.Chmod {
				continue
			}
			// Editors write in bursts; reload once the burst settles.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDelay, func() {
				if err := r.Load(); err != nil {
					r.logger.Error("template reload failed", "error", err)
					return
				}
				r.logger.Info("templates reloaded", "trigger", ev.Name)
			})
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("template watcher error", "error", err)
		}
	}
}
