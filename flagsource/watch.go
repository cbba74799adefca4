package flagsource

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// InvalidateOnChange drops the cached flags of each file provider for paths,
// including cached merges that read it, whenever that file is written,
// created, renamed or removed. It returns once
// watching started; watching stops when ctx is done. The containing
// directories are watched so that editors that replace files are noticed.
func InvalidateOnChange(ctx context.Context, paths ...string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	keys := make(map[string]string, len(paths))
	for _, p := range paths {
		f := file{path: p}
		abs := f.Key()[len("file:"):]
		keys[abs] = f.Key()
		dir := filepath.Dir(abs)
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}

	go func() {
		defer fsw.Close()
		for {
			select {
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				if key, watched := keys[filepath.Clean(event.Name)]; watched {
					invalidateSource(key)
				}
			case _, ok := <-fsw.Errors:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
