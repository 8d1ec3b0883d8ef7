package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/typeloader/typeloader/internal/types"
)

// DefaultDebounce is how long Watch waits for changes to settle.
const DefaultDebounce = 250 * time.Millisecond

// Watch scans cfg.Root once, then rescans whenever files under it change.
// Libraries stay loaded between scans, so a rescan only loads identities
// that are new. onScan receives every result. Watch returns nil when ctx is
// done and an error when the root is inaccessible.
func Watch(ctx context.Context, cfg Config, debounce time.Duration, onScan func(Result, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	watchErr := addTree(w, cfg.Root)

	res, err := Scan(ctx, cfg)
	onScan(res, err)
	var lf *types.LoadFailure
	if errors.As(err, &lf) && lf.Fatal() {
		return err
	}
	if watchErr != nil {
		return fmt.Errorf("watch %s: %w", cfg.Root, watchErr)
	}
	if ctx.Err() != nil {
		return nil
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = addTree(w, ev.Name)
				}
			}
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if cfg.Logger != nil {
				cfg.Logger.Warn("watch error", "err", err)
			}
		case <-timer.C:
			res, err := Scan(ctx, cfg)
			if ctx.Err() != nil {
				return nil
			}
			onScan(res, err)
		}
	}
}

// addTree watches root and every directory below it.
func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.Add(p); err != nil && p == root {
			return err
		}
		return nil
	})
}
