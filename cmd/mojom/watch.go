package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/wippyai/mojom/loader"
)

const watchDebounce = 200 * time.Millisecond

// watchSet tracks the files of the last run and the directories watched for
// them. fsnotify watches directories so that editors replacing a file by
// rename are still seen.
type watchSet struct {
	fsw   *fsnotify.Watcher
	files map[string]bool
	dirs  map[string]bool
}

func (s *watchSet) update(files []string) {
	s.files = make(map[string]bool, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		s.files[abs] = true
		dir := filepath.Dir(abs)
		if s.dirs[dir] {
			continue
		}
		if err := s.fsw.Add(dir); err != nil {
			loader.Logger().Warn("watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		s.dirs[dir] = true
	}
}

func (s *watchSet) relevant(evt fsnotify.Event) bool {
	if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(evt.Name)
	if err != nil {
		return false
	}
	return s.files[abs]
}

// runWatch runs once and then again after every change to a file the last
// run read, until ctx is cancelled. Build errors are reported and watching
// continues.
func runWatch(ctx context.Context, w io.Writer, o options) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	set := &watchSet{fsw: fsw, dirs: make(map[string]bool)}
	pass := func() {
		files, err := run(w, o)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		set.update(files)
		fmt.Fprintf(w, "-- watching %d file(s), ctrl+c to stop --\n", len(set.files))
	}
	pass()

	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("watcher event channel closed")
			}
			if !set.relevant(evt) {
				continue
			}
			loader.Logger().Debug("change", zap.String("file", evt.Name), zap.Stringer("op", evt.Op))
			timer.Reset(watchDebounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)

		case <-timer.C:
			fmt.Fprintf(w, "\n-- rebuilt at %s --\n", time.Now().Format(time.TimeOnly))
			pass()
		}
	}
}
