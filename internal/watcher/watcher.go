// Package watcher polls a project's TypeScript sources and reports batched
// changes so extraction can rerun.
package watcher

import (
	"context"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// Op is the kind of change observed for a file.
type Op string

const (
	OpCreate Op = "create"
	OpWrite  Op = "write"
	OpRemove Op = "remove"
)

// Event represents a file change event.
type Event struct {
	Path string
	Op   Op
}

// DefaultPollInterval is the default polling interval for file change detection.
const DefaultPollInterval = 500 * time.Millisecond

// DefaultSkipDirs are directory names never descended into.
var DefaultSkipDirs = []string{"node_modules", ".git"}

// Options configures a Watcher.
type Options struct {
	// Dirs are the roots to poll.
	Dirs []string
	// Extensions filter the files reported, e.g. [".ts", ".tsx"].
	Extensions []string
	// Ignore lists absolute directories excluded from polling, such as the
	// output directory the extraction writes into.
	Ignore []string
	// Debounce batches events that arrive within this window.
	Debounce time.Duration
	// PollInterval defaults to DefaultPollInterval.
	PollInterval time.Duration
}

// Watcher watches directories for source changes by polling.
type Watcher struct {
	opts     Options
	onChange func(events []Event)

	mu      sync.Mutex
	pending []Event
	timer   *time.Timer
}

// New creates a watcher that calls onChange with each debounced batch.
func New(opts Options, onChange func(events []Event)) *Watcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	ignore := make([]string, len(opts.Ignore))
	for i, dir := range opts.Ignore {
		ignore[i] = filepath.Clean(dir)
	}
	opts.Ignore = ignore
	return &Watcher{opts: opts, onChange: onChange}
}

// Run polls until ctx is canceled. Pending events that have not been
// delivered when ctx ends are dropped.
func (w *Watcher) Run(ctx context.Context) error {
	snapshot := w.buildSnapshot()

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			next := w.buildSnapshot()
			if events := w.diff(snapshot, next); len(events) > 0 {
				w.schedule(events)
			}
			snapshot = next
		}
	}
}

func (w *Watcher) schedule(events []Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, events...)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()
	if len(pending) > 0 && w.onChange != nil {
		w.onChange(pending)
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

type fileInfo struct {
	modTime time.Time
	size    int64
}

func (w *Watcher) buildSnapshot() map[string]fileInfo {
	snap := make(map[string]fileInfo)
	for _, dir := range w.opts.Dirs {
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != dir && w.skipDir(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if !w.matchesExtension(path) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			snap[path] = fileInfo{modTime: info.ModTime(), size: info.Size()}
			return nil
		})
	}
	return snap
}

func (w *Watcher) skipDir(path string) bool {
	if slices.Contains(DefaultSkipDirs, filepath.Base(path)) {
		return true
	}
	return slices.Contains(w.opts.Ignore, filepath.Clean(path))
}

func (w *Watcher) matchesExtension(path string) bool {
	if strings.HasSuffix(path, ".d.ts") {
		return false
	}
	return slices.Contains(w.opts.Extensions, filepath.Ext(path))
}

// diff reports changes between two snapshots, sorted by path.
func (w *Watcher) diff(old, new map[string]fileInfo) []Event {
	var events []Event

	for path, newInfo := range new {
		if oldInfo, ok := old[path]; ok {
			if !newInfo.modTime.Equal(oldInfo.modTime) || newInfo.size != oldInfo.size {
				events = append(events, Event{Path: path, Op: OpWrite})
			}
		} else {
			events = append(events, Event{Path: path, Op: OpCreate})
		}
	}

	for path := range old {
		if _, ok := new[path]; !ok {
			events = append(events, Event{Path: path, Op: OpRemove})
		}
	}

	slices.SortFunc(events, func(a, b Event) int { return strings.Compare(a.Path, b.Path) })
	return events
}
