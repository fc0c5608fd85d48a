// Package watch ingests files as they appear or change in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driving"
	"github.com/custodia-labs/intrafact/internal/logger"
)

// DefaultDebounce is how long a path must stay quiet before it is ingested.
const DefaultDebounce = 500 * time.Millisecond

// ErrMissingIngestService is returned when no ingest service is provided.
var ErrMissingIngestService = errors.New("watch: ingest service is required")

// Watcher feeds created and written files to an IngestService.
// Editors often emit several writes per save, so events are debounced per path.
type Watcher struct {
	ingest    driving.IngestService
	dir       string
	recursive bool
	debounce  time.Duration
	onResult  func(domain.FileResult)
	ready     chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithRecursive also watches subdirectories, including ones created later.
func WithRecursive(recursive bool) Option {
	return func(w *Watcher) {
		w.recursive = recursive
	}
}

// WithDebounce sets the quiet period before a changed file is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithResultHandler is called with the outcome of every ingested file.
func WithResultHandler(fn func(domain.FileResult)) Option {
	return func(w *Watcher) {
		w.onResult = fn
	}
}

// New creates a watcher for dir.
func New(ingest driving.IngestService, dir string, opts ...Option) (*Watcher, error) {
	if ingest == nil {
		return nil, ErrMissingIngestService
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	w := &Watcher{
		ingest:   ingest,
		dir:      dir,
		debounce: DefaultDebounce,
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Ready is closed once the directory is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. Pending paths are dropped on exit.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.add(fw, w.dir); err != nil {
		return err
	}
	logger.Info("Watching %s", w.dir)
	close(w.ready)

	tick := time.NewTicker(max(w.debounce/2, time.Millisecond))
	defer tick.Stop()

	pending := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.recursive && event.Has(fsnotify.Create) && isDir(event.Name) && !isHidden(event.Name) {
				if err := w.add(fw, event.Name); err != nil {
					logger.Warn("watch %s: %v", event.Name, err)
				}
				continue
			}
			if path, ok := w.handleEvent(event); ok {
				pending[path] = time.Now()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)

		case now := <-tick.C:
			for path, at := range pending {
				if now.Sub(at) < w.debounce {
					continue
				}
				delete(pending, path)
				w.ingestFile(ctx, path)
			}
		}
	}
}

// add watches dir, and every visible subdirectory when recursive.
func (w *Watcher) add(fw *fsnotify.Watcher, dir string) error {
	if !w.recursive {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		return nil
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// handleEvent returns the file to ingest for an event, if any.
// Removals and renames are ignored: processed records are never deleted.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if isHidden(event.Name) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	result := w.ingest.IngestFile(ctx, path)
	switch result.Outcome {
	case domain.OutcomeProcessed:
		logger.Info("Ingested %s %s", path, logger.Fields("chunks", result.Chunks))
	case domain.OutcomeUnreadable, domain.OutcomeFailed:
		logger.Warn("Ingest %s: %v", path, result.Err)
	default:
		logger.Debug("Skipped %s %s", path, logger.Fields("outcome", result.Outcome))
	}
	if w.onResult != nil {
		w.onResult(result)
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
