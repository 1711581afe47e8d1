// Package watcher monitors the raw photos directory and signals when a new
// batch run is due. It powers --watch mode: the pipeline still runs as
// strictly sequential batches; the watcher only decides when the next one
// starts.
package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/backmassage/frameprep/internal/pipeline"
)

// Logger is the minimal logging interface the watcher needs.
type Logger interface {
	Warn(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// Watcher wraps an fsnotify watcher on a single flat directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	verbose  bool
	log      Logger
	fw       *fsnotify.Watcher
}

// New creates a Watcher on dir. debounce is the quiet period required after
// the last relevant event before Wait returns; camera imports drop many
// files in bursts, and one batch per burst is the point.
func New(dir string, debounce time.Duration, verbose bool, log Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{dir: dir, debounce: debounce, verbose: verbose, log: log, fw: fw}, nil
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

// Wait blocks until the raw directory has changed and then been quiet for
// the debounce period, meaning a new batch should run. It returns false
// when ctx is done or the watcher is closed.
func (w *Watcher) Wait(ctx context.Context) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case err, ok := <-w.fw.Errors:
			if !ok {
				return false
			}
			w.log.Warn("Watch error: %v", err)
		case ev, ok := <-w.fw.Events:
			if !ok {
				return false
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug(w.verbose, "Change detected: %s (%s)", ev.Name, ev.Op)
			if w.settle(ctx) {
				return true
			}
			return false
		}
	}
}

// settle waits for the debounce period, restarting it whenever further
// relevant events arrive. Returns false only when ctx ends or the event
// channel closes.
func (w *Watcher) settle(ctx context.Context) bool {
	timer := time.NewTimer(w.debounce)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return true
		case ev, ok := <-w.fw.Events:
			if !ok {
				return true // Directory changed; run one last batch.
			}
			if w.relevant(ev) {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return true
			}
			w.log.Warn("Watch error: %v", err)
		}
	}
}

// relevant reports whether an event concerns a recognized image file
// appearing, changing, or disappearing. Chmod-only events are noise.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return pipeline.HasImageExtension(ev.Name)
}
