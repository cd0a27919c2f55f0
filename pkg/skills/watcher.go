package skills

import (
	"context"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/ipdelete/agent-base/pkg/logger"
)

// Watcher observes the skill directories and marks the registry dirty
// when anything under them changes, so the next snapshot re-runs
// discovery. Events are debounced: editors produce bursts of writes for
// a single save.
type Watcher struct {
	registry *Registry
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher creates a Watcher over the registry's skill directories.
// Directories that do not exist yet are skipped; at least one must be
// watchable.
func NewWatcher(registry *Registry, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}

	watched := 0
	for _, dir := range registry.discovery.Dirs() {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			continue
		}
		watched++
	}
	if watched == 0 {
		fsw.Close()
		return nil, errors.New("no skill directories available to watch")
	}

	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		registry: registry,
		watcher:  fsw,
		debounce: debounce,
	}, nil
}

// Start consumes events until ctx is cancelled. Run it in a goroutine.
func (w *Watcher) Start(ctx context.Context) {
	log := logger.G(ctx)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.WithField("file", event.Name).WithField("op", event.Op.String()).
				Debug("skill directory changed")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-fire:
			w.registry.MarkDirty()
			log.Debug("skill registry marked for reload")
			timer = nil
			fire = nil
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("skill watcher error")
		case <-ctx.Done():
			return
		}
	}
}

// Close releases the underlying file watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
