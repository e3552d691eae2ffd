// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/googol/nupackager/internal/catalog"
)

// DefaultDebounce is the quiet period used when Config.Debounce is unset.
const DefaultDebounce = 500 * time.Millisecond

var (
	// ErrInvalidPattern is returned when a watch pattern is not a valid glob.
	ErrInvalidPattern = errors.New("invalid watch pattern")
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watcher already running")
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Dir is the drop directory. Subdirectories are not watched.
		Dir string
		// Pattern selects module binaries. Their sidecars are watched too.
		Pattern string
		// Debounce is the quiet period after the last event.
		Debounce time.Duration
		// OnChange receives the sorted base names changed since the last call.
		OnChange func(ctx context.Context, changed []string) error
	}

	// Watcher fires OnChange after matching files in Dir change. Run may be
	// called once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		patterns []string
		started  atomic.Bool
	}
)

// New validates cfg and starts watching cfg.Dir.
func New(cfg Config) (*Watcher, error) {
	pattern := strings.ToLower(cfg.Pattern)
	if !doublestar.ValidatePattern(pattern) || strings.ContainsAny(pattern, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, cfg.Pattern)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsw.Add(cfg.Dir); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			slog.Warn("close file watcher", "error", closeErr)
		}
		return nil, fmt.Errorf("watch %s: %w", cfg.Dir, err)
	}

	return &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		patterns: []string{pattern, pattern + strings.ToLower(catalog.SidecarSuffix)},
	}, nil
}

// Matches reports whether a base name is a watched binary or sidecar.
// Matching is case-insensitive.
func (w *Watcher) Matches(name string) bool {
	lower := strings.ToLower(name)
	for _, pat := range w.patterns {
		if ok, _ := doublestar.Match(pat, lower); ok {
			return true
		}
	}
	return false
}

// Run blocks until ctx is cancelled or the watcher fails. A callback still
// running when the debounce period ends again is not started twice; the
// pending names are kept for the next attempt. Run returns only after any
// callback in progress has returned.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu       sync.Mutex
		pending  = make(map[string]struct{})
		timer    *time.Timer
		stopped  bool
		running  bool
		inflight sync.WaitGroup
	)

	fire := func() {
		mu.Lock()
		if stopped || ctx.Err() != nil {
			mu.Unlock()
			return
		}
		if running {
			slog.Debug("previous run still in progress, postponing")
			timer.Reset(w.cfg.Debounce)
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		if len(changed) == 0 || w.cfg.OnChange == nil {
			mu.Unlock()
			return
		}
		running = true
		inflight.Add(1)
		mu.Unlock()

		defer func() {
			mu.Lock()
			running = false
			mu.Unlock()
			inflight.Done()
		}()

		if err := w.cfg.OnChange(ctx, changed); err != nil {
			slog.Warn("watch callback failed", "error", err)
		}
	}

	defer func() {
		mu.Lock()
		stopped = true
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		inflight.Wait()
		if err := w.fsw.Close(); err != nil {
			slog.Warn("close file watcher", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("file watcher event channel closed")
			}
			name := filepath.Base(evt.Name)
			if evt.Has(fsnotify.Chmod) || !w.Matches(name) {
				continue
			}
			slog.Debug("change detected", "file", name, "op", evt.Op.String())

			mu.Lock()
			pending[name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.cfg.Debounce, fire)
			} else {
				timer.Reset(w.cfg.Debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("file watcher error channel closed")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("file watcher failed: %w", err)
			}
			slog.Warn("file watcher error", "error", err)
		}
	}
}
