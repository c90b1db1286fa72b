// Package watch re-runs generation when Go sources change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period awaited after the last change before
// a run starts.
const DefaultDebounce = 200 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	// Dirs are the directories to watch (not recursive).
	Dirs []string
	// Debounce is the quiet period; zero means DefaultDebounce.
	Debounce time.Duration
	// GeneratedFilename is ignored so the generator's own writes do not
	// trigger another run.
	GeneratedFilename string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// RunFunc is one generation pass.
type RunFunc func(ctx context.Context) error

// Watcher calls a RunFunc after source changes settle. Runs never overlap.
type Watcher struct {
	config Config
	run    RunFunc

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a Watcher.
func New(config Config, run RunFunc) *Watcher {
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Watcher{
		config: config,
		run:    run,
		ready:  make(chan struct{}),
	}
}

// Ready is closed once every directory is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run blocks until ctx is cancelled. A failing pass is logged and watching
// continues.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	for _, dir := range w.config.Dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}

		w.config.Logger.Debug("watching directory", slog.String("dir", dir))
	}

	w.readyOnce.Do(func() { close(w.ready) })

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}

			if ev.Has(fsnotify.Create) && isDir(ev.Name) {
				if err := fw.Add(ev.Name); err != nil {
					w.config.Logger.Warn("cannot watch new directory", slog.String("dir", ev.Name), slog.Any("error", err))
				}

				continue
			}

			if !w.relevant(ev) {
				continue
			}

			w.config.Logger.Debug("source changed", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))

			if timer == nil {
				timer = time.NewTimer(w.config.Debounce)
			} else {
				timer.Reset(w.config.Debounce)
			}

			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}

			w.config.Logger.Warn("watch error", slog.Any("error", err))

		case <-fire:
			fire = nil

			if err := w.run(ctx); err != nil {
				w.config.Logger.Error("generation failed", slog.Any("error", err))
			}
		}
	}
}

// relevant reports whether an event touches a Go source file that feeds
// generation.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(ev.Name)

	switch {
	case filepath.Ext(name) != ".go":
		return false
	case strings.HasSuffix(name, "_test.go"), strings.HasSuffix(name, ".unformatted.go"):
		return false
	case w.config.GeneratedFilename != "" && name == w.config.GeneratedFilename:
		return false
	default:
		return true
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
