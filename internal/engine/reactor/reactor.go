// Package reactor rebuilds assets when their sources change.
package reactor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/assets"
	"go.trai.ch/zerr"
)

// Reactor runs a builder once and then again after every burst of matching
// source changes. Rebuilds never overlap: changes that arrive while a build
// runs schedule exactly one follow-up build.
type Reactor struct {
	factory ports.WatcherFactory
	logger  ports.Logger
	window  time.Duration
}

// New creates a Reactor that coalesces events arriving within window.
func New(factory ports.WatcherFactory, logger ports.Logger, window time.Duration) *Reactor {
	return &Reactor{factory: factory, logger: logger, window: window}
}

// Run blocks until ctx is cancelled. Build failures are logged, never
// returned; only a watcher that cannot start is an error.
func (r *Reactor) Run(ctx context.Context, b assets.Builder, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if err := b.Build(ctx, out); err != nil && ctx.Err() == nil {
		r.logger.Error(err)
	}

	src := b.Sources()
	w, err := r.factory.NewWatcher()
	if err != nil {
		return zerr.With(domain.WrapAs(err, domain.ErrWatcherStartFailed), "root", src.Root)
	}
	defer func() { _ = w.Stop() }()

	if err := w.Start(ctx, src.Root); err != nil {
		return zerr.With(domain.WrapAs(err, domain.ErrWatcherStartFailed), "root", src.Root)
	}
	_, _ = fmt.Fprintf(out, "watching %s\n", src.Glob)

	var (
		mu      sync.Mutex
		changed []string
	)
	trigger := make(chan struct{}, 1)
	d := NewDebouncer(r.window, func(paths []string) {
		mu.Lock()
		changed = append(changed, paths...)
		mu.Unlock()
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	defer d.Stop()

	go func() {
		for ev := range w.Events() {
			if Matches(src, ev.Path) {
				d.Add(ev.Path)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
		}

		mu.Lock()
		slices.Sort(changed)
		paths := slices.Compact(changed)
		changed = nil
		mu.Unlock()

		_, _ = fmt.Fprintf(out, "%s changed, rebuilding\n", describe(src.Root, paths))
		if err := b.Build(ctx, out); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.Error(zerr.Wrap(err, domain.ErrRebuildFailed.Error()))
		}
	}
}

// Matches reports whether path lies below the source root and matches its glob.
func Matches(src assets.Sources, path string) bool {
	rel, err := filepath.Rel(src.Root, path)
	if err != nil || rel == "." || !filepath.IsLocal(rel) {
		return false
	}
	ok, err := doublestar.Match(src.Glob, filepath.ToSlash(rel))
	return err == nil && ok
}

func describe(root string, paths []string) string {
	if len(paths) == 0 {
		return "sources"
	}
	first := paths[0]
	if rel, err := filepath.Rel(root, first); err == nil {
		first = filepath.ToSlash(rel)
	}
	if len(paths) == 1 {
		return first
	}
	return fmt.Sprintf("%s and %d more", first, len(paths)-1)
}
