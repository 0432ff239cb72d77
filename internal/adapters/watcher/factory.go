package watcher

import (
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.WatcherFactory = (*Factory)(nil)

// Factory creates a Watcher with its own hash cache for every watch task.
type Factory struct {
	walker *fs.Walker
	hasher *fs.Hasher
	logger ports.Logger
}

// NewFactory creates a new Factory.
func NewFactory(walker *fs.Walker, hasher *fs.Hasher, logger ports.Logger) *Factory {
	return &Factory{walker: walker, hasher: hasher, logger: logger}
}

// NewWatcher creates an unstarted watcher.
func (f *Factory) NewWatcher() (ports.Watcher, error) {
	w, err := NewWatcher(f.walker, NewHashCache(f.hasher), f.logger)
	if err != nil {
		return nil, err
	}
	return w, nil
}
