// Package tasks binds task kinds to the actions that implement them.
package tasks

import (
	"context"
	"io"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/assets"
)

var _ ports.Executor = (*Executor)(nil)

// Cleaner removes the output root.
type Cleaner interface {
	Clean(ctx context.Context, out io.Writer) error
}

// Watcher runs a builder in watch mode until the context is cancelled.
type Watcher interface {
	Run(ctx context.Context, b assets.Builder, out io.Writer) error
}

// Executor implements ports.Executor by dispatching on the task kind.
type Executor struct {
	cleaner  Cleaner
	builders map[domain.TaskKind]assets.Builder
	watcher  Watcher
}

// NewExecutor creates an Executor. Builders are registered with WithBuilder.
func NewExecutor(cleaner Cleaner, watcher Watcher) *Executor {
	return &Executor{
		cleaner:  cleaner,
		builders: make(map[domain.TaskKind]assets.Builder),
		watcher:  watcher,
	}
}

// WithBuilder binds b to tasks of the given kind.
func (e *Executor) WithBuilder(kind domain.TaskKind, b assets.Builder) *Executor {
	e.builders[kind] = b
	return e
}

// Execute runs the action bound to task. Aggregate tasks do nothing; watch
// variants hand their builder to the watcher.
func (e *Executor) Execute(ctx context.Context, task *domain.Task, out io.Writer) error {
	switch task.Kind {
	case domain.KindAggregate:
		return nil
	case domain.KindClean:
		return e.cleaner.Clean(ctx, out)
	}

	b, ok := e.builders[task.Kind]
	if !ok {
		return domain.Annotate(domain.ErrUnknownTaskKind, "kind", task.Kind.String())
	}
	if task.Watch {
		return e.watcher.Run(ctx, b, out)
	}
	return b.Build(ctx, out)
}
