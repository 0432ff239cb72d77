package tasks_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/assets"
	"go.trai.ch/kiln/internal/engine/tasks"
)

type recorder struct {
	calls []string
	err   error
}

func (r *recorder) Clean(_ context.Context, _ io.Writer) error {
	r.calls = append(r.calls, "clean")
	return r.err
}

func (r *recorder) Run(_ context.Context, b assets.Builder, _ io.Writer) error {
	r.calls = append(r.calls, "watch:"+b.Sources().Glob)
	return r.err
}

type stubBuilder struct {
	r    *recorder
	glob string
}

func (s stubBuilder) Build(_ context.Context, _ io.Writer) error {
	s.r.calls = append(s.r.calls, "build:"+s.glob)
	return s.r.err
}

func (s stubBuilder) Sources() assets.Sources {
	return assets.Sources{Root: "/project", Glob: s.glob}
}

func newExecutor(r *recorder) *tasks.Executor {
	return tasks.NewExecutor(r, r).
		WithBuilder(domain.KindStyle, stubBuilder{r: r, glob: "**/*.scss"}).
		WithBuilder(domain.KindScript, stubBuilder{r: r, glob: "**/*.js"})
}

func TestExecutor_DispatchesPipelineTasks(t *testing.T) {
	p := domain.DefaultPipeline("/project")
	g, err := p.Graph()
	require.NoError(t, err)

	tests := map[string]string{
		domain.TaskClean:                     "clean",
		domain.TaskStyles:                    "build:**/*.scss",
		domain.TaskScripts:                   "build:**/*.js",
		domain.WatchName(domain.TaskStyles):  "watch:**/*.scss",
		domain.WatchName(domain.TaskScripts): "watch:**/*.js",
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			r := &recorder{}
			task, ok := g.GetTask(domain.NewInternedString(name))
			require.True(t, ok)

			require.NoError(t, newExecutor(r).Execute(context.Background(), &task, io.Discard))
			assert.Equal(t, []string{want}, r.calls)
		})
	}
}

func TestExecutor_AggregateIsNoop(t *testing.T) {
	r := &recorder{}
	task := domain.Task{Name: domain.NewInternedString(domain.TaskDefault), Kind: domain.KindAggregate}

	require.NoError(t, newExecutor(r).Execute(context.Background(), &task, nil))
	assert.Empty(t, r.calls)
}

func TestExecutor_UnknownKind(t *testing.T) {
	r := &recorder{}
	task := domain.Task{Name: domain.NewInternedString(domain.TaskImages), Kind: domain.KindImage}

	err := newExecutor(r).Execute(context.Background(), &task, nil)
	require.ErrorIs(t, err, domain.ErrUnknownTaskKind)
	assert.Empty(t, r.calls)
}

func TestExecutor_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	r := &recorder{err: boom}
	task := domain.Task{Name: domain.NewInternedString(domain.TaskClean), Kind: domain.KindClean}

	require.ErrorIs(t, newExecutor(r).Execute(context.Background(), &task, nil), boom)
}
