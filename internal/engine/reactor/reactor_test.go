package reactor_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/assets"
	"go.trai.ch/kiln/internal/engine/reactor"
	"go.uber.org/mock/gomock"
)

const jsRoot = "/project/src/js"

// fakeBuilder counts builds and can be made slow or failing.
type fakeBuilder struct {
	mu       sync.Mutex
	builds   int
	duration time.Duration
	errs     []error
}

func (b *fakeBuilder) Build(_ context.Context, out io.Writer) error {
	b.mu.Lock()
	b.builds++
	n := b.builds
	var err error
	if n <= len(b.errs) {
		err = b.errs[n-1]
	}
	d := b.duration
	b.mu.Unlock()

	if d > 0 {
		time.Sleep(d)
	}
	_, _ = io.WriteString(out, "built\n")
	return err
}

func (b *fakeBuilder) Sources() assets.Sources {
	return assets.Sources{Root: jsRoot, Glob: "**/*.js"}
}

func (b *fakeBuilder) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.builds
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func chanSeq(ch <-chan ports.WatchEvent) iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for ev := range ch {
			if !yield(ev) {
				return
			}
		}
	}
}

// setupWatcher returns a factory whose watcher replays events sent on the returned channel.
func setupWatcher(t *testing.T, ctrl *gomock.Controller) (*mocks.MockWatcherFactory, chan ports.WatchEvent) {
	t.Helper()
	events := make(chan ports.WatchEvent)
	w := mocks.NewMockWatcher(ctrl)
	w.EXPECT().Start(gomock.Any(), jsRoot).Return(nil)
	w.EXPECT().Events().Return(chanSeq(events))
	w.EXPECT().Stop().DoAndReturn(func() error {
		close(events)
		return nil
	})

	factory := mocks.NewMockWatcherFactory(ctrl)
	factory.EXPECT().NewWatcher().Return(w, nil)
	return factory, events
}

func TestReactor_RebuildsOnMatchingChange(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		factory, events := setupWatcher(t, ctrl)
		b := &fakeBuilder{}
		var out syncBuffer

		r := reactor.New(factory, mocks.NewMockLogger(ctrl), 50*time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- r.Run(ctx, b, &out) }()

		synctest.Wait()
		require.Equal(t, 1, b.count())

		events <- ports.WatchEvent{Path: jsRoot + "/lib/a.js", Operation: ports.OpWrite}
		events <- ports.WatchEvent{Path: jsRoot + "/index.js", Operation: ports.OpWrite}
		events <- ports.WatchEvent{Path: jsRoot + "/notes.md", Operation: ports.OpWrite}
		events <- ports.WatchEvent{Path: "/project/src/scss/main.scss", Operation: ports.OpWrite}

		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 2, b.count())
		assert.Contains(t, out.String(), "watching **/*.js")
		assert.Contains(t, out.String(), "index.js and 1 more changed, rebuilding")

		// Non-matching events alone never trigger a build.
		events <- ports.WatchEvent{Path: jsRoot + "/notes.md", Operation: ports.OpCreate}
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 2, b.count())

		cancel()
		require.NoError(t, <-done)
	})
}

func TestReactor_SerializesRebuilds(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		factory, events := setupWatcher(t, ctrl)
		b := &fakeBuilder{}

		r := reactor.New(factory, mocks.NewMockLogger(ctrl), 10*time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- r.Run(ctx, b, nil) }()
		synctest.Wait()

		b.mu.Lock()
		b.duration = time.Second
		b.mu.Unlock()

		events <- ports.WatchEvent{Path: jsRoot + "/a.js", Operation: ports.OpWrite}
		time.Sleep(20 * time.Millisecond) // first rebuild starts

		// Three bursts while the rebuild runs.
		for _, name := range []string{"b.js", "c.js", "d.js"} {
			events <- ports.WatchEvent{Path: jsRoot + "/" + name, Operation: ports.OpWrite}
			time.Sleep(20 * time.Millisecond)
		}

		time.Sleep(5 * time.Second)
		synctest.Wait()
		assert.Equal(t, 3, b.count())

		cancel()
		require.NoError(t, <-done)
	})
}

func TestReactor_BuildErrorsAreLogged(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		factory, events := setupWatcher(t, ctrl)
		logger := mocks.NewMockLogger(ctrl)

		initial := errors.New("unexpected token")
		again := errors.New("still broken")
		b := &fakeBuilder{errs: []error{initial, again}}

		logger.EXPECT().Error(initial)
		logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
			require.ErrorIs(t, err, again)
			assert.Contains(t, err.Error(), domain.ErrRebuildFailed.Error())
		})

		r := reactor.New(factory, logger, 50*time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- r.Run(ctx, b, nil) }()
		synctest.Wait()

		events <- ports.WatchEvent{Path: jsRoot + "/index.js", Operation: ports.OpWrite}
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		events <- ports.WatchEvent{Path: jsRoot + "/index.js", Operation: ports.OpWrite}
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 3, b.count())

		cancel()
		require.NoError(t, <-done)
	})
}

func TestReactor_WatcherStartFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := mocks.NewMockWatcher(ctrl)
	w.EXPECT().Start(gomock.Any(), jsRoot).Return(errors.New("no such directory"))
	w.EXPECT().Stop().Return(nil)
	factory := mocks.NewMockWatcherFactory(ctrl)
	factory.EXPECT().NewWatcher().Return(w, nil)

	b := &fakeBuilder{}
	err := reactor.New(factory, mocks.NewMockLogger(ctrl), time.Millisecond).Run(context.Background(), b, nil)
	require.ErrorIs(t, err, domain.ErrWatcherStartFailed)
	assert.Equal(t, 1, b.count())
}

func TestReactor_FactoryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	factory := mocks.NewMockWatcherFactory(ctrl)
	factory.EXPECT().NewWatcher().Return(nil, errors.New("too many open files"))

	err := reactor.New(factory, mocks.NewMockLogger(ctrl), time.Millisecond).Run(context.Background(), &fakeBuilder{}, nil)
	require.ErrorIs(t, err, domain.ErrWatcherStartFailed)
}

func TestMatches(t *testing.T) {
	src := assets.Sources{Root: "/project/src/scss", Glob: "**/*.scss"}

	tests := []struct {
		path string
		want bool
	}{
		{"/project/src/scss/main.scss", true},
		{"/project/src/scss/components/_button.scss", true},
		{"/project/src/scss/readme.md", false},
		{"/project/src/scss", false},
		{"/project/src/js/main.scss", false},
		{"/project/src/scss-old/main.scss", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, reactor.Matches(src, tt.path))
		})
	}
}
