package sass_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bep/godartsass/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/sass"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fakeTranspiler struct {
	execute  func(args godartsass.Args) (godartsass.Result, error)
	calls    []godartsass.Args
	closed   bool
	shutDown bool
}

func (f *fakeTranspiler) Execute(args godartsass.Args) (godartsass.Result, error) {
	f.calls = append(f.calls, args)
	return f.execute(args)
}

func (f *fakeTranspiler) Close() error {
	f.closed = true
	f.shutDown = true
	return nil
}

func (f *fakeTranspiler) IsShutDown() bool { return f.shutDown }

func newCompiler(t *testing.T, starts *int, ft *fakeTranspiler) *sass.Compiler {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return sass.NewCompiler(log,
		sass.WithBinary("dart-sass"),
		sass.WithStartFunc(func(opts godartsass.Options) (sass.Transpiler, error) {
			*starts++
			assert.Equal(t, "dart-sass", opts.DartSassEmbeddedFilename)
			assert.NotNil(t, opts.LogEventHandler)
			return ft, nil
		}),
	)
}

func TestCompiler_Compile(t *testing.T) {
	ft := &fakeTranspiler{execute: func(args godartsass.Args) (godartsass.Result, error) {
		return godartsass.Result{CSS: "body{color:red}"}, nil
	}}
	starts := 0
	c := newCompiler(t, &starts, ft)

	path := filepath.FromSlash("/project/src/scss/main.scss")
	css, err := c.Compile(context.Background(), path, []byte("body { color: red; }"), domain.StyleOptions{
		OutputStyle:  domain.StyleCompressed,
		IncludePaths: []string{"node_modules"},
	})
	require.NoError(t, err)
	assert.Equal(t, "body{color:red}", string(css))

	require.Len(t, ft.calls, 1)
	args := ft.calls[0]
	assert.Equal(t, "body { color: red; }", args.Source)
	assert.Equal(t, godartsass.SourceSyntaxSCSS, args.SourceSyntax)
	assert.Equal(t, godartsass.OutputStyleCompressed, args.OutputStyle)
	assert.Equal(t, []string{filepath.Dir(path), "node_modules"}, args.IncludePaths)
	assert.Equal(t, "file:///project/src/scss/main.scss", args.URL)
}

func TestCompiler_StartsOnce(t *testing.T) {
	ft := &fakeTranspiler{execute: func(godartsass.Args) (godartsass.Result, error) {
		return godartsass.Result{}, nil
	}}
	starts := 0
	c := newCompiler(t, &starts, ft)

	for range 3 {
		_, err := c.Compile(context.Background(), "a.scss", nil, domain.StyleOptions{})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, starts)

	require.NoError(t, c.Close())
	assert.True(t, ft.closed)
	require.NoError(t, c.Close(), "closing twice is a no-op")
}

func TestCompiler_RestartsAfterShutdown(t *testing.T) {
	ft := &fakeTranspiler{execute: func(godartsass.Args) (godartsass.Result, error) {
		return godartsass.Result{}, nil
	}}
	starts := 0
	c := newCompiler(t, &starts, ft)

	_, err := c.Compile(context.Background(), "a.scss", nil, domain.StyleOptions{})
	require.NoError(t, err)

	ft.shutDown = true
	_, err = c.Compile(context.Background(), "a.scss", nil, domain.StyleOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, starts)
}

func TestCompiler_ExpandedStyle(t *testing.T) {
	ft := &fakeTranspiler{execute: func(godartsass.Args) (godartsass.Result, error) {
		return godartsass.Result{}, nil
	}}
	starts := 0
	c := newCompiler(t, &starts, ft)

	_, err := c.Compile(context.Background(), "a.scss", nil, domain.StyleOptions{OutputStyle: domain.StyleExpanded})
	require.NoError(t, err)
	assert.Equal(t, godartsass.OutputStyleExpanded, ft.calls[0].OutputStyle)
}

func TestCompiler_SyntaxError(t *testing.T) {
	sassErr := godartsass.SassError{Message: "expected \";\"."}
	ft := &fakeTranspiler{execute: func(godartsass.Args) (godartsass.Result, error) {
		return godartsass.Result{}, sassErr
	}}
	starts := 0
	c := newCompiler(t, &starts, ft)

	_, err := c.Compile(context.Background(), "broken.scss", []byte("a{"), domain.StyleOptions{})
	require.ErrorIs(t, err, domain.ErrStyleCompileFailed)
	assert.NotErrorIs(t, err, domain.ErrStyleCompilerUnavailable)
	assert.Contains(t, err.Error(), "expected")

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "broken.scss", zErr.Metadata()["file"])
}

func TestCompiler_Unavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	c := sass.NewCompiler(log, sass.WithStartFunc(func(godartsass.Options) (sass.Transpiler, error) {
		return nil, errors.New("exec: \"sass\": executable file not found in $PATH")
	}))

	_, err := c.Compile(context.Background(), "a.scss", nil, domain.StyleOptions{})
	require.ErrorIs(t, err, domain.ErrStyleCompilerUnavailable)
	require.NoError(t, c.Close())
}

func TestCompiler_ShutdownDuringExecute(t *testing.T) {
	ft := &fakeTranspiler{execute: func(godartsass.Args) (godartsass.Result, error) {
		return godartsass.Result{}, godartsass.ErrShutdown
	}}
	starts := 0
	c := newCompiler(t, &starts, ft)

	_, err := c.Compile(context.Background(), "a.scss", nil, domain.StyleOptions{})
	require.ErrorIs(t, err, domain.ErrStyleCompilerUnavailable)
}

func TestCompiler_CanceledContext(t *testing.T) {
	starts := 0
	c := newCompiler(t, &starts, &fakeTranspiler{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Compile(ctx, "a.scss", nil, domain.StyleOptions{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, starts)
}
