// Package sass compiles SCSS through the Dart Sass embedded protocol.
package sass

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bep/godartsass/v2"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultBinary is the Dart Sass executable looked up on PATH.
const DefaultBinary = "sass"

// DefaultTimeout bounds a single compilation.
const DefaultTimeout = 30 * time.Second

var _ ports.StyleCompiler = (*Compiler)(nil)

// Transpiler is the subset of *godartsass.Transpiler used by the compiler.
type Transpiler interface {
	Execute(args godartsass.Args) (godartsass.Result, error)
	Close() error
	IsShutDown() bool
}

// StartFunc starts a Transpiler.
type StartFunc func(opts godartsass.Options) (Transpiler, error)

func startDartSass(opts godartsass.Options) (Transpiler, error) {
	t, err := godartsass.Start(opts)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Compiler implements ports.StyleCompiler. The Dart Sass process is started
// on first use and restarted if it shuts down.
type Compiler struct {
	logger  ports.Logger
	binary  string
	timeout time.Duration
	start   StartFunc

	mu sync.Mutex
	t  Transpiler
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithBinary sets the Dart Sass executable.
func WithBinary(path string) Option {
	return func(c *Compiler) { c.binary = path }
}

// WithTimeout bounds each compilation.
func WithTimeout(d time.Duration) Option {
	return func(c *Compiler) { c.timeout = d }
}

// WithStartFunc replaces the function that starts the Dart Sass process.
func WithStartFunc(start StartFunc) Option {
	return func(c *Compiler) { c.start = start }
}

// NewCompiler creates a Compiler. No process is started until the first Compile.
func NewCompiler(logger ports.Logger, opts ...Option) *Compiler {
	c := &Compiler{
		logger:  logger,
		binary:  DefaultBinary,
		timeout: DefaultTimeout,
		start:   startDartSass,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile transpiles a single SCSS source.
func (c *Compiler) Compile(
	ctx context.Context, path string, source []byte, opts domain.StyleOptions,
) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := c.ensureStarted()
	if err != nil {
		return nil, err
	}

	res, err := t.Execute(godartsass.Args{
		Source:       string(source),
		URL:          fileURL(path),
		SourceSyntax: godartsass.SourceSyntaxSCSS,
		OutputStyle:  outputStyle(opts.OutputStyle),
		IncludePaths: includePaths(path, opts.IncludePaths),
	})
	if err != nil {
		var sassErr godartsass.SassError
		if errors.As(err, &sassErr) {
			return nil, zerr.With(domain.WrapAs(sassErr, domain.ErrStyleCompileFailed), "file", path)
		}
		if errors.Is(err, godartsass.ErrShutdown) {
			return nil, zerr.With(domain.WrapAs(err, domain.ErrStyleCompilerUnavailable), "binary", c.binary)
		}
		return nil, zerr.With(domain.WrapAs(err, domain.ErrStyleCompileFailed), "file", path)
	}

	return []byte(res.CSS), nil
}

// Close shuts the Dart Sass process down, if it was started.
func (c *Compiler) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.t == nil {
		return nil
	}
	t := c.t
	c.t = nil
	if err := t.Close(); err != nil && !errors.Is(err, godartsass.ErrShutdown) {
		return zerr.Wrap(err, "failed to stop sass compiler")
	}
	return nil
}

func (c *Compiler) ensureStarted() (Transpiler, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.t != nil && !c.t.IsShutDown() {
		return c.t, nil
	}

	t, err := c.start(godartsass.Options{
		DartSassEmbeddedFilename: c.binary,
		Timeout:                  c.timeout,
		LogEventHandler:          c.logEvent,
	})
	if err != nil {
		return nil, zerr.With(domain.WrapAs(err, domain.ErrStyleCompilerUnavailable), "binary", c.binary)
	}
	c.t = t
	return t, nil
}

func (c *Compiler) logEvent(e godartsass.LogEvent) {
	switch e.Type {
	case godartsass.LogEventTypeDebug:
		c.logger.Info(fmt.Sprintf("sass: %s", e.Message))
	case godartsass.LogEventTypeDeprecated:
		c.logger.Warn(fmt.Sprintf("sass deprecation (%s): %s", e.DeprecationType, e.Message))
	default:
		c.logger.Warn(fmt.Sprintf("sass: %s", e.Message))
	}
}

func outputStyle(s domain.StyleOutputStyle) godartsass.OutputStyle {
	if s == domain.StyleExpanded {
		return godartsass.OutputStyleExpanded
	}
	return godartsass.OutputStyleCompressed
}

// includePaths puts the source's own directory first so relative imports
// resolve the way they do on disk.
func includePaths(path string, extra []string) []string {
	paths := make([]string, 0, len(extra)+1)
	paths = append(paths, filepath.Dir(path))
	return append(paths, extra...)
}

func fileURL(path string) string {
	if !filepath.IsAbs(path) {
		return ""
	}
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return "file://" + slashed
}
