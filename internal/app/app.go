// Package app implements the application layer for kiln.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/kiln/internal/adapters/detector"
	"go.trai.ch/kiln/internal/adapters/linear"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/assets"
	"go.trai.ch/kiln/internal/engine/reactor"
	"go.trai.ch/kiln/internal/engine/scheduler"
	"go.trai.ch/kiln/internal/engine/tasks"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Toolchain groups the adapters the builders delegate to.
type Toolchain struct {
	Resolver ports.InputResolver
	Store    ports.ArtifactStore
	Styles   ports.StyleCompiler
	Scripts  ports.ScriptBundler
	Images   ports.ImageOptimizer
	Watchers ports.WatcherFactory
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	tools        Toolchain
	workDir      string
	stdout       io.Writer
	stderr       io.Writer
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, log ports.Logger, tools Toolchain) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		tools:        tools,
		workDir:      ".",
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithWorkDir sets the directory the project configuration is discovered from.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// WithOutput redirects progress output. Used for testing.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// SetJSONLogs switches the logger to JSON output when it supports it.
func (a *App) SetJSONLogs(enable bool) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(enable)
	}
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// Parallelism bounds the number of concurrently running tasks. Zero selects runtime.NumCPU().
	Parallelism int
	// Color is the --color flag: auto, always or never.
	Color string
}

// Run executes the given tasks and their prerequisites. No tasks selects default.
// Interrupting a run that contains watch tasks is a normal way to end it and
// is not reported as an error.
func (a *App) Run(ctx context.Context, taskNames []string, opts RunOptions) error {
	pipeline, err := a.configLoader.Load(a.workDir)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	if len(taskNames) == 0 {
		taskNames = []string{domain.TaskDefault}
	}

	graph, err := pipeline.Graph()
	if err != nil {
		return err
	}
	for _, name := range taskNames {
		if _, ok := graph.GetTask(domain.NewInternedString(name)); !ok {
			return domain.Annotate(domain.ErrTaskNotFound, "task", name)
		}
	}

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	mode := detector.ResolveMode(detector.DetectEnvironment(), opts.Color)
	renderer := linear.NewRenderer(a.stdout, a.stderr, detector.Profile(mode))

	tp := setupOTel(renderer)
	defer func() {
		_ = tp.Shutdown(context.WithoutCancel(ctx))
	}()
	tracer := telemetry.NewOTelTracer(tp, telemetry.InstrumentationName).WithRenderer(renderer)

	defer func() {
		if err := a.tools.Styles.Close(); err != nil {
			a.logger.Warn(fmt.Sprintf("failed to stop sass compiler: %v", err))
		}
	}()

	sched := scheduler.NewScheduler(a.newExecutor(pipeline), tracer)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := renderer.Start(gctx); err != nil {
			return err
		}
		return renderer.Wait()
	})

	g.Go(func() error {
		defer func() { _ = renderer.Stop() }()

		err := sched.Run(gctx, graph, taskNames, parallelism)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil && includesWatch(graph, taskNames) && onlyCanceled(err) {
			return nil
		}
		return errors.Join(domain.ErrBuildExecutionFailed, err)
	})

	return g.Wait()
}

// Clean removes the output directory of the project.
func (a *App) Clean(ctx context.Context) error {
	pipeline, err := a.configLoader.Load(a.workDir)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	a.logger.Info(fmt.Sprintf("removing %s...", pipeline.Output))
	if err := assets.NewCleaner(pipeline, a.tools.Store).Clean(ctx, nil); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("removed %s", pipeline.Output))
	return nil
}

// TaskInfo describes a task for listing.
type TaskInfo struct {
	Name         string
	Description  string
	Dependencies []string
}

// Tasks returns every task of the project sorted by name.
func (a *App) Tasks() ([]TaskInfo, error) {
	pipeline, err := a.configLoader.Load(a.workDir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	graph, err := pipeline.Graph()
	if err != nil {
		return nil, err
	}

	names := graph.Names()
	infos := make([]TaskInfo, 0, len(names))
	for _, name := range names {
		task, _ := graph.GetTask(domain.NewInternedString(name))
		infos = append(infos, TaskInfo{
			Name:         name,
			Description:  task.Description,
			Dependencies: domain.Strings(task.Dependencies),
		})
	}
	return infos, nil
}

func (a *App) newExecutor(p *domain.Pipeline) *tasks.Executor {
	t := a.tools
	return tasks.NewExecutor(
		assets.NewCleaner(p, t.Store),
		reactor.New(t.Watchers, a.logger, p.Watch.Debounce),
	).
		WithBuilder(domain.KindStyle, assets.NewStyleBuilder(p, t.Styles, t.Resolver, t.Store, a.logger)).
		WithBuilder(domain.KindScript, assets.NewScriptBuilder(p, t.Scripts, t.Resolver, t.Store)).
		WithBuilder(domain.KindImage, assets.NewImageBuilder(p, t.Images, t.Resolver, t.Store, a.logger))
}

// setupOTel creates a provider whose spans are reported to the renderer.
func setupOTel(renderer ports.Renderer) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)),
	)
}

// includesWatch reports whether any requested task is, or depends on, a watch variant.
func includesWatch(g *domain.Graph, names []string) bool {
	seen := make(map[string]bool)
	var visit func(name string) bool
	visit = func(name string) bool {
		if seen[name] {
			return false
		}
		seen[name] = true
		task, ok := g.GetTask(domain.NewInternedString(name))
		if !ok {
			return false
		}
		if task.Watch {
			return true
		}
		for _, dep := range task.Dependencies {
			if visit(dep.String()) {
				return true
			}
		}
		return false
	}

	for _, name := range names {
		if visit(name) {
			return true
		}
	}
	return false
}

// onlyCanceled reports whether every error joined into err is a cancellation.
func onlyCanceled(err error) bool {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !onlyCanceled(e) {
				return false
			}
		}
		return true
	}
	return errors.Is(err, context.Canceled)
}
