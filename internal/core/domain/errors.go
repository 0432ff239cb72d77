package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrMissingDependency is returned when a task references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTaskNotFound is returned when a requested task is not found in the graph.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrBuildExecutionFailed is returned when the build execution fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrTaskExecutionFailed is returned when a task execution fails.
	ErrTaskExecutionFailed = zerr.New("task execution failed")

	// ErrUnknownTaskKind is returned when the executor has no builder for a task.
	ErrUnknownTaskKind = zerr.New("no builder registered for task kind")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a config value is out of range.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrOutputPathOutsideRoot is returned when the output directory escapes or equals the project root.
	ErrOutputPathOutsideRoot = zerr.New("output path is outside project root")

	// ErrFailedToGetRoot is returned when the project root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of project root")

	// ErrFailedToCleanOutput is returned when removing the output directory fails.
	ErrFailedToCleanOutput = zerr.New("failed to clean output directory")

	// ErrInputResolutionFailed is returned when a source glob cannot be expanded.
	ErrInputResolutionFailed = zerr.New("failed to resolve inputs")

	// ErrInputNotFound is returned when a required input such as the script entry is missing.
	ErrInputNotFound = zerr.New("input not found")

	// ErrFileReadFailed is returned when a source file cannot be read.
	ErrFileReadFailed = zerr.New("failed to read file")

	// ErrFileWriteFailed is returned when an artifact cannot be written.
	ErrFileWriteFailed = zerr.New("failed to write file")

	// ErrStyleCompileFailed is returned when a stylesheet fails to compile.
	ErrStyleCompileFailed = zerr.New("failed to compile stylesheet")

	// ErrStyleCompilerUnavailable is returned when the Sass compiler cannot be started.
	ErrStyleCompilerUnavailable = zerr.New("sass compiler is not available")

	// ErrStyleBuildIncomplete is reported when some stylesheets failed and the output was left untouched.
	ErrStyleBuildIncomplete = zerr.New("stylesheets failed to compile, output left unchanged")

	// ErrScriptBundleFailed is returned when bundling the entry script fails.
	ErrScriptBundleFailed = zerr.New("failed to bundle scripts")

	// ErrImageOptimizeFailed is returned when an image cannot be optimized.
	ErrImageOptimizeFailed = zerr.New("failed to optimize image")

	// ErrWatcherStartFailed is returned when the file watcher cannot be started.
	ErrWatcherStartFailed = zerr.New("failed to start file watcher")

	// ErrRebuildFailed is reported when a rebuild triggered by a file change fails.
	ErrRebuildFailed = zerr.New("rebuild failed")
)

// Annotate attaches metadata to a sentinel error. The result still matches
// the sentinel with errors.Is.
func Annotate(sentinel error, key string, value any) error {
	return zerr.With(zerr.Wrap(sentinel, ""), key, value)
}

// WrapAs wraps cause with the message of sentinel. The result matches both
// the sentinel and the cause with errors.Is.
func WrapAs(cause, sentinel error) error {
	if cause == nil {
		return nil
	}
	z, _ := zerr.Wrap(cause, sentinel.Error()).(*zerr.Error)
	return &sentinelError{err: z, sentinel: sentinel}
}

type sentinelError struct {
	err      *zerr.Error
	sentinel error
}

func (e *sentinelError) Error() string            { return e.err.Error() }
func (e *sentinelError) Message() string          { return e.err.Message() }
func (e *sentinelError) Metadata() map[string]any { return e.err.Metadata() }
func (e *sentinelError) Unwrap() error            { return e.err.Unwrap() }

func (e *sentinelError) Is(target error) bool {
	return target == e.sentinel
}
