package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

//go:generate mockgen -source=toolchain.go -destination=mocks/mock_toolchain.go -package=mocks

// StyleCompiler compiles a single stylesheet to CSS.
type StyleCompiler interface {
	// Compile transpiles source, read from path, using opts.
	// Syntax errors are returned as domain.ErrStyleCompileFailed.
	// A compiler that cannot be started yields domain.ErrStyleCompilerUnavailable.
	Compile(ctx context.Context, path string, source []byte, opts domain.StyleOptions) ([]byte, error)

	// Close releases the compiler process, if one was started.
	Close() error
}

// ScriptBundler resolves, transpiles, bundles and minifies a script entry point.
type ScriptBundler interface {
	// Bundle builds the module graph rooted at entry and returns the bundled output.
	// Nothing is written to disk. workDir anchors relative import resolution.
	Bundle(ctx context.Context, entry, workDir string, opts domain.ScriptOptions) ([]byte, error)
}

// ImageOptimizer reduces the size of a single image file.
type ImageOptimizer interface {
	// Optimize returns the optimized encoding of data. The file type is derived from path.
	// Files of an unknown type are returned unchanged.
	Optimize(ctx context.Context, path string, data []byte, opts domain.ImageOptions) ([]byte, error)
}
