package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ Builder = (*StyleBuilder)(nil)

// StyleBuilder compiles every stylesheet and concatenates the results into one file.
type StyleBuilder struct {
	pipeline *domain.Pipeline
	compiler ports.StyleCompiler
	resolver ports.InputResolver
	store    ports.ArtifactStore
	logger   ports.Logger
}

// NewStyleBuilder creates a StyleBuilder.
func NewStyleBuilder(
	p *domain.Pipeline,
	compiler ports.StyleCompiler,
	resolver ports.InputResolver,
	store ports.ArtifactStore,
	logger ports.Logger,
) *StyleBuilder {
	return &StyleBuilder{
		pipeline: p,
		compiler: compiler,
		resolver: resolver,
		store:    store,
		logger:   logger,
	}
}

// Sources returns the stylesheet tree, partials included.
func (b *StyleBuilder) Sources() Sources {
	return Sources{Root: b.pipeline.ResolvePath(b.pipeline.Styles.Root), Glob: b.pipeline.Styles.Glob}
}

// Build compiles the stylesheets in lexical path order. A stylesheet that fails
// to compile is logged and the output file is left untouched; that outcome is
// not an error. An unavailable compiler or an I/O failure is.
func (b *StyleBuilder) Build(ctx context.Context, out io.Writer) error {
	src := b.Sources()
	files, err := b.resolver.ResolveInputs([]string{src.Glob}, src.Root)
	if err != nil {
		return err
	}

	opts := b.pipeline.Styles
	opts.IncludePaths = make([]string, len(b.pipeline.Styles.IncludePaths))
	for i, p := range b.pipeline.Styles.IncludePaths {
		opts.IncludePaths[i] = b.pipeline.ResolvePath(p)
	}

	var report domain.BatchReport
	var compiled [][]byte
	for _, file := range files {
		if isPartial(file) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		source, err := b.store.ReadFile(file)
		if err != nil {
			return err
		}

		css, err := b.compiler.Compile(ctx, file, source, opts)
		if errors.Is(err, domain.ErrStyleCompilerUnavailable) {
			return err
		}
		rel := b.relative(file)
		report.Add(domain.FileResult{Source: rel, BytesIn: len(source), BytesOut: len(css), Err: err})
		if err != nil {
			b.logger.Error(err)
			continue
		}
		compiled = append(compiled, bytes.TrimRight(css, "\n"))
	}

	if failed := report.Failed(); failed > 0 {
		b.logger.Warn(fmt.Sprintf("%s: %d of %d failed", domain.ErrStyleBuildIncomplete, failed, report.Len()))
		progress(out, "%d of %d stylesheet(s) failed, kept previous %s", failed, report.Len(), opts.Output)
		return nil
	}
	if report.Len() == 0 {
		progress(out, "no stylesheets matched %s", src.Glob)
		return nil
	}

	css := append(bytes.Join(compiled, []byte("\n")), '\n')
	if err := b.store.WriteFile(b.pipeline.OutputPath(opts.Output), css); err != nil {
		return err
	}
	progress(out, "compiled %d stylesheet(s) into %s (%s)", report.Len(), opts.Output, formatBytes(len(css)))
	return nil
}

func (b *StyleBuilder) relative(file string) string {
	if rel, err := filepath.Rel(b.pipeline.Root, file); err == nil {
		return filepath.ToSlash(rel)
	}
	return file
}

// isPartial reports whether file is a Sass partial, which is only compiled
// through the stylesheets that import it.
func isPartial(file string) bool {
	return strings.HasPrefix(filepath.Base(file), "_")
}
