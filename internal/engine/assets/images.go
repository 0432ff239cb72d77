package assets

import (
	"cmp"
	"context"
	"errors"
	"io"
	"path/filepath"
	"runtime"
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

var _ Builder = (*ImageBuilder)(nil)

// ImageBuilder optimizes every image and mirrors the tree under the output root.
type ImageBuilder struct {
	pipeline  *domain.Pipeline
	optimizer ports.ImageOptimizer
	resolver  ports.InputResolver
	store     ports.ArtifactStore
	logger    ports.Logger
	workers   int
}

// NewImageBuilder creates an ImageBuilder that processes up to runtime.NumCPU() files at once.
func NewImageBuilder(
	p *domain.Pipeline,
	optimizer ports.ImageOptimizer,
	resolver ports.InputResolver,
	store ports.ArtifactStore,
	logger ports.Logger,
) *ImageBuilder {
	return &ImageBuilder{
		pipeline:  p,
		optimizer: optimizer,
		resolver:  resolver,
		store:     store,
		logger:    logger,
		workers:   runtime.NumCPU(),
	}
}

// WithWorkers bounds the number of files optimized concurrently.
func (b *ImageBuilder) WithWorkers(n int) *ImageBuilder {
	b.workers = max(n, 1)
	return b
}

// Sources returns the image tree.
func (b *ImageBuilder) Sources() Sources {
	return Sources{Root: b.pipeline.ResolvePath(b.pipeline.Images.Root), Glob: b.pipeline.Images.Glob}
}

// Build writes exactly one output file per source file. A file the codec
// rejects is logged and copied verbatim; an I/O failure aborts the batch.
func (b *ImageBuilder) Build(ctx context.Context, out io.Writer) error {
	src := b.Sources()
	files, err := b.resolver.ResolveInputs([]string{src.Glob}, src.Root)
	if err != nil {
		return err
	}

	var report domain.BatchReport
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for _, file := range files {
		g.Go(func() error {
			res, err := b.process(gctx, src.Root, file)
			if err != nil {
				return err
			}
			report.Add(res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	results := report.Results()
	slices.SortFunc(results, func(x, y domain.FileResult) int { return cmp.Compare(x.Source, y.Source) })

	var in, written int
	for _, r := range results {
		in += r.BytesIn
		written += r.BytesOut
		switch {
		case r.Failed():
			progress(out, "%s: copied unoptimized", r.Source)
		case r.BytesOut < r.BytesIn:
			progress(out, "%s: %s -> %s", r.Source, formatBytes(r.BytesIn), formatBytes(r.BytesOut))
		default:
			progress(out, "%s: already optimal", r.Source)
		}
	}
	progress(out, "optimized %d image(s) into %s, saved %s", len(results), b.pipeline.Images.Output, formatBytes(in-written))
	return nil
}

func (b *ImageBuilder) process(ctx context.Context, root, file string) (domain.FileResult, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return domain.FileResult{}, domain.Annotate(domain.ErrInputResolutionFailed, "path", file)
	}

	data, err := b.store.ReadFile(file)
	if err != nil {
		return domain.FileResult{}, err
	}

	optimized, codecErr := b.optimizer.Optimize(ctx, file, data, b.pipeline.Images)
	switch {
	case codecErr != nil && (errors.Is(codecErr, context.Canceled) || errors.Is(codecErr, context.DeadlineExceeded)):
		return domain.FileResult{}, codecErr
	case codecErr != nil:
		b.logger.Error(codecErr)
		optimized = data
	case len(optimized) >= len(data):
		optimized = data
	}

	dst := b.pipeline.OutputPath(filepath.Join(b.pipeline.Images.Output, rel))
	if err := b.store.WriteFile(dst, optimized); err != nil {
		return domain.FileResult{}, err
	}

	return domain.FileResult{
		Source:   filepath.ToSlash(rel),
		Output:   dst,
		BytesIn:  len(data),
		BytesOut: len(optimized),
		Err:      codecErr,
	}, nil
}
