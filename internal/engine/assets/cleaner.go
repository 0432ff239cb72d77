package assets

import (
	"context"
	"io"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// Cleaner removes the output root.
type Cleaner struct {
	pipeline *domain.Pipeline
	store    ports.ArtifactStore
}

// NewCleaner creates a Cleaner for the output root of p.
func NewCleaner(p *domain.Pipeline, store ports.ArtifactStore) *Cleaner {
	return &Cleaner{pipeline: p, store: store}
}

// Clean deletes the output directory tree. A missing directory is not an error.
func (c *Cleaner) Clean(ctx context.Context, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.pipeline.ValidateOutput(); err != nil {
		return err
	}

	dir := c.pipeline.OutputDir()
	if err := c.store.RemoveAll(dir); err != nil {
		return err
	}
	progress(out, "removed %s", c.pipeline.Output)
	return nil
}
