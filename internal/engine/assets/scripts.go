package assets

import (
	"context"
	"io"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ Builder = (*ScriptBuilder)(nil)

// ScriptBuilder bundles the entry script and its module graph into one file.
type ScriptBuilder struct {
	pipeline *domain.Pipeline
	bundler  ports.ScriptBundler
	resolver ports.InputResolver
	store    ports.ArtifactStore
}

// NewScriptBuilder creates a ScriptBuilder.
func NewScriptBuilder(
	p *domain.Pipeline,
	bundler ports.ScriptBundler,
	resolver ports.InputResolver,
	store ports.ArtifactStore,
) *ScriptBuilder {
	return &ScriptBuilder{
		pipeline: p,
		bundler:  bundler,
		resolver: resolver,
		store:    store,
	}
}

// Sources returns every script below the script root, since any module may
// be part of the entry's graph.
func (b *ScriptBuilder) Sources() Sources {
	return Sources{Root: b.pipeline.ResolvePath(b.pipeline.Scripts.Root), Glob: b.pipeline.Scripts.Glob}
}

// Build bundles the entry in memory and writes the result atomically.
// On failure nothing is written and the previous bundle survives.
func (b *ScriptBuilder) Build(ctx context.Context, out io.Writer) error {
	root := b.pipeline.ResolvePath(b.pipeline.Scripts.Root)
	entry := filepath.Join(root, b.pipeline.Scripts.Entry)

	found, err := b.resolver.ResolveInputs([]string{b.pipeline.Scripts.Entry}, root)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return domain.Annotate(domain.ErrInputNotFound, "entry", entry)
	}

	// Output is project relative so source map paths point back at the sources.
	opts := b.pipeline.Scripts
	opts.Output = filepath.Join(b.pipeline.Output, b.pipeline.Scripts.Output)

	bundle, err := b.bundler.Bundle(ctx, entry, b.pipeline.Root, opts)
	if err != nil {
		return err
	}

	if err := b.store.WriteFile(b.pipeline.OutputPath(b.pipeline.Scripts.Output), bundle); err != nil {
		return err
	}
	progress(out, "bundled %s into %s (%s)", b.pipeline.Scripts.Entry, b.pipeline.Scripts.Output, formatBytes(len(bundle)))
	return nil
}
