// Package esbuild bundles, transpiles and minifies scripts with esbuild.
package esbuild

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ScriptBundler = (*Bundler)(nil)

var targets = map[string]api.Target{
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"es2023": api.ES2023,
	"es2024": api.ES2024,
	"esnext": api.ESNext,
}

// Bundler implements ports.ScriptBundler in process.
type Bundler struct {
	logger ports.Logger
}

// NewBundler creates a new Bundler.
func NewBundler(logger ports.Logger) *Bundler {
	return &Bundler{logger: logger}
}

// Bundle resolves the module graph rooted at entry into a single IIFE.
func (b *Bundler) Bundle(ctx context.Context, entry, workDir string, opts domain.ScriptOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target, ok := targets[opts.Target]
	if !ok {
		err := domain.Annotate(domain.ErrInvalidConfig, "field", "scripts.target")
		return nil, zerr.With(err, "value", opts.Target)
	}

	sourcemap := api.SourceMapNone
	if opts.SourceMap {
		sourcemap = api.SourceMapInline
	}

	output := opts.Output
	if output == "" {
		output = domain.DefaultScriptOutput
	}

	result := api.Build(api.BuildOptions{
		EntryPoints:       []string{entry},
		AbsWorkingDir:     workDir,
		Outfile:           filepath.Join(workDir, output),
		Bundle:            true,
		Write:             false,
		Format:            api.FormatIIFE,
		Platform:          api.PlatformBrowser,
		Target:            target,
		MinifyWhitespace:  opts.Minify,
		MinifyIdentifiers: opts.Minify,
		MinifySyntax:      opts.Minify,
		Sourcemap:         sourcemap,
		LogLevel:          api.LogLevelSilent,
	})

	for _, warning := range formatMessages(result.Warnings, api.WarningMessage) {
		b.logger.Warn(warning)
	}

	if len(result.Errors) > 0 {
		details := strings.Join(formatMessages(result.Errors, api.ErrorMessage), "\n")
		err := domain.WrapAs(errors.New(details), domain.ErrScriptBundleFailed)
		err = zerr.With(err, "entry", entry)
		return nil, zerr.With(err, "errors", len(result.Errors))
	}

	for _, file := range result.OutputFiles {
		if strings.HasSuffix(file.Path, ".js") {
			return file.Contents, nil
		}
	}

	err := domain.WrapAs(fmt.Errorf("no script output among %d files", len(result.OutputFiles)),
		domain.ErrScriptBundleFailed)
	return nil, zerr.With(err, "entry", entry)
}

func formatMessages(msgs []api.Message, kind api.MessageKind) []string {
	if len(msgs) == 0 {
		return nil
	}
	formatted := api.FormatMessages(msgs, api.FormatMessagesOptions{Kind: kind})
	out := make([]string, 0, len(formatted))
	for _, f := range formatted {
		out = append(out, strings.TrimRight(f, "\n"))
	}
	return out
}
