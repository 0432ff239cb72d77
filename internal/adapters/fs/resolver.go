package fs

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements the InputResolver interface using doublestar globs.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// ResolveInputs resolves the given input patterns to a list of concrete file paths.
// A pattern below a missing directory matches nothing.
func (r *Resolver) ResolveInputs(inputs []string, root string) ([]string, error) {
	uniquePaths := make(map[string]struct{})

	for _, input := range inputs {
		pattern := input
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(root, input)
		}

		base, rel := doublestar.SplitPattern(filepath.ToSlash(pattern))
		if !doublestar.ValidatePattern(rel) {
			return nil, zerr.With(zerr.Wrap(doublestar.ErrBadPattern, domain.ErrInputResolutionFailed.Error()),
				"pattern", input)
		}

		matches, err := doublestar.Glob(os.DirFS(filepath.FromSlash(base)), rel,
			doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrInputResolutionFailed.Error()), "pattern", input)
		}

		for _, match := range matches {
			uniquePaths[filepath.Join(filepath.FromSlash(base), filepath.FromSlash(match))] = struct{}{}
		}
	}

	result := make([]string, 0, len(uniquePaths))
	for path := range uniquePaths {
		result = append(result, path)
	}
	slices.Sort(result)

	return result, nil
}
