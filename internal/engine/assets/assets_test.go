package assets_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

// newProject lays out files below a fresh project root and returns the
// default pipeline for it.
func newProject(t *testing.T, files map[string]string) *domain.Pipeline {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return domain.DefaultPipeline(root)
}

func readOutput(t *testing.T, p *domain.Pipeline, rel string) string {
	t.Helper()
	data, err := os.ReadFile(p.OutputPath(rel))
	require.NoError(t, err)
	return string(data)
}
