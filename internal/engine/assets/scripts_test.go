package assets_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/assets"
	"go.uber.org/mock/gomock"
)

func TestScriptBuilder_WritesBundle(t *testing.T) {
	p := newProject(t, map[string]string{"src/js/index.js": "import './a.js';"})
	ctrl := gomock.NewController(t)
	bundler := mocks.NewMockScriptBundler(ctrl)

	bundler.EXPECT().Bundle(gomock.Any(), p.ResolvePath("src/js/index.js"), p.Root, gomock.Any()).DoAndReturn(
		func(_ context.Context, _, _ string, opts domain.ScriptOptions) ([]byte, error) {
			assert.Equal(t, "dist/js/index.js", opts.Output)
			assert.Equal(t, "es2015", opts.Target)
			assert.True(t, opts.SourceMap)
			return []byte("(()=>{})();\n"), nil
		},
	)

	var out bytes.Buffer
	b := assets.NewScriptBuilder(p, bundler, fs.NewResolver(), fs.NewStore())
	require.NoError(t, b.Build(context.Background(), &out))

	assert.Equal(t, "(()=>{})();\n", readOutput(t, p, "js/index.js"))
	assert.Contains(t, out.String(), "bundled index.js into js/index.js (12 B)")
}

func TestScriptBuilder_FailureKeepsPreviousBundle(t *testing.T) {
	p := newProject(t, map[string]string{
		"src/js/index.js":  "let = ;",
		"dist/js/index.js": "previous",
	})
	ctrl := gomock.NewController(t)
	bundler := mocks.NewMockScriptBundler(ctrl)

	bundleErr := domain.WrapAs(errors.New("index.js:1:4: Expected identifier"), domain.ErrScriptBundleFailed)
	bundler.EXPECT().Bundle(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, bundleErr)

	b := assets.NewScriptBuilder(p, bundler, fs.NewResolver(), fs.NewStore())
	err := b.Build(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrScriptBundleFailed)
	assert.Equal(t, "previous", readOutput(t, p, "js/index.js"))
}

func TestScriptBuilder_MissingEntry(t *testing.T) {
	p := newProject(t, map[string]string{"src/js/other.js": ""})
	ctrl := gomock.NewController(t)
	bundler := mocks.NewMockScriptBundler(ctrl)
	bundler.EXPECT().Bundle(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	b := assets.NewScriptBuilder(p, bundler, fs.NewResolver(), fs.NewStore())
	err := b.Build(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrInputNotFound)
}

func TestScriptBuilder_Sources(t *testing.T) {
	p := newProject(t, nil)
	b := assets.NewScriptBuilder(p, nil, fs.NewResolver(), fs.NewStore())

	assert.Equal(t, assets.Sources{Root: p.ResolvePath("src/js"), Glob: "**/*.js"}, b.Sources())
}
