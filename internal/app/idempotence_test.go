package app_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/esbuild"
	kilnfs "go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/adapters/imagemin"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func gradient() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: uint8((x ^ y) * 4), A: 255})
		}
	}
	return img
}

func encodedImages(t *testing.T) map[string][]byte {
	t.Helper()
	img := gradient()

	var p, j, g bytes.Buffer
	require.NoError(t, png.Encode(&p, img))
	require.NoError(t, jpeg.Encode(&j, img, &jpeg.Options{Quality: 100}))
	require.NoError(t, gif.Encode(&g, img, nil))

	return map[string][]byte{
		"src/images/photo.png":     p.Bytes(),
		"src/images/photo.jpg":     j.Bytes(),
		"src/images/anim/loop.gif": g.Bytes(),
		"src/images/logo.svg": []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">` +
			`<!-- editor --><rect x="0.000" y="0.000" width="10" height="10"/></svg>`),
	}
}

// fingerprint maps every file below dir to the xxhash of its content.
func fingerprint(t *testing.T, dir string) map[string]uint64 {
	t.Helper()
	sums := make(map[string]uint64)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		sums[filepath.ToSlash(rel)] = xxhash.Sum64(data)
		return nil
	})
	require.NoError(t, err)
	return sums
}

func TestApp_Run_DefaultIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := t.TempDir()

	files := map[string][]byte{
		"src/scss/b.scss":  []byte("b { c: d }"),
		"src/scss/a.scss":  []byte("a { b: c }"),
		"src/js/index.js":  []byte("import { n } from './n.js';\nconsole.log(n * 2);\n"),
		"src/js/n.js":      []byte("export const n = 21;\n"),
		"src/scss/_v.scss": []byte("$x: 1;"),
	}
	for rel, data := range encodedImages(t) {
		files[rel] = data
	}
	for rel, data := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}

	loader := mocks.NewMockConfigLoader(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	styles := mocks.NewMockStyleCompiler(ctrl)

	loader.EXPECT().Load(root).Return(domain.DefaultPipeline(root), nil).Times(2)
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	styles.EXPECT().Compile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, source []byte, _ domain.StyleOptions) ([]byte, error) {
			return bytes.ReplaceAll(source, []byte(" "), nil), nil
		}).Times(4)
	styles.EXPECT().Close().Return(nil).Times(2)

	a := app.New(loader, logger, app.Toolchain{
		Resolver: kilnfs.NewResolver(),
		Store:    kilnfs.NewStore(),
		Styles:   styles,
		Scripts:  esbuild.NewBundler(logger),
		Images:   imagemin.NewOptimizer(logger),
		Watchers: mocks.NewMockWatcherFactory(ctrl),
	}).WithWorkDir(root).WithOutput(&bytes.Buffer{}, &bytes.Buffer{})

	dist := filepath.Join(root, domain.DefaultOutputDir)

	require.NoError(t, a.Run(context.Background(), nil, app.RunOptions{Color: "never"}))
	first := fingerprint(t, dist)

	require.NoError(t, a.Run(context.Background(), nil, app.RunOptions{Color: "never"}))
	second := fingerprint(t, dist)

	assert.Len(t, first, 6)
	assert.Contains(t, first, "css/index.css")
	assert.Contains(t, first, "js/index.js")
	assert.Contains(t, first, "img/anim/loop.gif")
	assert.Equal(t, first, second)

	css, err := os.ReadFile(filepath.Join(dist, "css", "index.css"))
	require.NoError(t, err)
	assert.Equal(t, "a{b:c}\nb{c:d}\n", string(css))
}
