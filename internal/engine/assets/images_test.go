package assets_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/assets"
	"go.uber.org/mock/gomock"
)

func TestImageBuilder_MirrorsTree(t *testing.T) {
	p := newProject(t, map[string]string{
		"src/images/logo.png":        "png-original",
		"src/images/icons/arrow.svg": "<svg></svg>",
		"src/images/photos/a.jpg":    "jpg",
		"src/images/readme.txt":      "text",
	})
	ctrl := gomock.NewController(t)
	optimizer := mocks.NewMockImageOptimizer(ctrl)

	optimizer.EXPECT().Optimize(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, path string, data []byte, _ domain.ImageOptions) ([]byte, error) {
			switch filepath.Ext(path) {
			case ".png":
				return []byte("png"), nil
			case ".jpg":
				// Larger than the source, so the source must be kept.
				return []byte("jpg-but-bigger"), nil
			default:
				return data, nil
			}
		},
	).Times(4)

	var out bytes.Buffer
	b := assets.NewImageBuilder(p, optimizer, fs.NewResolver(), fs.NewStore(), mocks.NewMockLogger(ctrl)).WithWorkers(2)
	require.NoError(t, b.Build(context.Background(), &out))

	assert.Equal(t, "png", readOutput(t, p, "img/logo.png"))
	assert.Equal(t, "jpg", readOutput(t, p, "img/photos/a.jpg"))
	assert.Equal(t, "<svg></svg>", readOutput(t, p, "img/icons/arrow.svg"))
	assert.Equal(t, "text", readOutput(t, p, "img/readme.txt"))

	lines := out.String()
	assert.Contains(t, lines, "logo.png: 12 B -> 3 B")
	assert.Contains(t, lines, "photos/a.jpg: already optimal")
	assert.Contains(t, lines, "optimized 4 image(s) into img, saved 9 B")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("icons/arrow.svg")), bytes.Index(out.Bytes(), []byte("logo.png")))
}

func TestImageBuilder_CodecErrorCopiesOriginal(t *testing.T) {
	p := newProject(t, map[string]string{
		"src/images/broken.png": "not a png",
		"src/images/ok.gif":     "gif",
	})
	ctrl := gomock.NewController(t)
	optimizer := mocks.NewMockImageOptimizer(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	codecErr := domain.WrapAs(errors.New("png: invalid format"), domain.ErrImageOptimizeFailed)
	optimizer.EXPECT().Optimize(gomock.Any(), p.ResolvePath("src/images/broken.png"), gomock.Any(), gomock.Any()).
		Return(nil, codecErr)
	optimizer.EXPECT().Optimize(gomock.Any(), p.ResolvePath("src/images/ok.gif"), gomock.Any(), gomock.Any()).
		Return([]byte("g"), nil)
	logger.EXPECT().Error(codecErr)

	var out bytes.Buffer
	b := assets.NewImageBuilder(p, optimizer, fs.NewResolver(), fs.NewStore(), logger)
	require.NoError(t, b.Build(context.Background(), &out))

	assert.Equal(t, "not a png", readOutput(t, p, "img/broken.png"))
	assert.Equal(t, "g", readOutput(t, p, "img/ok.gif"))
	assert.Contains(t, out.String(), "broken.png: copied unoptimized")
}

func TestImageBuilder_WriteFailureAbortsBatch(t *testing.T) {
	p := newProject(t, map[string]string{"src/images/logo.png": "png"})
	ctrl := gomock.NewController(t)
	optimizer := mocks.NewMockImageOptimizer(ctrl)
	store := mocks.NewMockArtifactStore(ctrl)

	optimizer.EXPECT().Optimize(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return([]byte("p"), nil)
	store.EXPECT().ReadFile(gomock.Any()).Return([]byte("png"), nil)
	writeErr := errors.New("read-only file system")
	store.EXPECT().WriteFile(gomock.Any(), gomock.Any()).Return(writeErr)

	b := assets.NewImageBuilder(p, optimizer, fs.NewResolver(), store, mocks.NewMockLogger(ctrl))
	require.ErrorIs(t, b.Build(context.Background(), nil), writeErr)
}

func TestImageBuilder_CanceledContext(t *testing.T) {
	p := newProject(t, map[string]string{"src/images/logo.png": "png"})
	ctrl := gomock.NewController(t)
	optimizer := mocks.NewMockImageOptimizer(ctrl)
	optimizer.EXPECT().Optimize(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, context.Canceled).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := assets.NewImageBuilder(p, optimizer, fs.NewResolver(), fs.NewStore(), mocks.NewMockLogger(ctrl))
	require.ErrorIs(t, b.Build(ctx, nil), context.Canceled)

	_, err := os.Stat(p.OutputPath("img/logo.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestImageBuilder_Empty(t *testing.T) {
	p := newProject(t, nil)
	ctrl := gomock.NewController(t)

	var out bytes.Buffer
	b := assets.NewImageBuilder(p, mocks.NewMockImageOptimizer(ctrl), fs.NewResolver(), fs.NewStore(), mocks.NewMockLogger(ctrl))
	require.NoError(t, b.Build(context.Background(), &out))
	assert.Equal(t, "optimized 0 image(s) into img, saved 0 B\n", out.String())
}
