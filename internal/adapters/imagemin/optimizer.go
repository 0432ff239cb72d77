// Package imagemin shrinks PNG, JPEG, GIF and SVG files.
package imagemin

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/svg"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	mediaSVG = "image/svg+xml"
	mediaCSS = "text/css"

	paletteSize = 256
)

var _ ports.ImageOptimizer = (*Optimizer)(nil)

// Optimizer implements ports.ImageOptimizer with pure Go codecs.
type Optimizer struct {
	logger ports.Logger

	progressiveOnce sync.Once
	interlacedOnce  sync.Once
}

// NewOptimizer creates a new Optimizer.
func NewOptimizer(logger ports.Logger) *Optimizer {
	return &Optimizer{logger: logger}
}

// Optimize re-encodes data according to the extension of path.
func (o *Optimizer) Optimize(ctx context.Context, path string, data []byte, opts domain.ImageOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		out []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		out, err = o.optimizePNG(data, opts)
	case ".jpg", ".jpeg":
		out, err = o.optimizeJPEG(data, opts)
	case ".gif":
		out, err = o.optimizeGIF(data, opts)
	case ".svg":
		out, err = optimizeSVG(data, opts)
	default:
		return data, nil
	}
	if err != nil {
		return nil, zerr.With(domain.WrapAs(err, domain.ErrImageOptimizeFailed), "file", path)
	}
	return out, nil
}

func (o *Optimizer) optimizePNG(data []byte, opts domain.ImageOptions) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if _, paletted := img.(*image.Paletted); opts.Quantize && !paletted {
		img = quantizeImage(img)
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// quantizeImage reduces img to a median-cut palette with Floyd-Steinberg dithering.
func quantizeImage(img image.Image) *image.Paletted {
	q := quantize.MedianCutQuantizer{AddTransparent: hasTransparency(img)}
	palette := q.Quantize(make(color.Palette, 0, paletteSize), img)

	bounds := img.Bounds()
	dst := image.NewPaletted(bounds, palette)
	draw.FloydSteinberg.Draw(dst, bounds, img, bounds.Min)
	return dst
}

func hasTransparency(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return false
}

func (o *Optimizer) optimizeJPEG(data []byte, opts domain.ImageOptions) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if opts.Progressive {
		o.progressiveOnce.Do(func() {
			o.logger.Warn("progressive JPEG encoding is not supported, writing baseline JPEG")
		})
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.JPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *Optimizer) optimizeGIF(data []byte, opts domain.ImageOptions) ([]byte, error) {
	anim, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if opts.Interlaced {
		o.interlacedOnce.Do(func() {
			o.logger.Warn("interlaced GIF encoding is not supported, writing non-interlaced GIF")
		})
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func optimizeSVG(data []byte, opts domain.ImageOptions) ([]byte, error) {
	m := minify.New()
	m.AddFunc(mediaCSS, css.Minify)
	m.Add(mediaSVG, &svg.Minifier{Precision: opts.SVGPrecision})
	return m.Bytes(mediaSVG, data)
}
