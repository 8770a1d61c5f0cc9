package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels bounds the decoded size of an upload. A 40 MP RGBA frame
// is about 160 MB in memory.
const DefaultMaxPixels = 40_000_000

// ImageProcessor shrinks gallery uploads to a bounded width and re-encodes
// them as JPEG.
type ImageProcessor struct {
	MaxWidth  int
	Quality   int
	MaxPixels int
}

type ProcessedImage struct {
	Data   []byte
	Width  int
	Height int
}

// Compress checks the header dimensions before decoding, so a small file
// that declares a huge canvas is rejected without allocating it.
func (p ImageProcessor) Compress(data []byte) (*ProcessedImage, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, invalidf("unsupported or corrupt image: %v", err)
	}
	maxPixels := p.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, invalidf("image has no pixels")
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, invalidf("image is %dx%d, the limit is %d megapixels", cfg.Width, cfg.Height, maxPixels/1_000_000)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, invalidf("unsupported or corrupt image: %v", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, invalidf("image has no pixels")
	}
	if p.MaxWidth > 0 && width > p.MaxWidth {
		height = height * p.MaxWidth / width
		if height < 1 {
			height = 1
		}
		width = p.MaxWidth
	}

	// JPEG has no alpha, so transparent areas are flattened onto white.
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	quality := p.Quality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode %s as jpeg: %w", format, err)
	}

	return &ProcessedImage{Data: buf.Bytes(), Width: width, Height: height}, nil
}
