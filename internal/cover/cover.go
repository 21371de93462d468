package cover

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

const (
	// DefaultMaxSize bounds the longest edge of an uploaded cover in pixels.
	DefaultMaxSize = 1000
	// DefaultQuality is the JPEG quality used when a cover is re-encoded.
	DefaultQuality = 90
)

// Options controls cover normalisation.
type Options struct {
	MaxSize int
	Quality int
}

func (o Options) withDefaults() Options {
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultMaxSize
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	return o
}

// Fits reports whether width and height already sit within maxSize.
func Fits(width, height, maxSize int) bool {
	return width <= maxSize && height <= maxSize
}

// Scale returns dimensions that fit inside a maxSize square while keeping
// the aspect ratio. Dimensions already inside the box are returned as-is.
func Scale(width, height, maxSize int) (int, int) {
	if width <= 0 || height <= 0 || Fits(width, height, maxSize) {
		return width, height
	}
	if width >= height {
		scaled := int(float64(height) * float64(maxSize) / float64(width))
		return maxSize, max(scaled, 1)
	}
	scaled := int(float64(width) * float64(maxSize) / float64(height))
	return max(scaled, 1), maxSize
}

// Resize decodes a JPEG or PNG image, scales it down to fit opts.MaxSize and
// returns JPEG bytes.
func Resize(data []byte, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode cover: %w", err)
	}

	bounds := img.Bounds()
	width, height := Scale(bounds.Dx(), bounds.Dy(), opts.MaxSize)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("encode cover: %w", err)
	}
	return buf.Bytes(), nil
}

// Normalize prepares the cover at src for upload. Images that already fit
// are returned unchanged with changed=false. Larger images are written as
// JPEG into dir and the new path is returned.
func Normalize(src, dir string, opts Options) (path string, changed bool, err error) {
	opts = opts.withDefaults()

	f, err := os.Open(src)
	if err != nil {
		return "", false, err
	}
	cfg, _, err := image.DecodeConfig(f)
	_ = f.Close()
	if err != nil {
		return "", false, fmt.Errorf("inspect cover %s: %w", filepath.Base(src), err)
	}
	if Fits(cfg.Width, cfg.Height, opts.MaxSize) {
		return src, false, nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return "", false, err
	}
	resized, err := Resize(data, opts)
	if err != nil {
		return "", false, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("create cover dir: %w", err)
	}
	out, err := os.CreateTemp(dir, "cover-*.jpg")
	if err != nil {
		return "", false, fmt.Errorf("create cover file: %w", err)
	}
	if _, err := out.Write(resized); err != nil {
		_ = out.Close()
		_ = os.Remove(out.Name())
		return "", false, fmt.Errorf("write cover: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(out.Name())
		return "", false, err
	}
	return out.Name(), true, nil
}
