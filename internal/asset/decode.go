package asset

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	// extra upload formats beyond imaging's defaults
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

//go:embed badge/badge.svg
var badgeSVG []byte

// ErrTooManyPixels is returned for photos whose header declares more pixels
// than the configured limit.
var ErrTooManyPixels = errors.New("photo has too many pixels")

// CheckPhotoSize reads only the image header from data and fails with
// ErrTooManyPixels when its dimensions exceed maxPixels. A non-positive
// maxPixels disables the check.
func CheckPhotoSize(data []byte, maxPixels int64) (image.Config, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return cfg, fmt.Errorf("decode photo header: %w", err)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return cfg, fmt.Errorf("%w: %dx%d exceeds %d", ErrTooManyPixels, cfg.Width, cfg.Height, maxPixels)
	}
	return cfg, nil
}

// DecodePhoto decodes uploaded photo bytes, applying any EXIF orientation so
// the natural size matches what the user sees.
func DecodePhoto(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}
	return img, nil
}

// StartPhoto decodes data in the background. The header is checked against
// maxPixels before any pixel buffer is allocated.
func StartPhoto(data []byte, maxPixels int64) *Pending {
	return Start("photo", func() (image.Image, error) {
		if _, err := CheckPhotoSize(data, maxPixels); err != nil {
			return nil, err
		}
		return DecodePhoto(bytes.NewReader(data))
	})
}

// StartOverlay loads the overlay badge in the background. An empty path
// selects the embedded badge; SVG files are rasterized svgWidth pixels wide.
func StartOverlay(path string, svgWidth int) *Pending {
	return Start("overlay", func() (image.Image, error) {
		return LoadOverlay(path, svgWidth)
	})
}

// LoadOverlay loads the overlay badge synchronously.
func LoadOverlay(path string, svgWidth int) (image.Image, error) {
	if path == "" {
		return RasterizeSVG(bytes.NewReader(badgeSVG), svgWidth)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open overlay: %w", err)
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return RasterizeSVG(f, svgWidth)
	}
	img, err := imaging.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode overlay %s: %w", path, err)
	}
	return img, nil
}

// RasterizeSVG renders an SVG document to an RGBA image width pixels wide,
// keeping the viewBox aspect ratio.
func RasterizeSVG(r io.Reader, width int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return nil, fmt.Errorf("svg has no usable viewBox (%gx%g)", vw, vh)
	}
	if width <= 0 {
		width = int(math.Ceil(vw))
	}
	height := int(math.Max(1, math.Round(float64(width)*vh/vw)))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	icon.SetTarget(0, 0, float64(width), float64(height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1)
	return img, nil
}
