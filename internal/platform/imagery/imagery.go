// Copyright (c) 2026 Atelier. All rights reserved.
// Author: lucas.m.rezende@gmail.com

/*
Package imagery wraps disintegration/imaging with the three operations the
media pipeline needs: width-bounded gallery resizing, cover-cropped
thumbnails, and logo-on-background thumbnail composition.

Decoding normalizes EXIF orientation so phone photos come out upright.
webp input is supported via the x/image decoder; output is always the
configured encode format (jpeg or png; webp encoding needs cgo and is
deliberately not supported).
*/
package imagery

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	// Register webp so image.Decode accepts transparent logos exported as webp.
	_ "golang.org/x/image/webp"
)

// Format is an output encoding target.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
)

// Options configures encoding of processed images.
type Options struct {
	Format  Format
	Quality int // JPEG only, 1-100
}

// Ext returns the file extension (with dot) for the configured format.
func (o Options) Ext() string {
	if o.Format == PNG {
		return ".png"
	}
	return ".jpg"
}

// Decode reads an image from r, normalizing EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("imagery: decode: %w", err)
	}
	return img, nil
}

// FitWidth scales img down so its width does not exceed maxWidth, preserving
// aspect ratio. Images already narrow enough are returned untouched (never
// enlarged).
func FitWidth(img image.Image, maxWidth int) image.Image {
	if maxWidth <= 0 || img.Bounds().Dx() <= maxWidth {
		return img
	}
	return imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
}

// CoverCrop scales and center-crops img to exactly width x height.
//
// Cover-fit avoids the distortion a plain resize would cause on the
// fixed-aspect display grid.
func CoverCrop(img image.Image, width, height int) image.Image {
	return imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
}

// ComposeLogo renders logo centered on a solid background of the given color
// at exactly width x height, leaving paddingPercent of each dimension as margin.
//
// Used when the operator only has a transparent logo instead of a full
// thumbnail image.
func ComposeLogo(logo image.Image, background color.Color, width, height int, paddingPercent float64) image.Image {
	canvas := imaging.New(width, height, background)

	boxWidth := int(float64(width) * (1 - paddingPercent/100*2))
	boxHeight := int(float64(height) * (1 - paddingPercent/100*2))
	if boxWidth < 1 {
		boxWidth = 1
	}
	if boxHeight < 1 {
		boxHeight = 1
	}

	scaled := imaging.Fit(logo, boxWidth, boxHeight, imaging.Lanczos)
	return imaging.PasteCenter(canvas, scaled)
}

// Encode writes img to w in the configured format.
func Encode(w io.Writer, img image.Image, opts Options) error {
	switch opts.Format {
	case PNG:
		return imaging.Encode(w, img, imaging.PNG)
	default:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(opts.Quality))
	}
}

// ParseHexColor parses #rgb or #rrggbb into an opaque color.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")

	switch len(hex) {
	case 3:
		expanded := make([]byte, 6)
		for i := 0; i < 3; i++ {
			expanded[i*2] = hex[i]
			expanded[i*2+1] = hex[i]
		}
		hex = string(expanded)
	case 6:
		// already full form
	default:
		return color.NRGBA{}, fmt.Errorf("imagery: invalid hex color %q", s)
	}

	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("imagery: invalid hex color %q", s)
	}

	return color.NRGBA{
		R: uint8(value >> 16),
		G: uint8(value >> 8),
		B: uint8(value),
		A: 0xff,
	}, nil
}
