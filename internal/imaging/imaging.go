// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging shrinks generated section images before they are stored.
// Models return full-resolution PNGs; a page never shows them wider than
// MaxWidth, and inline data URIs travel inside every saved workspace.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif" // register GIF decoder
	_ "image/png" // register PNG decoder

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// MaxWidth is the widest a section image is rendered.
	MaxWidth = 1600

	// Quality is the JPEG quality of downscaled images.
	Quality = 85

	// maxPixels rejects decompression bombs before a full decode.
	maxPixels = 50_000_000
)

// Downscale resizes an encoded image to at most maxWidth pixels wide,
// preserving the aspect ratio, and re-encodes it as JPEG. It returns nil
// data when the image is already narrow enough.
func Downscale(data []byte, maxWidth int) ([]byte, string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("imaging: decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, "", fmt.Errorf("imaging: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxPixels)
	}
	if cfg.Width <= maxWidth {
		return nil, "", nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("imaging: decode: %w", err)
	}

	bounds := img.Bounds()
	height := int(float64(bounds.Dy()) * float64(maxWidth) / float64(bounds.Dx()))
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, "", fmt.Errorf("imaging: encode: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
