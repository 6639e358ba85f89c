package renderer

import (
	"image"
	"image/draw"
)

// Canvas is the source still the camera moves over. Pixels live in an RGBA
// backing store with zero-origin bounds regardless of the declared channel
// count, so the samplers and the blur filter share one layout. A Canvas is
// read-only for the lifetime of a render.
type Canvas struct {
	rgba     *image.RGBA
	channels int // 1 or 3
}

// FromImage normalizes a decoded image into a Canvas. Grayscale sources keep
// channel count 1 (R=G=B in the backing store); everything else is treated
// as 3-channel color with opaque alpha.
func FromImage(img image.Image) *Canvas {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	channels := 3
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		channels = 1
	}
	return &Canvas{rgba: rgba, channels: channels}
}

// FromRGBA wraps an already-materialized RGBA buffer without copying when
// its bounds start at the origin. The caller hands over ownership.
func FromRGBA(rgba *image.RGBA, channels int) *Canvas {
	if rgba.Rect.Min != (image.Point{}) {
		return FromImage(rgba)
	}
	if channels != 1 {
		channels = 3
	}
	return &Canvas{rgba: rgba, channels: channels}
}

// Width is the canvas extent in pixels along x.
func (c *Canvas) Width() int { return c.rgba.Rect.Dx() }

// Height is the canvas extent in pixels along y.
func (c *Canvas) Height() int { return c.rgba.Rect.Dy() }

// Channels reports the declared channel count, 1 or 3.
func (c *Canvas) Channels() int { return c.channels }

// RGBA exposes the backing store for sinks and samplers. Treat it as
// read-only.
func (c *Canvas) RGBA() *image.RGBA { return c.rgba }
