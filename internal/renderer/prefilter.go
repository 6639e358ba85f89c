package renderer

import (
	"math"

	"github.com/anthonynsimon/bild/blur"
)

// Prefilter owns the lazily-cached blurred copy of a canvas used to suppress
// aliasing on minified frames. It is single-owner state: only the render
// loop's goroutine may call Canvas. Workers receive the returned pointer at
// dispatch time and never touch the cache itself, so replacing the cached
// copy can not invalidate a frame already in flight.
type Prefilter struct {
	src        *Canvas
	kernelSize float64

	bucket  float64 // spacing bucket of the cached copy, 0 = none
	blurred *Canvas
}

// NewPrefilter wraps a canvas with an empty blur cache.
func NewPrefilter(src *Canvas, kernelSize float64) *Prefilter {
	return &Prefilter{src: src, kernelSize: kernelSize}
}

// Bucket quantizes a sample spacing to the cache key, quarter-pixel steps.
// Spacings at or below one collapse to zero: no filtering needed.
func Bucket(spacing float64) float64 {
	if spacing <= 1 {
		return 0
	}
	return math.Round(spacing*4) / 4
}

// Canvas returns the canvas to sample for the given spacing: the raw source
// when no filtering applies, otherwise a blurred copy whose radius grows
// with the spacing. Consecutive frames in the same bucket reuse one blur;
// recomputing every frame would be equally correct, just slower.
func (p *Prefilter) Canvas(spacing float64) *Canvas {
	b := Bucket(spacing)
	if b == 0 {
		return p.src
	}
	if p.blurred == nil || p.bucket != b {
		p.blurred = blurCanvas(p.src, b*p.kernelSize)
		p.bucket = b
	}
	return p.blurred
}

func blurCanvas(c *Canvas, radius float64) *Canvas {
	return &Canvas{
		rgba:     blur.Gaussian(c.rgba, radius),
		channels: c.channels,
	}
}
