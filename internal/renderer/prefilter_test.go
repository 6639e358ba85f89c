package renderer

import (
	"testing"
)

func TestBucketQuantization(t *testing.T) {
	tests := []struct {
		spacing float64
		want    float64
	}{
		{0.5, 0},
		{1.0, 0}, // exact 1:1 never filters
		{1.1, 1.0},
		{1.2, 1.25},
		{1.3, 1.25},
		{2.0, 2.0},
		{2.6, 2.5},
	}

	for _, tt := range tests {
		if got := Bucket(tt.spacing); got != tt.want {
			t.Errorf("Bucket(%v) = %v, want %v", tt.spacing, got, tt.want)
		}
	}
}

func TestPrefilterPassthrough(t *testing.T) {
	c := testCanvas(64, 48)
	p := NewPrefilter(c, 1.0)

	if got := p.Canvas(0.8); got != c {
		t.Error("magnification should return the raw canvas")
	}
	if got := p.Canvas(1.0); got != c {
		t.Error("exact 1:1 should return the raw canvas")
	}
}

func TestPrefilterBlursAndCaches(t *testing.T) {
	c := testCanvas(64, 48)
	p := NewPrefilter(c, 1.0)

	blurred := p.Canvas(2.0)
	if blurred == c {
		t.Fatal("minification should return a filtered copy, not the source")
	}
	if blurred.Width() != c.Width() || blurred.Height() != c.Height() {
		t.Errorf("filtered copy must keep the canvas shape, got %dx%d",
			blurred.Width(), blurred.Height())
	}
	if blurred.Channels() != c.Channels() {
		t.Errorf("filtered copy must keep the channel count, got %d", blurred.Channels())
	}

	// Same bucket, same copy.
	if again := p.Canvas(2.05); again != blurred {
		t.Error("spacing in the same bucket should reuse the cached copy")
	}

	// New bucket recomputes.
	wider := p.Canvas(3.0)
	if wider == blurred {
		t.Error("a different bucket must produce a fresh copy")
	}

	// The source must stay untouched throughout.
	fresh := testCanvas(64, 48)
	for i, v := range c.RGBA().Pix {
		if fresh.RGBA().Pix[i] != v {
			t.Fatal("prefilter mutated the source canvas")
		}
	}
}

func TestPrefilterActuallySmooths(t *testing.T) {
	// A single white pixel on black must spread energy to its neighbors.
	c := testCanvas(33, 33)
	for i := range c.RGBA().Pix {
		c.RGBA().Pix[i] = 0
	}
	center := c.RGBA().PixOffset(16, 16)
	c.RGBA().Pix[center] = 255
	c.RGBA().Pix[center+3] = 255

	p := NewPrefilter(c, 1.0)
	blurred := p.Canvas(4.0)

	got := blurred.RGBA().Pix[blurred.RGBA().PixOffset(16, 16)]
	if got >= 255 {
		t.Errorf("center should lose energy under blur, got %d", got)
	}
	neighbor := blurred.RGBA().Pix[blurred.RGBA().PixOffset(18, 16)]
	if neighbor == 0 {
		t.Error("neighbor should gain energy under blur, got 0")
	}
	t.Logf("impulse after blur: center=%d neighbor=%d", got, neighbor)
}
