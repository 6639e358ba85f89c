package renderer

import (
	"testing"

	"github.com/ivlev/kenburns/internal/camera"
)

func TestBaseScale(t *testing.T) {
	tests := []struct {
		canvasW, canvasH int
		frameW, frameH   int
		want             float64
	}{
		{1920, 1080, 1920, 1080, 1.0},
		{3840, 2160, 1920, 1080, 0.5},
		{4000, 3000, 1920, 1080, 0.48}, // width is the binding axis
		{1000, 2000, 1920, 1080, 1.92}, // canvas narrower than the frame
	}

	for _, tt := range tests {
		got := BaseScale(tt.canvasW, tt.canvasH, tt.frameW, tt.frameH)
		if abs(got-tt.want) > 1e-12 {
			t.Errorf("BaseScale(%dx%d canvas, %dx%d frame) = %v, want %v",
				tt.canvasW, tt.canvasH, tt.frameW, tt.frameH, got, tt.want)
		}
	}
}

func TestSampleSpacingThreshold(t *testing.T) {
	// A 2x-oversized canvas: full-canvas viewports minify, viewports at or
	// below the 1:1 scale do not.
	bs := BaseScale(3840, 2160, 1920, 1080)

	tests := []struct {
		scale      string
		rect       camera.Rect
		wantMinify bool
	}{
		{"full canvas", camera.Rect{X: 1, Y: 1, Scale: 1.0}, true},
		{"above 1:1", camera.Rect{X: 1, Y: 1, Scale: 0.75}, true},
		{"exact 1:1", camera.Rect{X: 1, Y: 1, Scale: 0.5}, false},
		{"zoomed in", camera.Rect{X: 1, Y: 1, Scale: 0.25}, false},
	}

	for _, tt := range tests {
		t.Run(tt.scale, func(t *testing.T) {
			spacing := SampleSpacing(tt.rect, 1920, 1080, bs)
			if tt.wantMinify && spacing <= 1 {
				t.Errorf("expected spacing > 1, got %v", spacing)
			}
			if !tt.wantMinify && spacing > 1 {
				t.Errorf("expected spacing <= 1, got %v", spacing)
			}
			t.Logf("scale %.2f -> spacing %.3f", tt.rect.Scale, spacing)
		})
	}
}

func TestSampleSpacingMatchesAxisRatio(t *testing.T) {
	// For a 4000x3000 canvas and a 1920x1080 frame the x axis is the
	// demanding one: 4000 source pixels map onto 1920 samples.
	bs := BaseScale(4000, 3000, 1920, 1080)
	spacing := SampleSpacing(camera.Rect{X: 1, Y: 1, Scale: 1}, 1920, 1080, bs)

	want := 4000.0 / 1920.0
	if abs(spacing-want) > 1e-9 {
		t.Errorf("expected spacing %v, got %v", want, spacing)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
