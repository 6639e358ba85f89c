package renderer

import (
	"math"

	"github.com/ivlev/kenburns/internal/camera"
)

// BaseScale is the zoom at which a viewport covering the full canvas exactly
// fills the output frame without empty borders. Every Rect.Scale is relative
// to this value.
func BaseScale(canvasW, canvasH, frameW, frameH int) float64 {
	return math.Max(
		float64(frameH)/float64(canvasH),
		float64(frameW)/float64(canvasW),
	)
}

// SampleSpacing reports the distance in canvas pixels between two adjacent
// output samples for the given viewport, taking the more demanding of the
// two axes. A spacing of one or less is magnification or an exact 1:1
// mapping; above one the frame minifies the canvas and aliases unless the
// canvas is low-pass filtered first.
func SampleSpacing(rect camera.Rect, frameW, frameH int, baseScale float64) float64 {
	spanW := float64(frameW) / baseScale * rect.Scale
	spanH := float64(frameH) / baseScale * rect.Scale
	return math.Max(spanW/float64(frameW), spanH/float64(frameH))
}
