package camera

import "math"

// Rect describes the camera viewport over the canvas: a top-left anchor in
// 1-based canvas coordinates and a zoom factor relative to the base scale.
type Rect struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Scale float64 `yaml:"scale"` // 1.0 = frame fills the canvas at base scale
}

// Path is a single camera move from Start to End, time-shaped by Warp.
type Path struct {
	Start Rect
	End   Rect
	Warp  Warp
}

// At returns the viewport at normalized time t in [0,1]. The warp output is
// applied as-is: a warp that leaves [0,1] extrapolates beyond Start/End.
func (p Path) At(t float64) Rect {
	w := t
	if p.Warp != nil {
		w = p.Warp(t)
	}
	return Rect{
		X:     lerp(p.Start.X, p.End.X, w),
		Y:     lerp(p.Start.Y, p.End.Y, w),
		Scale: lerp(p.Start.Scale, p.End.Scale, w),
	}
}

// Schedule pins a Path to a concrete number of output frames.
type Schedule struct {
	Path       Path
	FrameCount int
}

// RectAt returns the viewport for frame i in [0, FrameCount).
func (s Schedule) RectAt(i int) Rect {
	return s.Path.At(s.progress(i))
}

func (s Schedule) progress(i int) float64 {
	if s.FrameCount <= 1 {
		return 0
	}
	return float64(i) / float64(s.FrameCount-1)
}

// PreviewRects samples up to n representative viewports across the schedule
// for overlay visualization. The first and last frames are always included.
func (s Schedule) PreviewRects(n int) []Rect {
	if s.FrameCount <= 0 || n <= 0 {
		return nil
	}
	if n > s.FrameCount {
		n = s.FrameCount
	}
	rects := make([]Rect, 0, n)
	if n == 1 {
		return append(rects, s.RectAt(0))
	}
	for k := 0; k < n; k++ {
		i := k * (s.FrameCount - 1) / (n - 1)
		rects = append(rects, s.RectAt(i))
	}
	return rects
}

// FrameCount converts a duration in seconds and a frame rate to a whole
// number of frames, never fewer than one.
func FrameCount(durationSec, frameRate float64) int {
	n := int(math.Round(durationSec * frameRate))
	if n < 1 {
		n = 1
	}
	return n
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
