package config

import (
	"fmt"
	"math"

	"github.com/ivlev/kenburns/internal/camera"
)

// Strategy selects the frame resampling implementation.
type Strategy string

const (
	// StrategyNearestCrop crops on whole canvas pixels and resizes. Fast,
	// visibly jittery on slow pans.
	StrategyNearestCrop Strategy = "nearest-crop"
	// StrategyTranslate does a sub-pixel translate pass, a resize pass and a
	// hard crop. Smooth but compounds two resampling passes.
	StrategyTranslate Strategy = "translate"
	// StrategyGrid samples the canvas bilinearly at exact float coordinates
	// in a single pass. The default.
	StrategyGrid Strategy = "grid"
)

// ParseStrategy validates a strategy tag from flags or a scenario file.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyNearestCrop, StrategyTranslate, StrategyGrid:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown strategy %q (want %s, %s or %s)",
		s, StrategyNearestCrop, StrategyTranslate, StrategyGrid)
}

// FieldError reports a rejected configuration field. Validation never
// corrects a value silently.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Render holds everything one Ken Burns render needs besides the canvas
// itself and the sink.
type Render struct {
	Duration  float64     `yaml:"duration"`   // seconds
	FrameRate float64     `yaml:"frame_rate"` // frames per second
	Width     int         `yaml:"width"`      // output frame width, px
	Height    int         `yaml:"height"`     // output frame height, px
	Start     camera.Rect `yaml:"start"`
	End       camera.Rect `yaml:"end"`

	// Warp takes precedence over WarpName when both are set. Only WarpName
	// survives scenario round-trips.
	Warp     camera.Warp `yaml:"-"`
	WarpName string      `yaml:"warp"`

	Strategy         Strategy `yaml:"strategy"`
	Antialias        bool     `yaml:"antialias"`
	FilterKernelSize float64  `yaml:"filter_kernel_size"`
	Workers          int      `yaml:"workers"` // 0 = autodetect
}

// NewDefault builds a render config for the given canvas size: a slow zoom
// from the full canvas into a rect at 20% of the extent at half scale, eased
// by a sine warp.
func NewDefault(canvasW, canvasH int) *Render {
	return &Render{
		Duration:  5.0,
		FrameRate: 30,
		Width:     1920,
		Height:    1080,
		Start:     camera.Rect{X: 1, Y: 1, Scale: 1.0},
		End: camera.Rect{
			X:     math.Max(1, 0.2*float64(canvasW)),
			Y:     math.Max(1, 0.2*float64(canvasH)),
			Scale: 0.5,
		},
		WarpName:         "sine",
		Strategy:         StrategyGrid,
		Antialias:        true,
		FilterKernelSize: 1.0,
	}
}

// FrameCount derives the output frame total from duration and frame rate.
func (r *Render) FrameCount() int {
	return camera.FrameCount(r.Duration, r.FrameRate)
}

// ResolveWarp returns the warp function to drive the shot: the explicit Warp
// if set, otherwise the WarpName preset, otherwise linear.
func (r *Render) ResolveWarp() (camera.Warp, error) {
	if r.Warp != nil {
		return r.Warp, nil
	}
	if r.WarpName != "" {
		return camera.ByName(r.WarpName)
	}
	return camera.Linear, nil
}

// Validate checks every field against the canvas extent. It returns a
// *FieldError naming the first offending field, before any frame is rendered
// or any sink is opened.
func (r *Render) Validate(canvasW, canvasH int) error {
	if canvasW <= 0 || canvasH <= 0 {
		return &FieldError{Field: "canvas", Reason: fmt.Sprintf("extent %dx%d is empty", canvasW, canvasH)}
	}
	if !(r.Duration > 0) {
		return &FieldError{Field: "duration", Reason: fmt.Sprintf("must be positive, got %v", r.Duration)}
	}
	if !(r.FrameRate > 0) {
		return &FieldError{Field: "frame_rate", Reason: fmt.Sprintf("must be positive, got %v", r.FrameRate)}
	}
	if r.Width <= 0 {
		return &FieldError{Field: "width", Reason: fmt.Sprintf("must be positive, got %d", r.Width)}
	}
	if r.Height <= 0 {
		return &FieldError{Field: "height", Reason: fmt.Sprintf("must be positive, got %d", r.Height)}
	}
	if _, err := ParseStrategy(string(r.Strategy)); err != nil {
		return &FieldError{Field: "strategy", Reason: err.Error()}
	}
	if !(r.FilterKernelSize > 0) {
		return &FieldError{Field: "filter_kernel_size", Reason: fmt.Sprintf("must be positive, got %v", r.FilterKernelSize)}
	}
	if r.Workers < 0 {
		return &FieldError{Field: "workers", Reason: fmt.Sprintf("must be zero or positive, got %d", r.Workers)}
	}
	if _, err := r.ResolveWarp(); err != nil {
		return &FieldError{Field: "warp", Reason: err.Error()}
	}
	if err := validRect("start_rect", r.Start, canvasW, canvasH); err != nil {
		return err
	}
	if err := validRect("end_rect", r.End, canvasW, canvasH); err != nil {
		return err
	}
	return nil
}

func validRect(field string, rc camera.Rect, canvasW, canvasH int) error {
	if !(rc.Scale > 0 && rc.Scale <= 1) {
		return &FieldError{Field: field, Reason: fmt.Sprintf("scale must be in (0, 1], got %v", rc.Scale)}
	}
	if !(rc.X >= 1 && rc.X <= float64(canvasW)) {
		return &FieldError{Field: field, Reason: fmt.Sprintf("x must be in [1, %d], got %v", canvasW, rc.X)}
	}
	if !(rc.Y >= 1 && rc.Y <= float64(canvasH)) {
		return &FieldError{Field: field, Reason: fmt.Sprintf("y must be in [1, %d], got %v", canvasH, rc.Y)}
	}
	return nil
}
