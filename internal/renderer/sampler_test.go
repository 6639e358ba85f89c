package renderer

import (
	"bytes"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/ivlev/kenburns/internal/camera"
	"github.com/ivlev/kenburns/internal/config"
)

// testCanvas builds a deterministic busy pattern. Good for exactness checks,
// too sharp for cross-strategy comparisons.
func testCanvas(w, h int) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i] = uint8((x * 7) % 256)
			img.Pix[i+1] = uint8((y * 5) % 256)
			img.Pix[i+2] = uint8((x + y) % 256)
			img.Pix[i+3] = 0xff
		}
	}
	return FromRGBA(img, 3)
}

// rampCanvas builds smooth linear gradients, which every interpolating
// resampler reproduces almost exactly.
func rampCanvas(w, h int) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i] = uint8(x * 255 / (w - 1))
			img.Pix[i+1] = uint8(y * 255 / (h - 1))
			img.Pix[i+2] = 128
			img.Pix[i+3] = 0xff
		}
	}
	return FromRGBA(img, 3)
}

func newFrame(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func TestGridReproducesCanvasAtGridPoints(t *testing.T) {
	c := testCanvas(32, 24)
	s, err := NewSampler(config.StrategyGrid)
	if err != nil {
		t.Fatal(err)
	}

	// Frame geometry equals canvas geometry and the viewport covers the
	// whole canvas, so every sample lands exactly on a source pixel.
	dst := newFrame(32, 24)
	bs := BaseScale(32, 24, 32, 24)
	if err := s.Sample(c, camera.Rect{X: 1, Y: 1, Scale: 1}, dst, bs); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(dst.Pix, c.RGBA().Pix) {
		for i := range dst.Pix {
			if dst.Pix[i] != c.RGBA().Pix[i] {
				t.Fatalf("first mismatch at pix[%d]: got %d, want %d", i, dst.Pix[i], c.RGBA().Pix[i])
			}
		}
	}
}

func TestGridDeterministic(t *testing.T) {
	c := testCanvas(64, 48)
	s, _ := NewSampler(config.StrategyGrid)
	rect := camera.Rect{X: 7.3, Y: 4.9, Scale: 0.62}
	bs := BaseScale(64, 48, 32, 24)

	a := newFrame(32, 24)
	b := newFrame(32, 24)
	if err := s.Sample(c, rect, a, bs); err != nil {
		t.Fatal(err)
	}
	if err := s.Sample(c, rect, b, bs); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("two identical samples should produce byte-identical frames")
	}
}

func TestStrategiesAgreeOnFullCanvas(t *testing.T) {
	// With start == end == full canvas every strategy reduces to "resize the
	// image to the frame", up to kernel differences.
	c := rampCanvas(80, 60)
	rect := camera.Rect{X: 1, Y: 1, Scale: 1}
	bs := BaseScale(80, 60, 40, 30)

	frames := map[config.Strategy]*image.RGBA{}
	for _, tag := range []config.Strategy{config.StrategyNearestCrop, config.StrategyTranslate, config.StrategyGrid} {
		s, err := NewSampler(tag)
		if err != nil {
			t.Fatal(err)
		}
		dst := newFrame(40, 30)
		if err := s.Sample(c, rect, dst, bs); err != nil {
			t.Fatalf("%s: %v", tag, err)
		}
		frames[tag] = dst
	}

	grid := frames[config.StrategyGrid]
	for tag, frame := range frames {
		if tag == config.StrategyGrid {
			continue
		}
		var worst int
		for i := range frame.Pix {
			d := int(frame.Pix[i]) - int(grid.Pix[i])
			if d < 0 {
				d = -d
			}
			if d > worst {
				worst = d
			}
		}
		// Smooth ramps leave only sub-pixel convention differences.
		if worst > 6 {
			t.Errorf("%s deviates from grid by %d levels on a smooth ramp", tag, worst)
		}
		t.Logf("%s vs grid: worst channel delta %d", tag, worst)
	}
}

func TestSamplersClampAtEdges(t *testing.T) {
	c := testCanvas(50, 40)
	bs := BaseScale(50, 40, 25, 20)

	// Viewports pushed past every border must slide back inside without
	// panicking or erroring.
	rects := []camera.Rect{
		{X: 49, Y: 39, Scale: 1},   // far corner, span overflows
		{X: -20, Y: -20, Scale: 1}, // before the origin
		{X: 50, Y: 40, Scale: 0.1},
		{X: 1, Y: 1, Scale: 1},
	}

	for _, tag := range []config.Strategy{config.StrategyNearestCrop, config.StrategyTranslate, config.StrategyGrid} {
		s, _ := NewSampler(tag)
		for _, rect := range rects {
			dst := newFrame(25, 20)
			if err := s.Sample(c, rect, dst, bs); err != nil {
				t.Errorf("%s with rect %+v: %v", tag, rect, err)
			}
			// Every output pixel must be written and opaque.
			for y := 0; y < 20; y++ {
				for x := 0; x < 25; x++ {
					if dst.Pix[dst.PixOffset(x, y)+3] != 0xff {
						t.Fatalf("%s with rect %+v left pixel (%d,%d) unwritten", tag, rect, x, y)
					}
				}
			}
		}
	}
}

func TestSamplersRejectNonFiniteViewport(t *testing.T) {
	c := testCanvas(50, 40)
	bs := BaseScale(50, 40, 25, 20)

	bad := []camera.Rect{
		{X: math.NaN(), Y: 1, Scale: 0.5},
		{X: 1, Y: math.Inf(1), Scale: 0.5},
		{X: 1, Y: 1, Scale: math.NaN()},
	}

	for _, tag := range []config.Strategy{config.StrategyNearestCrop, config.StrategyTranslate, config.StrategyGrid} {
		s, _ := NewSampler(tag)
		for _, rect := range bad {
			err := s.Sample(c, rect, newFrame(25, 20), bs)
			if err == nil {
				t.Fatalf("%s accepted non-finite rect %+v", tag, rect)
			}
			var se *SampleError
			if !errors.As(err, &se) {
				t.Errorf("%s: expected *SampleError, got %T: %v", tag, err, err)
			}
		}
	}
}

func TestGridSingleColumnFrame(t *testing.T) {
	c := testCanvas(50, 40)
	s, _ := NewSampler(config.StrategyGrid)

	dst := newFrame(1, 8)
	bs := BaseScale(50, 40, 1, 8)
	if err := s.Sample(c, camera.Rect{X: 10, Y: 10, Scale: 0.5}, dst, bs); err != nil {
		t.Fatalf("degenerate one-column frame: %v", err)
	}
}

func TestNewSamplerUnknown(t *testing.T) {
	if _, err := NewSampler(config.Strategy("zoompan")); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
