package director

import (
	"fmt"
	"image"
	"math/rand"
	"strings"
	"time"

	"github.com/ivlev/kenburns/internal/analyzer"
	"github.com/ivlev/kenburns/internal/camera"
	"github.com/ivlev/kenburns/internal/renderer"
	"github.com/ivlev/kenburns/internal/source"
)

// Shot is one planned camera move over a canvas.
type Shot struct {
	Start camera.Rect
	End   camera.Rect
}

// Director plans camera moves. Zoom modes name where the move lands:
// "center", the four corners, "random" (a seeded pick among those),
// or "auto", which aims at the densest detected region. An "out-"
// prefix reverses the move so it starts tight and pulls back.
type Director struct {
	FrameWidth  int
	FrameHeight int
	ZoomDepth   float64 // viewport scale at the tight end of a move
	Padding     float64 // breathing room around auto focus targets

	rng      *rand.Rand
	detector analyzer.Detector
}

func NewDirector(frameW, frameH int) *Director {
	return &Director{
		FrameWidth:  frameW,
		FrameHeight: frameH,
		ZoomDepth:   0.5,
		Padding:     1.15,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		detector:    analyzer.NewContrastDetector(),
	}
}

// Seed makes subsequent random picks reproducible.
func (d *Director) Seed(seed int64) {
	d.rng = rand.New(rand.NewSource(seed))
}

var anchorModes = []string{"center", "top-left", "top-right", "bottom-left", "bottom-right"}

// Shot plans one camera move over img. Every returned rect satisfies
// viewport validation for the image's dimensions.
func (d *Director) Shot(img image.Image, mode string) (Shot, error) {
	mode = strings.ToLower(mode)
	out := false
	if mode == "out" {
		out, mode = true, "center"
	} else if strings.HasPrefix(mode, "out-") {
		out, mode = true, strings.TrimPrefix(mode, "out-")
	}
	if mode == "" {
		mode = "center"
	}
	if mode == "random" {
		mode = anchorModes[d.rng.Intn(len(anchorModes))]
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	var target camera.Rect
	var err error
	if mode == "auto" {
		target, err = d.autoRect(img, w, h)
	} else {
		target, err = d.anchorRect(w, h, mode, d.ZoomDepth)
	}
	if err != nil {
		return Shot{}, err
	}

	full, err := d.anchorRect(w, h, "center", 1)
	if err != nil {
		return Shot{}, err
	}

	if out {
		return Shot{Start: target, End: full}, nil
	}
	return Shot{Start: full, End: target}, nil
}

// Plan builds a scenario with one shot per source page.
func (d *Director) Plan(src source.Source, mode string, duration float64, warp string) (*Scenario, error) {
	sc := &Scenario{Version: ScenarioVersion}
	for page := 0; page < src.PageCount(); page++ {
		c, err := src.Canvas(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		shot, err := d.Shot(c.RGBA(), mode)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		sc.Shots = append(sc.Shots, ShotSpec{
			Page:     page,
			Duration: duration,
			Warp:     warp,
			Start:    shot.Start,
			End:      shot.End,
		})
	}
	return sc, nil
}

// anchorRect places a viewport of the given scale at a named corner
// or the center, in 1-based canvas coordinates.
func (d *Director) anchorRect(w, h int, mode string, scale float64) (camera.Rect, error) {
	spanW, spanH := d.span(w, h, scale)

	var x0, y0 float64
	switch mode {
	case "top-left":
	case "top-right":
		x0 = float64(w) - spanW
	case "bottom-left":
		y0 = float64(h) - spanH
	case "bottom-right":
		x0 = float64(w) - spanW
		y0 = float64(h) - spanH
	case "center":
		x0 = (float64(w) - spanW) / 2
		y0 = (float64(h) - spanH) / 2
	default:
		return camera.Rect{}, fmt.Errorf("unknown zoom mode: %s", mode)
	}

	return camera.Rect{X: clamp(x0, 0, float64(w)) + 1, Y: clamp(y0, 0, float64(h)) + 1, Scale: scale}, nil
}

// autoRect aims the viewport at the densest detected region. The
// scale is widened until the padded region fits, and a featureless
// canvas falls back to a center zoom.
func (d *Director) autoRect(img image.Image, w, h int) (camera.Rect, error) {
	regions, err := d.detector.Detect(img)
	if err != nil {
		return camera.Rect{}, fmt.Errorf("focus detection error: %w", err)
	}
	best, ok := analyzer.BestRegion(regions)
	if !ok {
		return d.anchorRect(w, h, "center", d.ZoomDepth)
	}

	bs := renderer.BaseScale(w, h, d.FrameWidth, d.FrameHeight)
	sx := d.Padding * float64(best.Rect.Dx()) * bs / float64(d.FrameWidth)
	sy := d.Padding * float64(best.Rect.Dy()) * bs / float64(d.FrameHeight)
	scale := clamp(max(sx, sy), d.ZoomDepth, 1)

	spanW, spanH := d.span(w, h, scale)
	cx := float64(best.Rect.Min.X+best.Rect.Max.X) / 2
	cy := float64(best.Rect.Min.Y+best.Rect.Max.Y) / 2
	x0 := clamp(cx-spanW/2, 0, float64(w)-spanW)
	y0 := clamp(cy-spanH/2, 0, float64(h)-spanH)

	return camera.Rect{X: x0 + 1, Y: y0 + 1, Scale: scale}, nil
}

// span is the canvas extent a viewport of the given scale covers.
func (d *Director) span(w, h int, scale float64) (float64, float64) {
	bs := renderer.BaseScale(w, h, d.FrameWidth, d.FrameHeight)
	return float64(d.FrameWidth) * scale / bs, float64(d.FrameHeight) * scale / bs
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
