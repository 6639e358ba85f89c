package renderer

import (
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/kenburns/internal/camera"
	"github.com/ivlev/kenburns/internal/config"
)

// SampleError reports a viewport that produced source coordinates the
// clamp-to-edge policy cannot repair, i.e. non-finite values coming out of a
// pathological time warp.
type SampleError struct {
	X, Y   float64
	Reason string
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("sample window at (%g, %g): %s", e.X, e.Y, e.Reason)
}

// Sampler renders one viewport of a canvas into dst, a zero-origin RGBA
// buffer of exactly the output frame geometry. Source coordinates falling
// outside the canvas clamp to the nearest edge pixel in every
// implementation.
type Sampler interface {
	Sample(c *Canvas, rect camera.Rect, dst *image.RGBA, baseScale float64) error
}

// NewSampler picks the implementation for a strategy tag.
func NewSampler(s config.Strategy) (Sampler, error) {
	switch s {
	case config.StrategyNearestCrop:
		return nearestCrop{}, nil
	case config.StrategyTranslate:
		return translate{}, nil
	case config.StrategyGrid:
		return grid{}, nil
	}
	return nil, fmt.Errorf("no sampler for strategy %q", s)
}

// window is a viewport resolved against a concrete canvas: a finite,
// zero-based sampling origin clamped so the whole span stays inside the
// canvas.
type window struct {
	x0, y0       float64
	spanW, spanH float64
}

func resolveWindow(c *Canvas, rect camera.Rect, frameW, frameH int, baseScale float64) (window, error) {
	spanW := float64(frameW) / baseScale * rect.Scale
	spanH := float64(frameH) / baseScale * rect.Scale
	for _, v := range [...]float64{rect.X, rect.Y, spanW, spanH} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return window{}, &SampleError{X: rect.X, Y: rect.Y, Reason: "non-finite viewport"}
		}
	}

	w := window{
		spanW: clampF(spanW, 1, float64(c.Width())),
		spanH: clampF(spanH, 1, float64(c.Height())),
	}
	w.x0 = clampF(rect.X-1, 0, float64(c.Width())-w.spanW)
	w.y0 = clampF(rect.Y-1, 0, float64(c.Height())-w.spanH)
	return w, nil
}

// grid samples the canvas bilinearly at exact float source coordinates in a
// single pass. Output pixel (r,c) reads the source at
// x0 + c·(spanW−1)/(frameW−1), the inclusive span, so a full-canvas viewport
// rendered at canvas size lands exactly on the source grid. The default
// strategy.
type grid struct{}

func (grid) Sample(c *Canvas, rect camera.Rect, dst *image.RGBA, baseScale float64) error {
	fw, fh := dst.Rect.Dx(), dst.Rect.Dy()
	w, err := resolveWindow(c, rect, fw, fh, baseScale)
	if err != nil {
		return err
	}

	var stepX, stepY float64
	if fw > 1 {
		stepX = (w.spanW - 1) / float64(fw-1)
	}
	if fh > 1 {
		stepY = (w.spanH - 1) / float64(fh-1)
	}

	src := c.rgba
	for r := 0; r < fh; r++ {
		sy := w.y0 + float64(r)*stepY
		row := dst.Pix[r*dst.Stride : r*dst.Stride+fw*4]
		for col := 0; col < fw; col++ {
			cr, cg, cb := bilerp(src, w.x0+float64(col)*stepX, sy)
			o := col * 4
			row[o] = cr
			row[o+1] = cg
			row[o+2] = cb
			row[o+3] = 0xff
		}
	}
	return nil
}

// nearestCrop truncates the viewport to whole canvas pixels, crops, and
// resizes the crop to the frame with a bilinear scaler. The truncation is
// what makes slow pans jitter: the crop origin snaps from pixel to pixel
// between frames.
type nearestCrop struct{}

func (nearestCrop) Sample(c *Canvas, rect camera.Rect, dst *image.RGBA, baseScale float64) error {
	fw, fh := dst.Rect.Dx(), dst.Rect.Dy()
	w, err := resolveWindow(c, rect, fw, fh, baseScale)
	if err != nil {
		return err
	}

	x0, y0 := int(w.x0), int(w.y0)
	cropW, cropH := int(w.spanW), int(w.spanH)
	crop := c.rgba.SubImage(image.Rect(x0, y0, x0+cropW, y0+cropH))
	xdraw.ApproxBiLinear.Scale(dst, dst.Rect, crop, crop.Bounds(), xdraw.Src, nil)
	return nil
}

// translate is the classic two-pass version: resample the canvas at the
// fractional viewport offset, then resize by exactly baseScale/Scale with
// the output restricted to the frame bounds (the hard crop). Quantizing to
// 8-bit between the passes is the documented composition error of this
// strategy.
type translate struct{}

func (translate) Sample(c *Canvas, rect camera.Rect, dst *image.RGBA, baseScale float64) error {
	fw, fh := dst.Rect.Dx(), dst.Rect.Dy()
	w, err := resolveWindow(c, rect, fw, fh, baseScale)
	if err != nil {
		return err
	}

	// The shifted buffer only needs to cover what the resize below can see,
	// plus one pixel of bilinear support on each side.
	tw := int(math.Ceil(w.spanW)) + 2
	th := int(math.Ceil(w.spanH)) + 2
	tmp := image.NewRGBA(image.Rect(0, 0, tw, th))
	for y := 0; y < th; y++ {
		sy := w.y0 + float64(y)
		row := tmp.Pix[y*tmp.Stride : y*tmp.Stride+tw*4]
		for x := 0; x < tw; x++ {
			r, g, b := bilerp(c.rgba, w.x0+float64(x), sy)
			o := x * 4
			row[o] = r
			row[o+1] = g
			row[o+2] = b
			row[o+3] = 0xff
		}
	}

	kx := float64(fw) / w.spanW
	ky := float64(fh) / w.spanH
	xdraw.BiLinear.Transform(dst, f64.Aff3{kx, 0, 0, 0, ky, 0}, tmp, tmp.Bounds(), xdraw.Src, nil)
	return nil
}

// bilerp evaluates the RGBA store at a float coordinate with edge clamping.
func bilerp(img *image.RGBA, sx, sy float64) (r, g, b uint8) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if sx < 0 {
		sx = 0
	} else if m := float64(w - 1); sx > m {
		sx = m
	}
	if sy < 0 {
		sy = 0
	} else if m := float64(h - 1); sy > m {
		sy = m
	}

	x0, y0 := int(sx), int(sy)
	x1, y1 := x0+1, y0+1
	if x1 > w-1 {
		x1 = w - 1
	}
	if y1 > h-1 {
		y1 = h - 1
	}
	fx, fy := sx-float64(x0), sy-float64(y0)

	p := img.Pix
	i00 := y0*img.Stride + x0*4
	i10 := y0*img.Stride + x1*4
	i01 := y1*img.Stride + x0*4
	i11 := y1*img.Stride + x1*4

	r = mixChannel(p, i00, i10, i01, i11, fx, fy)
	g = mixChannel(p, i00+1, i10+1, i01+1, i11+1, fx, fy)
	b = mixChannel(p, i00+2, i10+2, i01+2, i11+2, fx, fy)
	return
}

func mixChannel(p []uint8, i00, i10, i01, i11 int, fx, fy float64) uint8 {
	top := float64(p[i00])*(1-fx) + float64(p[i10])*fx
	bot := float64(p[i01])*(1-fx) + float64(p[i11])*fx
	return uint8(top*(1-fy) + bot*fy + 0.5)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
