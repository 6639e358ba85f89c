package source

import (
	"fmt"
	"image"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ivlev/kenburns/internal/renderer"
)

var palettes = map[string][]string{
	"sunset": {"#352859", "#C84B31", "#FFC93C"},
	"ocean":  {"#03045E", "#0077B6", "#90E0EF"},
	"forest": {"#1B4332", "#52B788", "#D8F3DC"},
	"mono":   {"#111111", "#EEEEEE"},
}

// GradientSource synthesizes a single diagonal-gradient page. Colors
// are blended in HCL space so the ramp stays perceptually even, which
// makes banding from aggressive zooms easy to spot.
type GradientSource struct {
	stops []colorful.Color
	size  int
}

// NewGradientSource accepts a palette name ("sunset", "ocean",
// "forest", "mono") or a comma-separated list of hex colors.
func NewGradientSource(palette string, size int) (*GradientSource, error) {
	hexes, ok := palettes[strings.ToLower(palette)]
	if !ok {
		hexes = strings.Split(palette, ",")
	}
	if len(hexes) < 2 {
		return nil, fmt.Errorf("gradient needs at least two colors, got %q", palette)
	}

	stops := make([]colorful.Color, 0, len(hexes))
	for _, h := range hexes {
		c, err := colorful.Hex(strings.TrimSpace(h))
		if err != nil {
			return nil, fmt.Errorf("gradient color %q: %w", h, err)
		}
		stops = append(stops, c)
	}

	if size <= 0 {
		size = 1600
	}
	return &GradientSource{stops: stops, size: size}, nil
}

func (g *GradientSource) PageCount() int {
	return 1
}

func (g *GradientSource) Canvas(page int) (*renderer.Canvas, error) {
	if page != 0 {
		return nil, fmt.Errorf("page %d out of range (source has 1)", page)
	}

	w := g.size
	h := g.size * 3 / 4
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			t := float64(x+y) / float64(w+h-2)
			r, gr, b := g.at(t).RGB255()
			row[x*4+0] = r
			row[x*4+1] = gr
			row[x*4+2] = b
			row[x*4+3] = 0xff
		}
	}
	return renderer.FromRGBA(img, 3), nil
}

// at blends the stop list at position t in [0, 1].
func (g *GradientSource) at(t float64) colorful.Color {
	if t <= 0 {
		return g.stops[0]
	}
	if t >= 1 {
		return g.stops[len(g.stops)-1]
	}
	segment := t * float64(len(g.stops)-1)
	i := int(segment)
	return g.stops[i].BlendHcl(g.stops[i+1], segment-float64(i)).Clamped()
}

func (g *GradientSource) Close() error {
	return nil
}
