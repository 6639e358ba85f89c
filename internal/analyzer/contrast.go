package analyzer

import (
	"image"
	"sort"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// ContrastDetector finds regions of interest by edge density: Sobel
// gradients are thresholded into a binary mask, dilated so nearby
// edges merge, and grouped into connected components.
type ContrastDetector struct {
	EdgeThreshold uint8   // gradient luminance cutoff
	DilateRadius  float64 // merge distance between edge clusters
	MinRegionArea int     // components below this many pixels are noise
}

func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		EdgeThreshold: 32,
		DilateRadius:  3,
		MinRegionArea: 500,
	}
}

// Detect returns candidate focus regions ordered by edge mass,
// largest first.
func (d *ContrastDetector) Detect(img image.Image) ([]Region, error) {
	edges := effect.Sobel(effect.Grayscale(img))
	mask := segment.Threshold(edges, d.EdgeThreshold)
	dilated := effect.Dilate(mask, d.DilateRadius)

	regions := connectedRegions(dilated, d.MinRegionArea)
	sort.Slice(regions, func(i, j int) bool {
		return mass(regions[i]) > mass(regions[j])
	})
	return regions, nil
}

// connectedRegions groups set pixels of a binary RGBA mask into
// bounding rectangles. Pixels count as set when the red channel is
// above half scale.
func connectedRegions(mask *image.RGBA, minArea int) []Region {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	visited := make([]bool, w*h)

	var regions []Region
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if visited[y*w+x] || !maskSet(mask, bounds, x, y) {
				continue
			}
			rect, count := floodFill(mask, bounds, visited, x, y)
			if rect.Dx()*rect.Dy() >= minArea {
				regions = append(regions, Region{
					Rect:    rect.Add(bounds.Min),
					Density: float64(count) / float64(rect.Dx()*rect.Dy()),
				})
			}
		}
	}
	return regions
}

// floodFill walks one connected component starting at (x, y) in
// bounds-relative coordinates and returns its bounding rectangle and
// pixel count.
func floodFill(mask *image.RGBA, bounds image.Rectangle, visited []bool, startX, startY int) (image.Rectangle, int) {
	w, h := bounds.Dx(), bounds.Dy()
	minX, minY := startX, startY
	maxX, maxY := startX, startY
	count := 0

	stack := []image.Point{{X: startX, Y: startY}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			continue
		}
		if visited[p.Y*w+p.X] || !maskSet(mask, bounds, p.X, p.Y) {
			continue
		}
		visited[p.Y*w+p.X] = true
		count++

		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}

		stack = append(stack,
			image.Point{X: p.X + 1, Y: p.Y},
			image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1},
			image.Point{X: p.X, Y: p.Y - 1},
		)
	}

	return image.Rect(minX, minY, maxX+1, maxY+1), count
}

func maskSet(mask *image.RGBA, bounds image.Rectangle, x, y int) bool {
	return mask.Pix[mask.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)] > 128
}
