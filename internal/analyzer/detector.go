package analyzer

import "image"

// Region is a detected area of visual interest, in the pixel
// coordinates of the analyzed image.
type Region struct {
	Rect    image.Rectangle
	Density float64 // fraction of edge pixels inside Rect, 0.0-1.0
}

// Detector is the interface for focus detection strategies.
type Detector interface {
	Detect(img image.Image) ([]Region, error)
}

// BestRegion picks the region with the largest edge mass, the usual
// target for an automatic zoom. Returns false when nothing was found.
func BestRegion(regions []Region) (Region, bool) {
	if len(regions) == 0 {
		return Region{}, false
	}
	best := regions[0]
	bestMass := mass(best)
	for _, r := range regions[1:] {
		if m := mass(r); m > bestMass {
			best, bestMass = r, m
		}
	}
	return best, true
}

func mass(r Region) float64 {
	return r.Density * float64(r.Rect.Dx()*r.Rect.Dy())
}
