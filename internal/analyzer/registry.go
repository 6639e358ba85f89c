package analyzer

import "fmt"

// NewDetector creates a detector for the given variant name.
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "contrast", "":
		return NewContrastDetector(), nil
	case "saliency":
		return nil, fmt.Errorf("saliency detector not yet implemented")
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}
