package analyzer

import (
	"image"
	"image/color"
	"testing"
)

func TestContrastDetector(t *testing.T) {
	// White rectangle on black: the only edges are its border.
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	for y := 50; y < 150; y++ {
		for x := 50; x < 150; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	detector := NewContrastDetector()
	regions, err := detector.Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) == 0 {
		t.Fatal("expected at least one region, got none")
	}

	r := regions[0]
	if r.Rect.Dx() < 80 || r.Rect.Dy() < 80 {
		t.Errorf("region too small for a 100x100 feature: %v", r.Rect)
	}
	if r.Density <= 0 || r.Density > 1 {
		t.Errorf("density out of range: %v", r.Density)
	}

	t.Logf("detected %d regions", len(regions))
	for i, reg := range regions {
		t.Logf("region %d: %v (density %.2f)", i, reg.Rect, reg.Density)
	}
}

func TestContrastDetectorBlankImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 100))

	regions, err := NewContrastDetector().Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("blank image should yield no regions, got %d", len(regions))
	}
}

func TestBestRegion(t *testing.T) {
	small := Region{Rect: image.Rect(0, 0, 10, 10), Density: 1.0}
	large := Region{Rect: image.Rect(0, 0, 100, 100), Density: 0.5}

	best, ok := BestRegion([]Region{small, large})
	if !ok {
		t.Fatal("expected a best region")
	}
	if best.Rect != large.Rect {
		t.Errorf("expected the larger mass to win, got %v", best.Rect)
	}

	if _, ok := BestRegion(nil); ok {
		t.Error("empty input should report no region")
	}
}

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"contrast", false},
		{"", false},
		{"saliency", true},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			detector, err := NewDetector(tt.variant)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if detector == nil {
				t.Error("expected detector, got nil")
			}
		})
	}
}
