package camera

import (
	"testing"
)

func TestWarpPresetsAnchorEndpoints(t *testing.T) {
	// Every preset must map 0 to 0 and 1 to 1 so shots start and end on
	// the configured rects.
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			w, err := ByName(name)
			if err != nil {
				t.Fatalf("ByName(%q): %v", name, err)
			}
			if got := w(0); abs(got) > 1e-9 {
				t.Errorf("%s(0) = %v, want 0", name, got)
			}
			if got := w(1); abs(got-1) > 1e-9 {
				t.Errorf("%s(1) = %v, want 1", name, got)
			}
		})
	}
}

func TestByNameUnknown(t *testing.T) {
	if _, err := ByName("warp-factor-9"); err == nil {
		t.Error("expected error for unknown warp name")
	}
}

func TestCompose(t *testing.T) {
	double := func(t float64) float64 { return 2 * t }
	square := func(t float64) float64 { return t * t }

	// Compose(double, square)(3) = double(9) = 18
	got := Compose(double, square)(3)
	if abs(got-18) > 1e-12 {
		t.Errorf("Compose(double, square)(3) = %v, want 18", got)
	}

	// Order matters: Compose(square, double)(3) = square(6) = 36
	got = Compose(square, double)(3)
	if abs(got-36) > 1e-12 {
		t.Errorf("Compose(square, double)(3) = %v, want 36", got)
	}
}

func TestPingPong(t *testing.T) {
	pp := PingPong(Linear)

	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{0.25, 0.5},
		{0.5, 1.0}, // full excursion at the midpoint
		{0.75, 0.5},
		{1.0, 0}, // back where it started
	}

	for _, tt := range tests {
		if got := pp(tt.in); abs(got-tt.want) > 1e-9 {
			t.Errorf("PingPong(Linear)(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPingPongComposesWithPresets(t *testing.T) {
	sine, err := ByName("sine")
	if err != nil {
		t.Fatal(err)
	}
	pp := PingPong(sine)

	if got := pp(0); abs(got) > 1e-9 {
		t.Errorf("composed warp should start at 0, got %v", got)
	}
	if got := pp(1); abs(got) > 1e-9 {
		t.Errorf("composed warp should return to 0, got %v", got)
	}
	if got := pp(0.5); abs(got-1) > 1e-9 {
		t.Errorf("composed warp should peak at 1, got %v", got)
	}
	t.Logf("pingpong(sine) at quarter points: %.4f %.4f %.4f", pp(0.25), pp(0.5), pp(0.75))
}
