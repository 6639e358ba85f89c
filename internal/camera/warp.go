package camera

import (
	"fmt"
	"sort"

	"github.com/fogleman/ease"
)

// Warp remaps normalized render progress before rect interpolation. A warp
// should satisfy w(0)=0 and w(1)=1 so the move starts and ends on the
// configured rects; this is deliberately not enforced.
type Warp func(float64) float64

// Linear is the identity warp.
func Linear(t float64) float64 { return t }

// Compose chains warps right to left: Compose(f, g)(t) = f(g(t)).
func Compose(outer, inner Warp) Warp {
	return func(t float64) float64 {
		return outer(inner(t))
	}
}

// PingPong folds a warp into an out-and-back move: forward on [0, 0.5],
// reversed on (0.5, 1].
func PingPong(w Warp) Warp {
	return func(t float64) float64 {
		if t <= 0.5 {
			return w(2 * t)
		}
		return w(2 - 2*t)
	}
}

var warps = map[string]Warp{
	"linear":   Linear,
	"sine":     ease.InOutSine,
	"in-sine":  ease.InSine,
	"out-sine": ease.OutSine,
	"quad":     ease.InOutQuad,
	"cubic":    ease.InOutCubic,
	"quart":    ease.InOutQuart,
	"expo":     ease.InOutExpo,
	"back":     ease.InOutBack,
	"elastic":  ease.InOutElastic,
	"bounce":   ease.OutBounce,
}

// ByName resolves a named warp preset.
func ByName(name string) (Warp, error) {
	if w, ok := warps[name]; ok {
		return w, nil
	}
	return nil, fmt.Errorf("unknown warp %q, available: %v", name, Names())
}

// Names lists the warp presets in stable order.
func Names() []string {
	names := make([]string, 0, len(warps))
	for name := range warps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
