package director

import "github.com/ivlev/kenburns/internal/camera"

// ScenarioVersion is the schema version written to new scenario files.
const ScenarioVersion = "1.0"

// Scenario is a reusable shot list for a source document.
type Scenario struct {
	Version string     `yaml:"version"`
	Shots   []ShotSpec `yaml:"shots"`
}

// ShotSpec is one camera move bound to a source page.
type ShotSpec struct {
	Page     int         `yaml:"page"`
	Duration float64     `yaml:"duration"`
	Warp     string      `yaml:"warp,omitempty"`
	Start    camera.Rect `yaml:"start"`
	End      camera.Rect `yaml:"end"`
}
