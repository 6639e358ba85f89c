package director

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteScenario writes a scenario to a YAML file, creating parent
// directories as needed.
func WriteScenario(scenario *Scenario, path string) error {
	data, err := yaml.Marshal(scenario)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadScenario reads a scenario from a YAML file.
func ReadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario parse error: %w", err)
	}
	if scenario.Version != "" && scenario.Version != ScenarioVersion {
		return nil, fmt.Errorf("unsupported scenario version %q", scenario.Version)
	}
	if len(scenario.Shots) == 0 {
		return nil, fmt.Errorf("scenario %s contains no shots", path)
	}
	return &scenario, nil
}
