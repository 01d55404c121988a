package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Placement is one unit to spawn at battle setup.
type Placement struct {
	Unit string  `yaml:"unit"`
	Team int     `yaml:"team"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// SiteDef is one construction site on the map.
type SiteDef struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Team     int     `yaml:"team"`
	Required int     `yaml:"required"`
}

// MineDef is one gold mine on the map.
type MineDef struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Reserves int     `yaml:"reserves"`
}

// Scenario is a battle setup: who spawns where, plus map objects.
type Scenario struct {
	Name       string      `yaml:"name"`
	Placements []Placement `yaml:"placements"`
	Sites      []SiteDef   `yaml:"sites"`
	Mines      []MineDef   `yaml:"mines"`
}

// LoadScenario loads a battle scenario from YAML.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(s.Placements) == 0 {
		return nil, fmt.Errorf("scenario %s: no placements", path)
	}
	for i, p := range s.Placements {
		if p.Unit == "" {
			return nil, fmt.Errorf("scenario %s: placement %d missing unit", path, i)
		}
	}
	return &s, nil
}
