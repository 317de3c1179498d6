package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vancomm/tents-server/internal/tents"
)

// File is the optional YAML configuration read by the command line tool.
//
//	game:
//	  dimension: 8
//	  tent_density: 1.75
//	  start_lives: 3
//	log_level: debug
type File struct {
	Game     GameSection `yaml:"game"`
	LogLevel string      `yaml:"log_level"`
}

type GameSection struct {
	Dimension   int     `yaml:"dimension"`
	TentDensity float64 `yaml:"tent_density"`
	StartLives  int     `yaml:"start_lives"`
}

func ReadFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("unable to parse config %s: %w", path, err)
	}
	return &f, nil
}

// Apply overrides the fields of params that the file sets.
func (s GameSection) Apply(params *tents.GameParams) {
	if s.Dimension != 0 {
		params.Dimension = s.Dimension
	}
	if s.TentDensity != 0 {
		params.TentDensity = s.TentDensity
	}
	if s.StartLives != 0 {
		params.StartLives = s.StartLives
	}
}
