package tents

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	DefaultDimension   = 8
	DefaultTentDensity = 1.75
	DefaultStartLives  = 3

	MaxDimension   = 100
	MaxTentDensity = 10
)

var ErrInvalidParams = errors.New("invalid game params")

type GameParams struct {
	Dimension   int
	TentDensity float64
	StartLives  int
}

func DefaultParams() GameParams {
	return GameParams{
		Dimension:   DefaultDimension,
		TentDensity: DefaultTentDensity,
		StartLives:  DefaultStartLives,
	}
}

func (p GameParams) Validate() error {
	switch {
	case p.Dimension < 1 || p.Dimension > MaxDimension:
		return fmt.Errorf("%w: dimension must be in 1..%d, got %d", ErrInvalidParams, MaxDimension, p.Dimension)
	case !(p.TentDensity > 0 && p.TentDensity <= MaxTentDensity):
		return fmt.Errorf("%w: tent density must be in (0, %d], got %v", ErrInvalidParams, MaxTentDensity, p.TentDensity)
	case p.StartLives < 1:
		return fmt.Errorf("%w: start lives must be at least 1, got %d", ErrInvalidParams, p.StartLives)
	}
	return nil
}

// TentTarget is the number of tents the placer aims for. Halves round to
// even.
func (p GameParams) TentTarget() int {
	return int(math.RoundToEven(float64(p.Dimension) * p.TentDensity))
}

func (p GameParams) Seed() string {
	return fmt.Sprintf("%d:%g:%d", p.Dimension, p.TentDensity, p.StartLives)
}

func ParseSeed(seed string) (*GameParams, error) {
	p := &GameParams{}
	sseed := strings.ReplaceAll(seed, ":", " ")
	n, err := fmt.Sscanf(sseed, "%d %g %d", &p.Dimension, &p.TentDensity, &p.StartLives)
	if n != 3 || err != nil {
		return nil, fmt.Errorf(
			`%w: bad seed (sseed = "%s", n = %d, err = %v)`,
			ErrInvalidParams, sseed, n, err,
		)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
