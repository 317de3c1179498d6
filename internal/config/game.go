package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vancomm/tents-server/internal/tents"
)

func lookupInt(key string, fallback int) (int, error) {
	s, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unable to convert %s to int: %w", key, err)
	}
	return v, nil
}

func lookupFloat(key string, fallback float64) (float64, error) {
	s, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to convert %s to float: %w", key, err)
	}
	return v, nil
}

// NewGameParams reads the default puzzle configuration. Unset variables fall
// back to the built-in defaults.
func NewGameParams() (*tents.GameParams, error) {
	defaults := tents.DefaultParams()

	dimension, err := lookupInt("TENTS_DIMENSION", defaults.Dimension)
	if err != nil {
		return nil, err
	}

	density, err := lookupFloat("TENTS_DENSITY", defaults.TentDensity)
	if err != nil {
		return nil, err
	}

	lives, err := lookupInt("TENTS_START_LIVES", defaults.StartLives)
	if err != nil {
		return nil, err
	}

	params := &tents.GameParams{
		Dimension:   dimension,
		TentDensity: density,
		StartLives:  lives,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return params, nil
}
