package config

import (
	"fmt"
	"os"
	"time"
)

const (
	defaultPort       = ":8080"
	defaultSessionTTL = 2 * time.Hour
)

func BasePath() string {
	return os.Getenv("APP_BASE_PATH")
}

func Port() string {
	port, ok := os.LookupEnv("APP_PORT")
	if !ok || port == "" {
		return defaultPort
	}
	if port[0] != ':' {
		port = ":" + port
	}
	return port
}

// SessionTTL is how long an untouched live game is kept in memory.
func SessionTTL() (time.Duration, error) {
	ttlStr, ok := os.LookupEnv("SESSION_TTL")
	if !ok {
		return defaultSessionTTL, nil
	}
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return 0, fmt.Errorf("unable to parse SESSION_TTL: %w", err)
	}
	return ttl, nil
}

// Development is set by DEVELOPMENT to anything but "0".
func Development() bool {
	development, ok := os.LookupEnv("DEVELOPMENT")
	return ok && development != "0"
}
