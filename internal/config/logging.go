package config

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

// NewLogger builds the process logger: coloured text at debug level in
// development, JSON at info level otherwise. LOG_FILE adds a rotated JSON
// log file next to stderr.
func NewLogger() (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level := logrus.InfoLevel
	if Development() {
		level = logrus.DebugLevel
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if levelStr, ok := os.LookupEnv("LOG_LEVEL"); ok {
		parsed, err := logrus.ParseLevel(levelStr)
		if err != nil {
			return nil, fmt.Errorf("unable to parse LOG_LEVEL: %w", err)
		}
		level = parsed
	}
	log.SetLevel(level)

	if filename, ok := os.LookupEnv("LOG_FILE"); ok && filename != "" {
		hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   filename,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Level:      level,
			Formatter: &logrus.JSONFormatter{
				TimestampFormat: time.RFC3339,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("unable to open log file %s: %w", filename, err)
		}
		log.AddHook(hook)
	}

	return log, nil
}
