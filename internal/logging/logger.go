// Package logging provides zerolog backed implementations of aap.Logger.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"github.com/rs/zerolog"
)

// Logger adapts a zerolog.Logger to aap.Logger.
type Logger struct {
	logger zerolog.Logger
}

var _ aap.Logger = (*Logger)(nil)

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}

	return parsed
}

// New returns a JSON structured logger writing to w.
func New(w io.Writer, level string) *Logger {
	return &Logger{
		logger: zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger(),
	}
}

// NewLegacy returns a line oriented logger writing human readable output to w.
func NewLegacy(w io.Writer, level string) *Logger {
	console := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339}

	return &Logger{
		logger: zerolog.New(console).Level(ParseLevel(level)).With().Timestamp().Logger(),
	}
}

// FromZerolog wraps an existing zerolog logger.
func FromZerolog(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger}
}

// Debug implements aap.Logger.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

// Info implements aap.Logger.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

// Warn implements aap.Logger.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

// Error implements aap.Logger.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(msg)
}
