// Package logging configures the process-wide zerolog logger. The binary
// calls Setup once; packages take a component logger from NewLogger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is a level name as it appears in LOG_LEVEL.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// levels maps accepted names, lower-cased, to zerolog levels.
var levels = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

// Config selects level and output format.
type Config struct {
	Level LogLevel

	// Pretty switches from JSON lines to zerolog's console format.
	Pretty bool

	// Output defaults to os.Stderr when nil.
	Output io.Writer
}

// DefaultConfig logs JSON at info level to stderr.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Output: os.Stderr}
}

// Setup applies cfg to zerolog's global level and log.Logger, and returns
// the configured logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return log.Logger
}

// Valid reports whether l names a known level, ignoring case.
func (l LogLevel) Valid() bool {
	_, ok := levels[strings.ToLower(string(l))]
	return ok
}

// ParseLevel maps l to a zerolog level. Unknown names yield info.
func ParseLevel(l LogLevel) zerolog.Level {
	if level, ok := levels[strings.ToLower(string(l))]; ok {
		return level
	}
	return zerolog.InfoLevel
}

// NewLogger derives a logger tagged with component from the global logger.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Levels in use:
//
// Debug: request URLs before they are sent, page collection start.
//
// Info: page collection progress and completion, snapshot writes, server
// startup and shutdown.
//
// Warn: failed envelopes of every class, abandoned page collections and
// snapshot store errors the proxy answers through.
//
// Error: server failures and configuration errors.
//
// Fields: component (cmc-client, cmc-proxy), endpoint, status, error_class,
// page, start, collected, total, converter.
