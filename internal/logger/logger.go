// Package logger wraps zerolog behind a small application-wide facade so the
// rest of the code logs through one configured instance.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

// LogFormat defines the available log formats.
type LogFormat string

const (
	// FormatJSON emits one JSON object per line.
	FormatJSON LogFormat = "json"
	// FormatConsole emits human-readable colored output.
	FormatConsole LogFormat = "console"
)

// ParseLogFormat parses a string into a LogFormat, defaulting to JSON.
func ParseLogFormat(format string) LogFormat {
	if strings.EqualFold(format, string(FormatConsole)) {
		return FormatConsole
	}
	return FormatJSON
}

// Config holds the logger configuration.
type Config struct {
	// Level is the minimum level to emit (debug, info, warn, error).
	Level string
	// Format selects JSON or console output.
	Format LogFormat
	// Output defaults to os.Stderr.
	Output io.Writer
}

// Logger wraps zerolog.Logger.
type Logger struct {
	zerolog.Logger
}

var (
	globalLogger *Logger
	once         sync.Once
)

// Setup initializes the global logger. Only the first call takes effect.
func Setup(cfg Config) {
	once.Do(func() {
		globalLogger = newLogger(cfg)
	})
}

// Get returns the global logger, initializing it with defaults if Setup was
// never called.
func Get() *Logger {
	once.Do(func() {
		globalLogger = newLogger(Config{Level: "info", Format: FormatConsole})
	})
	return globalLogger
}

// ResetForTesting clears the global logger so tests can re-run Setup.
func ResetForTesting() {
	globalLogger = nil
	once = sync.Once{}
}

// Component returns a child logger tagged with a component name.
func Component(name string) *Logger {
	l := Get().With().Str("component", name).Logger()
	return &Logger{Logger: l}
}

func newLogger(cfg Config) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var l zerolog.Logger
	switch cfg.Format {
	case FormatConsole:
		l = zerolog.New(zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339})
	default:
		l = zerolog.New(output)
	}

	l = l.Level(level).With().Timestamp().Logger()
	return &Logger{Logger: l}
}
