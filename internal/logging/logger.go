package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger provides CLI-flavored diagnostic logging with redaction support.
// All output goes to stderr so stdout stays reserved for command payloads.
type Logger struct {
	zl zerolog.Logger
}

// New creates a new logger instance
func New(debug, noColor bool) *Logger {
	return NewWithWriter(os.Stderr, debug, noColor)
}

// NewWithWriter creates a logger writing to w. Tests use this to capture
// output.
func NewWithWriter(w io.Writer, debug, noColor bool) *Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{
		Out:         w,
		NoColor:     noColor,
		PartsOrder:  []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: levelGlyph(noColor),
	}

	return &Logger{zl: zerolog.New(console).Level(level)}
}

// levelGlyph renders zerolog levels as the glyphs users see on stderr
func levelGlyph(noColor bool) zerolog.Formatter {
	return func(i interface{}) string {
		lvl, _ := i.(string)

		var glyph, color string
		switch lvl {
		case zerolog.LevelDebugValue:
			glyph, color = "[DEBUG]", "\033[36m"
		case zerolog.LevelInfoValue:
			glyph, color = "✓", "\033[32m"
		case zerolog.LevelWarnValue:
			glyph, color = "⚠", "\033[33m"
		case zerolog.LevelErrorValue:
			glyph, color = "✗", "\033[31m"
		default:
			glyph = lvl
		}

		if noColor || color == "" {
			return glyph
		}
		return color + glyph + "\033[0m"
	}
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Debug logs a debug message if debug mode is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

// Secret represents a value that should be redacted in logs
type Secret string

// String implements the Stringer interface, always returning a redacted value
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements the GoStringer interface for %#v formatting
func (s Secret) GoString() string {
	return "[REDACTED]"
}

// Redact replaces sensitive values in a string with [REDACTED]
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if secret != "" && len(secret) > 3 { // Only redact non-trivial secrets
			result = strings.ReplaceAll(result, secret, "[REDACTED]")
		}
	}
	return result
}
