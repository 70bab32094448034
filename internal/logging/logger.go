package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// MaskToken replaces sensitive values anywhere they would be printed.
const MaskToken = "[REDACTED]"

// Logger provides leveled logging with redaction support. The zero
// value is not usable; construct with New.
type Logger struct {
	verbose bool
	noColor bool
	out     io.Writer
}

// New creates a new logger instance. When verbose is false, Debug
// output is suppressed.
func New(verbose, noColor bool) *Logger {
	return &Logger{
		verbose: verbose,
		noColor: noColor,
		out:     os.Stderr,
	}
}

// NewWithWriter creates a logger that writes to the given writer.
// Used by tests to capture output.
func NewWithWriter(w io.Writer, verbose bool) *Logger {
	return &Logger{
		verbose: verbose,
		noColor: true,
		out:     w,
	}
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(l.out, "\033[32m✓\033[0m %s\n", msg)
	} else {
		fmt.Fprintf(l.out, "✓ %s\n", msg)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(l.out, "\033[33m⚠\033[0m %s\n", msg)
	} else {
		fmt.Fprintf(l.out, "⚠ %s\n", msg)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(l.out, "\033[31m✗\033[0m %s\n", msg)
	} else {
		fmt.Fprintf(l.out, "✗ %s\n", msg)
	}
}

// Debug logs a debug message if verbose mode is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(l.out, "\033[36m[DEBUG]\033[0m %s\n", msg)
	} else {
		fmt.Fprintf(l.out, "[DEBUG] %s\n", msg)
	}
}

// Secret represents a value that should never appear in log output.
type Secret string

// String implements the Stringer interface, always returning the mask token
func (s Secret) String() string {
	return MaskToken
}

// GoString implements the GoStringer interface for %#v formatting
func (s Secret) GoString() string {
	return MaskToken
}

// Redact replaces occurrences of the given secret values in a string
// with the mask token.
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if secret != "" && len(secret) > 3 { // Only redact non-trivial secrets
			result = strings.ReplaceAll(result, secret, MaskToken)
		}
	}
	return result
}
