package logging

import (
	"io"
	"os"
	"reflect"
	"strings"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

// LevelEnvVar selects the minimum level of the default component loggers.
const LevelEnvVar = "INTERPRETER_LOG_LEVEL"

// Logger defines a minimal, printf-style logging contract.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// IsNil reports whether logger is nil or wraps a nil pointer receiver.
func IsNil(logger Logger) bool {
	if logger == nil {
		return true
	}
	val := reflect.ValueOf(logger)
	switch val.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
		return val.IsNil()
	default:
		return false
	}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if IsNil(logger) {
		return Nop()
	}
	return logger
}

var (
	outputMu     sync.Mutex
	output       io.Writer = os.Stderr
	defaultLevel           = levelFromEnv(os.LookupEnv)
)

// SetOutput redirects loggers created afterwards. Intended for the CLI entry
// point and tests.
func SetOutput(w io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	if w == nil {
		w = io.Discard
	}
	output = w
}

// SetLevel changes the level used by loggers created afterwards.
func SetLevel(level string) {
	outputMu.Lock()
	defer outputMu.Unlock()
	defaultLevel = parseLevel(level, defaultLevel)
}

// NewComponentLogger returns the default application logger scoped to a component.
func NewComponentLogger(component string) Logger {
	outputMu.Lock()
	w, level := output, defaultLevel
	outputMu.Unlock()
	return NewWriterLogger(w, component, level)
}

// NewWriterLogger builds a component logger writing to w at the given level.
func NewWriterLogger(w io.Writer, component string, level charmlog.Level) Logger {
	if w == nil {
		w = io.Discard
	}
	return &componentLogger{
		logger: charmlog.NewWithOptions(w, charmlog.Options{
			Prefix: strings.TrimSpace(component),
			Level:  level,
		}),
	}
}

type componentLogger struct {
	logger *charmlog.Logger
}

func (l *componentLogger) Debug(format string, args ...any) {
	l.logger.Debugf(format, args...)
}

func (l *componentLogger) Info(format string, args ...any) {
	l.logger.Infof(format, args...)
}

func (l *componentLogger) Warn(format string, args ...any) {
	l.logger.Warnf(format, args...)
}

func (l *componentLogger) Error(format string, args ...any) {
	l.logger.Errorf(format, args...)
}

func levelFromEnv(lookup func(string) (string, bool)) charmlog.Level {
	if value, ok := lookup(LevelEnvVar); ok {
		return parseLevel(value, charmlog.WarnLevel)
	}
	return charmlog.WarnLevel
}

func parseLevel(value string, fallback charmlog.Level) charmlog.Level {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return fallback
	}
	level, err := charmlog.ParseLevel(trimmed)
	if err != nil {
		return fallback
	}
	return level
}
