// Package log provides structured logging for training pipelines.
//
// It wraps rs/zerolog behind a small key-value interface so callers can
// write log.GetLoggerWithName("trainer").Info("progress", "iteration", i)
// without depending on the backend directly.
package log

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is the logging interface used throughout the library.
// Fields are alternating key-value pairs.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

type zeroLogger struct {
	l zerolog.Logger
}

var (
	mu   sync.RWMutex
	root = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
)

// SetLevel sets the global log level ("debug", "info", "warn", "error").
func SetLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	}
}

// SetRoot replaces the root logger. Intended for tests and embedding
// applications that already configure zerolog.
func SetRoot(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	root = l
}

// GetLogger returns the root logger.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zeroLogger{l: root}
}

// GetLoggerWithName returns a logger scoped to a component name.
func GetLoggerWithName(name string) Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zeroLogger{l: root.With().Str("component", name).Logger()}
}

func (z *zeroLogger) Debug(msg string, fields ...interface{}) {
	emit(z.l.Debug(), msg, fields)
}

func (z *zeroLogger) Info(msg string, fields ...interface{}) {
	emit(z.l.Info(), msg, fields)
}

func (z *zeroLogger) Warn(msg string, fields ...interface{}) {
	emit(z.l.Warn(), msg, fields)
}

func (z *zeroLogger) Error(msg string, fields ...interface{}) {
	emit(z.l.Error(), msg, fields)
}

func emit(e *zerolog.Event, msg string, fields []interface{}) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprint(fields[i])
		}
		e = e.Interface(key, fields[i+1])
	}
	e.Msg(msg)
}
