// Package log provides logging utilities for ideaflow.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log level names accepted by SetLevel.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var zapLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Default is the logger used by all ideaflow packages. It borrows zap's
// SugaredLogger; replace it with any implementation of the Logger interface.
var Default Logger = zap.New(
	zapcore.NewCore(
		zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "lvl",
			MessageKey:     "message",
			CallerKey:      "caller",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}),
		zapcore.AddSync(os.Stderr),
		zapLevel,
	),
	zap.AddCaller(),
	zap.AddCallerSkip(1),
).Sugar()

// SetLevel sets the level of the default logger. Unrecognized names fall
// back to info.
func SetLevel(level string) {
	switch level {
	case LevelDebug:
		zapLevel.SetLevel(zapcore.DebugLevel)
	case LevelInfo:
		zapLevel.SetLevel(zapcore.InfoLevel)
	case LevelWarn:
		zapLevel.SetLevel(zapcore.WarnLevel)
	case LevelError:
		zapLevel.SetLevel(zapcore.ErrorLevel)
	default:
		zapLevel.SetLevel(zapcore.InfoLevel)
	}
}

// Logger is the logging interface used throughout ideaflow.
type Logger interface {
	// Debug logs to DEBUG log. Arguments are handled in the manner of fmt.Print.
	Debug(args ...any)
	// Debugf logs to DEBUG log. Arguments are handled in the manner of fmt.Printf.
	Debugf(format string, args ...any)
	// Info logs to INFO log. Arguments are handled in the manner of fmt.Print.
	Info(args ...any)
	// Infof logs to INFO log. Arguments are handled in the manner of fmt.Printf.
	Infof(format string, args ...any)
	// Warn logs to WARNING log. Arguments are handled in the manner of fmt.Print.
	Warn(args ...any)
	// Warnf logs to WARNING log. Arguments are handled in the manner of fmt.Printf.
	Warnf(format string, args ...any)
	// Error logs to ERROR log. Arguments are handled in the manner of fmt.Print.
	Error(args ...any)
	// Errorf logs to ERROR log. Arguments are handled in the manner of fmt.Printf.
	Errorf(format string, args ...any)
	// Fatal logs to ERROR log and exits. Arguments are handled in the manner of fmt.Print.
	Fatal(args ...any)
	// Fatalf logs to ERROR log and exits. Arguments are handled in the manner of fmt.Printf.
	Fatalf(format string, args ...any)
}

// Debug logs through the default logger at debug level.
func Debug(args ...any) { Default.Debug(args...) }

// Debugf logs through the default logger at debug level with formatting.
func Debugf(format string, args ...any) { Default.Debugf(format, args...) }

// Info logs through the default logger at info level.
func Info(args ...any) { Default.Info(args...) }

// Infof logs through the default logger at info level with formatting.
func Infof(format string, args ...any) { Default.Infof(format, args...) }

// Warn logs through the default logger at warn level.
func Warn(args ...any) { Default.Warn(args...) }

// Warnf logs through the default logger at warn level with formatting.
func Warnf(format string, args ...any) { Default.Warnf(format, args...) }

// Error logs through the default logger at error level.
func Error(args ...any) { Default.Error(args...) }

// Errorf logs through the default logger at error level with formatting.
func Errorf(format string, args ...any) { Default.Errorf(format, args...) }

// Fatal logs through the default logger and exits.
func Fatal(args ...any) { Default.Fatal(args...) }

// Fatalf logs through the default logger with formatting and exits.
func Fatalf(format string, args ...any) { Default.Fatalf(format, args...) }
