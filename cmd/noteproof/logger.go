// logger.go - Structured logging for the noteproof CLI
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

const timeFormat = "2006-01-02 15:04:05"

// Logger writes leveled events to the console and optionally to a log file.
// Warnings and errors, plus explicit Audit events, are also copied to the
// audit log when one is configured.
type Logger struct {
	zl    zerolog.Logger
	audit *zerolog.Logger
	files []*os.File
}

// NewLogger creates a new logger instance. Unknown levels fall back to info.
func NewLogger(level, logFile, auditFile string, console io.Writer) (*Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	logger := &Logger{}
	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: timeFormat}}

	if logFile != "" {
		file, err := openAppend(logFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.files = append(logger.files, file)
		writers = append(writers, file)
	}

	if auditFile != "" {
		file, err := openAppend(auditFile)
		if err != nil {
			logger.Close()
			return nil, fmt.Errorf("failed to open audit file: %w", err)
		}
		logger.files = append(logger.files, file)
		audit := zerolog.New(file).With().Timestamp().Str("stream", "audit").Logger()
		logger.audit = &audit
	}

	logger.zl = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().Timestamp().
		Logger()
	return logger, nil
}

func openAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// Close closes the logger and its files
func (l *Logger) Close() error {
	var first error
	for _, f := range l.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.files = nil
	return first
}

// Zerolog exposes the underlying logger, e.g. to hand it to gnark.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
	if l.audit != nil {
		l.audit.Warn().Msgf(format, args...)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
	if l.audit != nil {
		l.audit.Error().Msgf(format, args...)
	}
}

// Audit logs an audit event
func (l *Logger) Audit(event string, details map[string]interface{}) {
	if l.audit != nil {
		l.audit.Info().Fields(details).Msg(event)
	}
}
