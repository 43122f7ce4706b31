/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package logger provides the process-wide diagnostic logger. Output goes to
// stderr so that command output on stdout stays machine-readable.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Default logs to stderr. Set to io.Discard for silent mode.
	output io.Writer = os.Stderr
	level            = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugar  *zap.SugaredLogger
)

func init() {
	sugar = build(output)
}

func build(w io.Writer) *zap.SugaredLogger {
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		EncodeLevel:      zapcore.LowercaseLevelEncoder,
		ConsoleSeparator: " ",
	})
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core).Sugar()
}

// SetOutput configures the logger output destination.
// Use io.Discard to silence all logging.
func SetOutput(w io.Writer) {
	output = w
	sugar = build(output)
}

// SetVerbose enables debug messages.
func SetVerbose(verbose bool) {
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
		return
	}
	level.SetLevel(zapcore.InfoLevel)
}

// Error logs an error message.
func Error(format string, args ...any) {
	sugar.Errorf(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...any) {
	sugar.Warnf(format, args...)
}

// Info logs an informational message.
func Info(format string, args ...any) {
	sugar.Infof(format, args...)
}

// Debug logs a debug message, shown only in verbose mode.
func Debug(format string, args ...any) {
	sugar.Debugf(format, args...)
}

// Infow logs a message with structured key/value context.
func Infow(msg string, keysAndValues ...any) {
	sugar.Infow(msg, keysAndValues...)
}

// Sync flushes buffered log entries.
func Sync() {
	_ = sugar.Sync()
}
