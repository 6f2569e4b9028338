// Package logger holds the process-wide structured logger.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global logger instance
	Logger *zap.SugaredLogger
	// Flag to track if JSON output is enabled
	JSONOutput bool
)

func init() {
	// No-op until Initialize runs, so packages may log at load time.
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger. Logs go to stderr since stdout
// carries LSP traffic when serving over stdio.
func Initialize(jsonOutput bool, level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var encoder zapcore.Encoder
	if jsonOutput {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		config := zap.NewDevelopmentEncoderConfig()
		config.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		encoder = zapcore.NewConsoleEncoder(config)
	}

	JSONOutput = jsonOutput
	Logger = zap.New(zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), lvl)).Sugar()
	return nil
}

// Sync flushes buffered log entries.
func Sync() error {
	return Logger.Sync()
}

// With returns a child logger carrying the given key-value pairs.
func With(keysAndValues ...any) *zap.SugaredLogger {
	return Logger.With(keysAndValues...)
}

func Debugw(msg string, keysAndValues ...any) { Logger.Debugw(msg, keysAndValues...) }
func Infow(msg string, keysAndValues ...any)  { Logger.Infow(msg, keysAndValues...) }
func Warnw(msg string, keysAndValues ...any)  { Logger.Warnw(msg, keysAndValues...) }
func Errorw(msg string, keysAndValues ...any) { Logger.Errorw(msg, keysAndValues...) }
