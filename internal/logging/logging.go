// Package logging builds the zap loggers used by the command line tools.
package logging

import (
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity level constants for CLI flag counts.
const (
	VerbosityQuiet = 0 // No flags: warnings and errors only
	VerbosityInfo  = 1 // -v: + accepted and rejected declarations
	VerbosityDebug = 2 // -vv: + every registered declaration
)

// VerbosityToLevel maps verbosity flags (-v, -vv) to zap log levels.
//
//	0 (none) -> WarnLevel
//	1 (-v)   -> InfoLevel
//	2+       -> DebugLevel
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityQuiet:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// New creates a logger writing to stderr, so generated output on stdout stays clean.
func New(verbosity int, jsonOutput bool) (*zap.SugaredLogger, error) {
	level := VerbosityToLevel(verbosity)
	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.OutputPaths = []string{"stderr"}
		config.ErrorOutputPaths = []string{"stderr"}
		logger, err := config.Build()
		if err != nil {
			return nil, err
		}
		return logger.Sugar(), nil
	}
	return NewConsole(os.Stderr, level), nil
}

// NewConsole creates a human readable logger writing to w.
func NewConsole(w io.Writer, level zapcore.Level) *zap.SugaredLogger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core).Sugar()
}

// WithRun tags every entry of one generation run with a fresh run id.
func WithRun(log *zap.SugaredLogger) (*zap.SugaredLogger, string) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	id := uuid.NewString()
	return log.With("run", id), id
}
