package logger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type runIDKey struct{}

type implLogger struct {
	sugar *zap.SugaredLogger
	level string
}

// New creates a console Logger writing to stdout.
func New(level string) Logger {
	return NewWithFormat(level, "text")
}

// NewWithFormat creates a Logger; format "json" selects the JSON encoder,
// anything else the console encoder.
func NewWithFormat(level, format string) Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")

	var enc zapcore.Encoder
	if strings.ToLower(format) == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	// Level filtering happens in shouldLog, the core accepts everything.
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stdout), zapcore.DebugLevel)

	return &implLogger{
		sugar: zap.New(core).Sugar(),
		level: strings.ToLower(level),
	}
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return &implLogger{
		sugar: zap.NewNop().Sugar(),
		level: "error",
	}
}

// WithRunID attaches a run identifier that is added to every log line
// written with the returned context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID returns the run identifier stored by WithRunID, if any.
func RunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

func (l *implLogger) shouldLog(level string) bool {
	levels := map[string]int{
		"debug": 0,
		"info":  1,
		"warn":  2,
		"error": 3,
	}

	currentLevel, ok := levels[l.level]
	if !ok {
		currentLevel = 1 // default to info
	}

	targetLevel, ok := levels[level]
	if !ok {
		return true
	}

	return targetLevel >= currentLevel
}

func (l *implLogger) with(ctx context.Context) *zap.SugaredLogger {
	if id := RunID(ctx); id != "" {
		return l.sugar.With("run_id", id)
	}
	return l.sugar
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("debug") {
		l.with(ctx).Debugf(msg, args...)
	}
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("info") {
		l.with(ctx).Infof(msg, args...)
	}
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("warn") {
		l.with(ctx).Warnf(msg, args...)
	}
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("error") {
		l.with(ctx).Errorf(msg, args...)
	}
}

// Helper to format error messages
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%v", err)
}
