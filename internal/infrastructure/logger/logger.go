// Package logger builds the zap loggers used across the sync service and
// provides the gin and gorm adapters that route through them.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stdout, stderr, or a file path
	TimeFormat string
}

// DefaultConfig returns a console logger at info level on stdout.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}

// ProductionConfig returns a json logger suitable for log shippers.
func ProductionConfig() Config {
	return Config{
		Level:      "info",
		Format:     "json",
		Output:     "stdout",
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}

// New creates a zap logger. Extra cores (for example an OpenTelemetry log
// bridge) receive every entry alongside the primary writer.
func New(cfg Config, extra ...zapcore.Core) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	primary := zapcore.NewCore(createEncoder(cfg), createWriter(cfg.Output), level)

	cores := make([]zapcore.Core, 0, len(extra)+1)
	cores = append(cores, primary)
	for _, c := range extra {
		if c != nil {
			cores = append(cores, c)
		}
	}

	var core zapcore.Core = primary
	if len(cores) > 1 {
		core = zapcore.NewTee(cores...)
	}

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// NewForEnvironment picks DefaultConfig or ProductionConfig by environment
// name and applies the given level.
func NewForEnvironment(env, level string) (*zap.Logger, error) {
	cfg := DefaultConfig()
	if env == "production" || env == "prod" {
		cfg = ProductionConfig()
	}
	if level != "" {
		cfg.Level = level
	}
	return New(cfg)
}

func parseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}

func createEncoder(cfg Config) zapcore.Encoder {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if cfg.TimeFormat != "" {
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(cfg.TimeFormat)
	} else {
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if strings.ToLower(cfg.Format) == "json" {
		return zapcore.NewJSONEncoder(encCfg)
	}
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encCfg)
}

func createWriter(output string) zapcore.WriteSyncer {
	switch output {
	case "", "stdout":
		return zapcore.AddSync(os.Stdout)
	case "stderr":
		return zapcore.AddSync(os.Stderr)
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zapcore.AddSync(os.Stdout)
		}
		return zapcore.AddSync(f)
	}
}

// Sync flushes buffered entries. Errors from syncing stdout/stderr on some
// platforms are ignored.
func Sync(l *zap.Logger) {
	if l != nil {
		_ = l.Sync()
	}
}
