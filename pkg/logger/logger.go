// Package logger builds the zap logger shared by the server, the MCP tool
// server and the CLI jobs, and carries request-scoped loggers in contexts
package logger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration
type Config struct {
	Level       string
	Format      string
	Development bool
	// OutputPaths defaults to stdout. The stdio MCP server owns stdout, so
	// it passes "stderr".
	OutputPaths []string

	// Service, Version and Environment are attached to every entry when set
	Service     string
	Version     string
	Environment string
}

// New creates a new logger instance. Outside development, repeated entries
// are sampled: after the first 100 identical messages in a second only
// every 100th is kept.
func New(cfg Config) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}
	sink, _, err := zap.Open(outputPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to open log outputs: %w", err)
	}

	core := zapcore.NewCore(encoder, sink, level)
	if !cfg.Development {
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 100)
	}

	options := []zap.Option{zap.AddCaller(), zap.Fields(serviceFields(cfg)...)}
	if cfg.Development {
		options = append(options, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return zap.New(core, options...), nil
}

func serviceFields(cfg Config) []zap.Field {
	var fields []zap.Field
	if cfg.Service != "" {
		fields = append(fields, zap.String("service", cfg.Service))
	}
	if cfg.Version != "" {
		fields = append(fields, zap.String("version", cfg.Version))
	}
	if cfg.Environment != "" {
		fields = append(fields, zap.String("environment", cfg.Environment))
	}
	return fields
}

type contextKey struct{}

// WithContext returns a copy of ctx carrying log
func WithContext(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, log)
}

// FromContext returns the logger stored by WithContext, or fallback
func FromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if log, ok := ctx.Value(contextKey{}).(*zap.Logger); ok {
		return log
	}
	if fallback == nil {
		return zap.NewNop()
	}
	return fallback
}
