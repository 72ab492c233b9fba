package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger *slog.Logger
	zapLogger    *zap.Logger
)

// Init builds the process zap logger at the given level and installs a slog bridge
// on top of it as the slog default. format "console" selects the development encoder.
func Init(levelStr, format string) (*zap.Logger, error) {
	level := parseLevel(levelStr)

	var cfg zap.Config
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	SetZap(z)
	return z, nil
}

// SetZap makes z the process logger and routes slog through it.
func SetZap(z *zap.Logger) {
	zapLogger = z
	globalLogger = slog.New(zapslog.NewHandler(z.Core()))
	slog.SetDefault(globalLogger)
}

func parseLevel(levelStr string) zapcore.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO", "":
		return zapcore.InfoLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		slog.Warn("Invalid log level string, defaulting to INFO", "input", levelStr)
		return zapcore.InfoLevel
	}
}

func ensureInitialized() {
	if globalLogger == nil {
		if _, err := Init("INFO", "json"); err != nil {
			SetZap(zap.NewNop())
		}
	}
}

// Debug logs a message at DebugLevel.
func Debug(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs a message at InfoLevel.
func Info(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs a message at WarnLevel.
func Warn(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs a message at ErrorLevel.
func Error(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Log(context.Background(), slog.LevelError, msg, args...)
}

// Fatal logs a message at ErrorLevel, flushes the zap logger and exits.
func Fatal(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Error(msg, args...)
	_ = zapLogger.Sync()
	os.Exit(1)
}
