package log

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the process-wide logger.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" json:"level"`

	// Format is one of console, json.
	Format string `mapstructure:"format" json:"format"`

	// File enables rotated file output when set. Empty means stderr.
	File string `mapstructure:"file" json:"file"`
}

var (
	mu     sync.RWMutex
	logger = newLogger(Config{Level: "info", Format: "console"})
)

// Setup replaces the process-wide logger. Call once at startup.
func Setup(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	logger = newLogger(cfg)
}

func newLogger(cfg Config) *zap.Logger {
	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.InfoLevel
	}

	var encoder zapcore.Encoder

	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder

	switch cfg.Format {
	case "json":
		encoder = zapcore.NewJSONEncoder(ec)
	default:
		ec.ConsoleSeparator = " "
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(ec)
	}

	var syncer zapcore.WriteSyncer
	if cfg.File != "" {
		syncer = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
		})
		// File output stays machine-readable.
		encoder = zapcore.NewJSONEncoder(ec)
	} else {
		syncer = zapcore.AddSync(os.Stderr)
	}

	core := zapcore.NewCore(encoder, syncer, level)

	return zap.New(core, zap.AddStacktrace(zap.ErrorLevel))
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()

	return logger
}

func Debug(ctx context.Context, msg string, fields ...Field) {
	current().Debug(msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...Field) {
	current().Info(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...Field) {
	current().Warn(msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...Field) {
	current().Error(msg, fields...)
}

// Sync flushes buffered log entries. Best effort on shutdown.
func Sync() {
	_ = current().Sync()
}
