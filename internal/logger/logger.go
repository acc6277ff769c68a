// Package logger exposes the process-wide structured logger. Handlers log
// failures here with full detail; HTTP responses only carry sanitized
// messages outside development mode.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var L *zap.Logger = zap.NewNop()

// Init builds the global logger. Production config (JSON, sampling) is used
// in prod, the human-readable development config everywhere else.
func Init(env, level string) error {
	cfg := zap.NewDevelopmentConfig()
	if env == "prod" {
		cfg = zap.NewProductionConfig()
	}
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	L = l
	return nil
}

// Sync flushes buffered entries; called on shutdown.
func Sync() { _ = L.Sync() }
