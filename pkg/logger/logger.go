package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the zap logger used by every entry point. CONFIG_ENV=local
// (the default) gets a development console logger; everything else gets
// production JSON. LOG_LEVEL overrides the level when set.
func NewLogger() *zap.Logger {
	var cfg zap.Config
	switch os.Getenv("CONFIG_ENV") {
	case "", "local":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if parsed, err := zapcore.ParseLevel(lvl); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(parsed)
		}
	}

	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return l
}
