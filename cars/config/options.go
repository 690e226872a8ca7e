package config

import (
	"os"
	"time"

	"go.uber.org/zap/zapcore"
)

type Option func(cfg *Config)

func WithLogLevel(level zapcore.Level) Option {
	return func(cfg *Config) {
		if _, ok := os.LookupEnv("LOG_LEVEL"); !ok {
			cfg.Log.LogLevel = level
		}
	}
}

func WithWriteTimeout(timeout time.Duration) Option {
	return func(cfg *Config) {
		if cfg.Server.WriteTimeout == 0 {
			cfg.Server.WriteTimeout = timeout
		}
	}
}
