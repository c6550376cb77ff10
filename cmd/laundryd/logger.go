package main

import (
	"fmt"

	"github.com/KevinKickass/OpenLaundryCore/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds a production logger at the configured level, or a
// development logger when --debug is set.
func newLogger(cfg config.LogConfig, debug bool) (*zap.Logger, error) {
	if debug || cfg.Development {
		zc := zap.NewDevelopmentConfig()
		if !debug {
			level, err := zapcore.ParseLevel(cfg.Level)
			if err != nil {
				return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
			}
			zc.Level = zap.NewAtomicLevelAt(level)
		}
		return zc.Build()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// setup loads the configuration named by --config and the matching logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg.Log, opts.Debug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
