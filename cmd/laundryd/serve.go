package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KevinKickass/OpenLaundryCore/internal/system"
	"go.uber.org/zap"
)

type serveCommand struct{}

func (c *serveCommand) Execute(_ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Config loaded", zap.String("path", opts.Config), zap.String("version", Version))

	lifecycle, err := system.NewLifecycleManager(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create lifecycle manager: %w", err)
	}

	if err := lifecycle.Start(); err != nil {
		return fmt.Errorf("failed to start system: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case <-lifecycle.Done():
		logger.Info("Shutdown requested via API")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := lifecycle.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("OpenLaundryCore stopped")
	return nil
}
