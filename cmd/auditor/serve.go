package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/config"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/logging"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/orchestrator"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Slack event service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireSlack(); err != nil {
				return err
			}

			logger := a.logger
			if !a.debug {
				if logger, err = logging.New(cfg.LogLevel, cfg.LogDevelopment); err != nil {
					return err
				}
				a.logger = logger
			}

			if cfg.EnvFile != "" {
				logger.Info("Loaded environment file", zap.String("path", cfg.EnvFile))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			orch := orchestrator.NewOrchestrator(cfg, logger)
			if err := orch.Start(ctx); err != nil {
				logger.Error("Failed to start", zap.Error(err))
				_ = orch.Stop()
				return err
			}

			runErr := orch.Run(ctx)
			if err := orch.Stop(); err != nil {
				logger.Warn("Error during shutdown", zap.Error(err))
			}
			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				return runErr
			}
			return nil
		},
	}
}
