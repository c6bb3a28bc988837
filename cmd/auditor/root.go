package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/logging"
)

type app struct {
	debug  bool
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "auditor",
		Short:         "Compliance auditor for Slack workspaces",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "info"
			if a.debug {
				level = "debug"
			}
			logger, err := logging.New(level, a.debug)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "verbose console logging")

	root.AddCommand(newServeCmd(a), newScanCmd(a))
	return root
}
