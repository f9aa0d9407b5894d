package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/km-arc/go-beans/app"
	"github.com/km-arc/go-beans/framework/config"
	"github.com/km-arc/go-beans/framework/container"
	"github.com/km-arc/go-beans/framework/source"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFiles []string

	root := &cobra.Command{
		Use:          "go-beans",
		Short:        "go-beans runs the garage demo on the go-beans container",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "env files to load (default .env)")

	root.AddCommand(runCmd(&envFiles), validateCmd(&envFiles))
	return root
}

// ── run ───────────────────────────────────────────────────────────────────────

func runCmd(envFiles *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the application and block until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load(*envFiles...)
			logger, err := config.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			application := app.New(cfg, logger)
			if err := application.Start(); err != nil {
				return err
			}
			logger.Info("application running",
				zap.String("env", cfg.App.Env),
				zap.Int("components", len(application.SortedNames())),
			)

			return <-application.NotifyOnSignal(context.Background())
		},
	}
}

// ── validate ──────────────────────────────────────────────────────────────────

func validateCmd(envFiles *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [files...]",
		Short: "Check definition files without constructing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			files := args
			if len(files) == 0 {
				files = config.Load(*envFiles...).Definitions
			}

			scratch := container.New()
			if err := source.NewYAMLSource(app.Types(), files...).LoadDefinitions(scratch); err != nil {
				return err
			}
			for _, name := range scratch.SortedNames() {
				def, _ := scratch.Definition(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-28s %s\n", name, def.Type, def.Scope)
			}
			return nil
		},
	}
}
