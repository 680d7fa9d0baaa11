// Package cli implements the geekqa operator command line.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"geekqa/internal/bootstrap"
	"geekqa/internal/config"
)

// skipConfigAnnotation marks commands that run without loading configuration.
const skipConfigAnnotation = "geekqa/skip-config"

var (
	// loadConfig is replaced in tests.
	loadConfig = config.Load
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "geekqa",
	Short: "Operate the GeekQA question answering service",
	Long: `geekqa runs one-off operations against the same configuration as the API server:
ask a question through the full retrieval and generation pipeline, manage the
greeting list, apply database migrations and validate prompt templates.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Annotations[skipConfigAnnotation] == "true" {
			return nil
		}
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
		bootstrap.SetupLogger(cfg, os.Stderr)
		return nil
	},
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
