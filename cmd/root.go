package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GrayGhostDev/lead-generator/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "lead-generator",
	Short: "Lead consolidation and qualification pipeline",
	Long:  "Merges contact records across CSV and enrichment sources, predicts missing emails, scores leads against configurable criteria, and exports the qualified subset.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
