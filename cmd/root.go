package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridsight/site-scorer/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "site-scorer",
	Short: "Location suitability scoring for retail sites",
	Long:  "Scores candidate retail locations on demographics, income, competition, complementary businesses, and foot traffic using spatial census data and external business datasets.",
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
