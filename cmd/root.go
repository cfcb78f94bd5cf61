package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/vendor-geo/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "vendor-geo",
	Short: "Geospatial vendor discovery and location insights",
	Long:  "Finds vendors near a point with PostGIS (bounding-box fallback), enriches and ranks them, and computes tier-gated location analytics for vendors.",
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
