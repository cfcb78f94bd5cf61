package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/vendor-geo/internal/insights"
)

var insightsFlags struct {
	vendor   string
	vertical string
	days     int
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Compute a vendor's location insights and print them as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "insights")
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Insights.Run(cmd.Context(), insights.Request{
			VendorID:     insightsFlags.vendor,
			Vertical:     insightsFlags.vertical,
			LookbackDays: insightsFlags.days,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	insightsCmd.Flags().StringVar(&insightsFlags.vendor, "vendor", "", "vendor profile id")
	insightsCmd.Flags().StringVar(&insightsFlags.vertical, "vertical", "", "vertical for market and buyer scope")
	insightsCmd.Flags().IntVar(&insightsFlags.days, "days", 0, "lookback days (default from config, capped by tier)")
	_ = insightsCmd.MarkFlagRequired("vendor")
	rootCmd.AddCommand(insightsCmd)
}
