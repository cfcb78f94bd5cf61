package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/vendor-geo/internal/db"
	"github.com/sells-group/vendor-geo/internal/postal"
)

var postalCmd = &cobra.Command{
	Use:   "postal",
	Short: "Manage the postal-code directory",
}

var postalLoadFile string

var postalLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a zip,city,state[,lat,lng] CSV into the postal directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("postal"); err != nil {
			return err
		}

		f, err := os.Open(postalLoadFile)
		if err != nil {
			return eris.Wrapf(err, "postal: open %s", postalLoadFile)
		}
		defer f.Close() //nolint:errcheck

		places, err := postal.ReadCSV(ctx, f)
		if err != nil {
			return err
		}

		var pool db.Pool
		if cfg.Postal.Driver == "postgres" {
			p, err := db.Connect(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns)
			if err != nil {
				return err
			}
			defer p.Close()
			pool = p
		}

		dir, err := openPostal(ctx, cfg.Postal, pool)
		if err != nil {
			return err
		}
		defer dir.Close() //nolint:errcheck

		n, err := dir.Load(ctx, places)
		if err != nil {
			return err
		}
		zap.L().Info("postal directory loaded",
			zap.String("driver", cfg.Postal.Driver),
			zap.Int("parsed", len(places)),
			zap.Int64("written", n),
		)
		return nil
	},
}

func init() {
	postalLoadCmd.Flags().StringVar(&postalLoadFile, "file", "", "path to the postal CSV")
	_ = postalLoadCmd.MarkFlagRequired("file")
	postalCmd.AddCommand(postalLoadCmd)
	rootCmd.AddCommand(postalCmd)
}
