package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := *cfg
		if out.Store.DatabaseURL != "" {
			out.Store.DatabaseURL = "<redacted>"
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return eris.Wrap(err, "config: encode yaml")
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
