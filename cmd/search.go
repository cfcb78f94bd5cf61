package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/vendor-geo/internal/discovery"
	"github.com/sells-group/vendor-geo/internal/geo"
)

var searchFlags struct {
	lat, lng string
	radius   float64
	vertical string
	market   string
	category string
	text     string
	sort     string
	limit    int
	offset   int
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one discovery search and print the page as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		origin, err := geo.ParsePoint(searchFlags.lat, searchFlags.lng)
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), "search")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Discovery.Search(cmd.Context(), discovery.Query{
			Origin:      origin,
			RadiusMiles: searchFlags.radius,
			Vertical:    searchFlags.vertical,
			Filters: discovery.Filters{
				MarketID: searchFlags.market,
				Category: searchFlags.category,
				Text:     searchFlags.text,
			},
			Sort:   discovery.SortMode(searchFlags.sort),
			Limit:  searchFlags.limit,
			Offset: searchFlags.offset,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchFlags.lat, "lat", "", "origin latitude")
	f.StringVar(&searchFlags.lng, "lng", "", "origin longitude")
	f.Float64Var(&searchFlags.radius, "radius", 0, "search radius in miles (default from config)")
	f.StringVar(&searchFlags.vertical, "vertical", "", "vertical to search")
	f.StringVar(&searchFlags.market, "market", "", "only vendors attending this market")
	f.StringVar(&searchFlags.category, "category", "", "only vendors listing this category")
	f.StringVar(&searchFlags.text, "q", "", "case-insensitive name or description match")
	f.StringVar(&searchFlags.sort, "sort", "rating", "secondary sort: rating, name or listings")
	f.IntVar(&searchFlags.limit, "limit", 0, "page size (default from config)")
	f.IntVar(&searchFlags.offset, "offset", 0, "page offset")
	_ = searchCmd.MarkFlagRequired("lat")
	_ = searchCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(searchCmd)
}
