package insights

import (
	"math"
	"sort"

	"github.com/sells-group/vendor-geo/internal/geo"
	"github.com/sells-group/vendor-geo/internal/scorer"
)

// MissingMarket is a nearby market the vendor does not attend yet.
type MissingMarket struct {
	MarketID      string  `json:"market_id"`
	MarketName    string  `json:"market_name"`
	City          string  `json:"city,omitempty"`
	State         string  `json:"state,omitempty"`
	DistanceMiles float64 `json:"distance_miles"`
	VendorCount   int     `json:"vendor_count"`
}

// ProMetrics extends BasicMetrics.
type ProMetrics struct {
	BasicMetrics
	MissingMarkets []MissingMarket        `json:"missing_markets"`
	LocationScores []scorer.LocationScore `json:"location_scores"`
}

// ProOptions bounds the missing-markets search.
type ProOptions struct {
	RadiusMiles float64
	Limit       int
}

// BuildPro adds missing markets and location scores to basic. attended holds the
// markets the vendor is scheduled at or has ever sold at; markets seen in
// stats are added to it.
func BuildPro(basic *BasicMetrics, stats *Stats, attended []MarketRef, candidates []CandidateMarket, opts ProOptions) *ProMetrics {
	footprint := append(append([]MarketRef{}, attended...), stats.History...)

	return &ProMetrics{
		BasicMetrics:   *basic,
		MissingMarkets: missingMarkets(footprint, candidates, opts),
		LocationScores: locationScores(stats),
	}
}

func missingMarkets(footprint []MarketRef, candidates []CandidateMarket, opts ProOptions) []MissingMarket {
	attended := make(map[string]bool, len(footprint))
	var coords []geo.Point
	for _, m := range footprint {
		attended[m.ID] = true
		if m.Location != nil {
			coords = append(coords, *m.Location)
		}
	}

	out := []MissingMarket{}
	if len(coords) == 0 {
		return out
	}
	for _, c := range candidates {
		if attended[c.ID] {
			continue
		}
		best := math.Inf(1)
		for _, p := range coords {
			best = math.Min(best, geo.DistanceMiles(p, c.Location))
		}
		if best > opts.RadiusMiles {
			continue
		}
		out = append(out, MissingMarket{
			MarketID:      c.ID,
			MarketName:    c.Name,
			City:          c.City,
			State:         c.State,
			DistanceMiles: best,
			VendorCount:   c.VendorCount,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistanceMiles != out[j].DistanceMiles {
			return out[i].DistanceMiles < out[j].DistanceMiles
		}
		return out[i].MarketID < out[j].MarketID
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	for i := range out {
		out[i].DistanceMiles = math.Round(out[i].DistanceMiles*10) / 10
	}
	return out
}

func locationScores(stats *Stats) []scorer.LocationScore {
	factors := make([]scorer.MarketFactors, 0, len(stats.Markets))
	for _, m := range stats.Markets {
		factors = append(factors, scorer.MarketFactors{
			MarketID:           m.MarketID,
			MarketName:         m.MarketName,
			RevenueCents:       m.RevenueCents,
			Buyers:             len(m.Buyers),
			AverageTicketCents: m.AverageTicketCents(),
			RepeatRate:         m.RepeatRate(),
		})
	}
	return scorer.LocationScores(factors)
}
