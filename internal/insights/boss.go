package insights

import (
	"math"
	"sort"

	"github.com/sells-group/vendor-geo/internal/geo"
	"github.com/sells-group/vendor-geo/internal/postal"
)

// Buyer density rings, in miles.
const (
	densityNear = 5.0
	densityMid  = 10.0
	densityFar  = 25.0
)

// BuyerDensity counts buyers with a known location around one market.
type BuyerDensity struct {
	MarketID      string `json:"market_id"`
	MarketName    string `json:"market_name"`
	Within5Miles  int    `json:"within_5_miles"`
	Within10Miles int    `json:"within_10_miles"`
	Within25Miles int    `json:"within_25_miles"`
}

// CoverageGap is a postal code with heavy search volume in the vertical.
type CoverageGap struct {
	PostalCode        string `json:"postal_code"`
	City              string `json:"city,omitempty"`
	State             string `json:"state,omitempty"`
	Searches          int    `json:"searches"`
	ZeroResultPercent int    `json:"zero_result_percent"`
}

// BossMetrics extends ProMetrics.
type BossMetrics struct {
	ProMetrics
	BuyerDensity []BuyerDensity `json:"buyer_density"`
	CoverageGaps []CoverageGap  `json:"coverage_gaps"`
}

// BuildBoss adds buyer density and coverage gaps to pro.
func BuildBoss(pro *ProMetrics, stats *Stats, buyers []geo.Point, volumes []SearchVolume, places map[string]postal.Place) *BossMetrics {
	return &BossMetrics{
		ProMetrics:   *pro,
		BuyerDensity: buyerDensity(stats, buyers),
		CoverageGaps: coverageGaps(volumes, places),
	}
}

// buyerDensity scans every buyer for every market. Buyers more than 25 miles
// north or south are skipped before the haversine call; counts are unchanged.
func buyerDensity(stats *Stats, buyers []geo.Point) []BuyerDensity {
	// One degree of latitude is at least 69 miles on a 3959-mile sphere.
	latWindow := densityFar / 69.0

	out := []BuyerDensity{}
	for _, m := range stats.Markets {
		if m.Location == nil {
			continue
		}
		d := BuyerDensity{MarketID: m.MarketID, MarketName: m.MarketName}
		for _, b := range buyers {
			if math.Abs(b.Latitude-m.Location.Latitude) > latWindow {
				continue
			}
			dist := geo.DistanceMiles(*m.Location, b)
			if dist <= densityNear {
				d.Within5Miles++
			}
			if dist <= densityMid {
				d.Within10Miles++
			}
			if dist <= densityFar {
				d.Within25Miles++
			}
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Within5Miles > out[j].Within5Miles })
	return out
}

func coverageGaps(volumes []SearchVolume, places map[string]postal.Place) []CoverageGap {
	out := make([]CoverageGap, 0, len(volumes))
	for _, v := range volumes {
		g := CoverageGap{PostalCode: v.PostalCode, Searches: v.Searches}
		if v.Searches > 0 {
			g.ZeroResultPercent = int(math.Round(float64(v.ZeroResults) / float64(v.Searches) * 100))
		}
		if p, ok := places[v.PostalCode]; ok {
			g.City, g.State = p.City, p.State
		}
		out = append(out, g)
	}
	return out
}
