// Package scorer ranks a vendor's own markets against each other with a 1-5
// composite location score.
package scorer

import (
	"math"
	"sort"
)

// Component weights for the composite score.
const (
	WeightVolume = 0.30
	WeightBuyers = 0.25
	WeightTicket = 0.25
	WeightRepeat = 0.20
)

const (
	maxScore = 5.0
	minScore = 1.0
)

// MarketFactors are the raw per-market inputs for one vendor.
type MarketFactors struct {
	MarketID           string
	MarketName         string
	RevenueCents       int64
	Buyers             int
	AverageTicketCents int64
	// RepeatRate is the share of buyers that are repeat buyers, 0 to 1.
	RepeatRate float64
}

// LocationScore is the composite score for one market plus its components, each
// on a 0-5 scale.
type LocationScore struct {
	MarketID    string  `json:"market_id"`
	MarketName  string  `json:"market_name"`
	Score       float64 `json:"score"`
	VolumeScore float64 `json:"volume_score"`
	BuyerScore  float64 `json:"buyer_score"`
	TicketScore float64 `json:"ticket_score"`
	RepeatScore float64 `json:"repeat_score"`
}

// maxima holds the per-factor maximum across a vendor's markets, floored at 1.
type maxima struct {
	revenue float64
	buyers  float64
	ticket  float64
}

func foldMaxima(markets []MarketFactors) maxima {
	m := maxima{revenue: 1, buyers: 1, ticket: 1}
	for _, f := range markets {
		m.revenue = math.Max(m.revenue, float64(f.RevenueCents))
		m.buyers = math.Max(m.buyers, float64(f.Buyers))
		m.ticket = math.Max(m.ticket, float64(f.AverageTicketCents))
	}
	return m
}

// LocationScores scores each market relative to the best of the vendor's own
// markets, never against other vendors. Results are sorted by score descending,
// then market name.
func LocationScores(markets []MarketFactors) []LocationScore {
	m := foldMaxima(markets)

	out := make([]LocationScore, 0, len(markets))
	for _, f := range markets {
		components := map[string]float64{
			"volume": float64(f.RevenueCents) / m.revenue * maxScore,
			"buyers": float64(f.Buyers) / m.buyers * maxScore,
			"ticket": float64(f.AverageTicketCents) / m.ticket * maxScore,
			"repeat": clamp(f.RepeatRate, 0, 1) * maxScore,
		}

		composite := components["volume"]*WeightVolume +
			components["buyers"]*WeightBuyers +
			components["ticket"]*WeightTicket +
			components["repeat"]*WeightRepeat

		out = append(out, LocationScore{
			MarketID:    f.MarketID,
			MarketName:  f.MarketName,
			Score:       round1(clamp(composite, minScore, maxScore)),
			VolumeScore: round1(components["volume"]),
			BuyerScore:  round1(components["buyers"]),
			TicketScore: round1(components["ticket"]),
			RepeatScore: round1(components["repeat"]),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].MarketName < out[j].MarketName
	})
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
