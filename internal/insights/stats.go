package insights

import (
	"math"
	"slices"
	"time"

	"github.com/sells-group/vendor-geo/internal/geo"
)

// Window is the lookback window [From, To) plus the equal-length window before
// it, [PriorFrom, From), used to tell repeat buyers from new ones.
type Window struct {
	PriorFrom time.Time
	From      time.Time
	To        time.Time
}

// NewWindow returns the window of the given days ending at to.
func NewWindow(to time.Time, days int) Window {
	span := time.Duration(days) * 24 * time.Hour
	return Window{PriorFrom: to.Add(-2 * span), From: to.Add(-span), To: to}
}

// MarketStats aggregates one market's order items inside the lookback window.
type MarketStats struct {
	MarketID     string
	MarketName   string
	Location     *geo.Point
	RevenueCents int64
	Orders       int
	DayCounts    [7]int
	Buyers       map[string]struct{}
	RepeatBuyers int
	NewBuyers    int
}

// AverageTicketCents is revenue per order, rounded; zero without orders.
func (m *MarketStats) AverageTicketCents() int64 {
	if m.Orders == 0 {
		return 0
	}
	return int64(math.Round(float64(m.RevenueCents) / float64(m.Orders)))
}

// RepeatRate is the share of distinct buyers that also bought here in the prior window.
func (m *MarketStats) RepeatRate() float64 {
	if len(m.Buyers) == 0 {
		return 0
	}
	return float64(m.RepeatBuyers) / float64(len(m.Buyers))
}

// Stats is the single-pass aggregate every tier builds on.
type Stats struct {
	Window Window

	// Markets sold at inside the window, in order of first sale.
	Markets []*MarketStats

	// History holds every market seen in the fetched order history, both windows.
	History []MarketRef
}

// BuildStats folds order items into per-market stats. Items before w.From only
// contribute prior buyers; excluded statuses are skipped.
func BuildStats(items []OrderItem, w Window) *Stats {
	s := &Stats{Window: w}
	byID := make(map[string]*MarketStats)
	prior := make(map[string]map[string]struct{})
	seen := make(map[string]bool)

	for _, it := range items {
		if slices.Contains(ExcludedStatuses, it.Status) || it.MarketID == "" {
			continue
		}
		if !seen[it.MarketID] {
			seen[it.MarketID] = true
			s.History = append(s.History, MarketRef{ID: it.MarketID, Name: it.MarketName, Location: it.MarketLocation})
		}

		if it.CreatedAt.Before(w.From) {
			if it.CreatedAt.Before(w.PriorFrom) || it.BuyerID == "" {
				continue
			}
			if prior[it.MarketID] == nil {
				prior[it.MarketID] = make(map[string]struct{})
			}
			prior[it.MarketID][it.BuyerID] = struct{}{}
			continue
		}
		if !it.CreatedAt.Before(w.To) {
			continue
		}

		m, ok := byID[it.MarketID]
		if !ok {
			m = &MarketStats{
				MarketID:   it.MarketID,
				MarketName: it.MarketName,
				Location:   it.MarketLocation,
				Buyers:     make(map[string]struct{}),
			}
			byID[it.MarketID] = m
			s.Markets = append(s.Markets, m)
		}
		m.RevenueCents += it.RevenueCents
		m.Orders++
		day := it.CreatedAt
		if it.PickupDate != nil {
			day = *it.PickupDate
		}
		m.DayCounts[day.Weekday()]++
		if it.BuyerID != "" {
			m.Buyers[it.BuyerID] = struct{}{}
		}
	}

	for _, m := range s.Markets {
		for b := range m.Buyers {
			if _, ok := prior[m.MarketID][b]; ok {
				m.RepeatBuyers++
			} else {
				m.NewBuyers++
			}
		}
	}
	return s
}
