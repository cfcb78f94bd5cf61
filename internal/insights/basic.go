package insights

import (
	"math"
	"sort"
	"time"
)

// LocationRevenue is revenue and order count at one market.
type LocationRevenue struct {
	MarketID     string `json:"market_id"`
	MarketName   string `json:"market_name"`
	RevenueCents int64  `json:"revenue_cents"`
	Orders       int    `json:"orders"`
}

// DayCount is the number of orders on one weekday.
type DayCount struct {
	Day    string `json:"day"`
	Orders int    `json:"orders"`
}

// LocationPeakDays is the weekday histogram for one market, busiest first.
type LocationPeakDays struct {
	MarketID   string     `json:"market_id"`
	MarketName string     `json:"market_name"`
	TopDay     string     `json:"top_day"`
	Days       []DayCount `json:"days"`
}

// LocationAverageOrder is the rounded average order value at one market.
type LocationAverageOrder struct {
	MarketID          string `json:"market_id"`
	MarketName        string `json:"market_name"`
	AverageOrderCents int64  `json:"average_order_cents"`
}

// LocationLoyalty splits a market's distinct buyers into repeat and new.
type LocationLoyalty struct {
	MarketID        string `json:"market_id"`
	MarketName      string `json:"market_name"`
	TotalCustomers  int    `json:"total_customers"`
	RepeatCustomers int    `json:"repeat_customers"`
	NewCustomers    int    `json:"new_customers"`
	RepeatPercent   int    `json:"repeat_percent"`
}

// BasicMetrics are the metrics of the basic tier.
type BasicMetrics struct {
	RevenueByLocation      []LocationRevenue      `json:"revenue_by_location"`
	PeakDaysByLocation     []LocationPeakDays     `json:"peak_days_by_location"`
	AverageOrderByLocation []LocationAverageOrder `json:"average_order_by_location"`
	CustomerLoyalty        []LocationLoyalty      `json:"customer_loyalty"`
}

// BuildBasic derives the basic metrics from stats.
func BuildBasic(stats *Stats) *BasicMetrics {
	b := &BasicMetrics{
		RevenueByLocation:      []LocationRevenue{},
		PeakDaysByLocation:     []LocationPeakDays{},
		AverageOrderByLocation: []LocationAverageOrder{},
		CustomerLoyalty:        []LocationLoyalty{},
	}

	for _, m := range stats.Markets {
		b.RevenueByLocation = append(b.RevenueByLocation, LocationRevenue{
			MarketID:     m.MarketID,
			MarketName:   m.MarketName,
			RevenueCents: m.RevenueCents,
			Orders:       m.Orders,
		})

		days := peakDays(m.DayCounts)
		pd := LocationPeakDays{MarketID: m.MarketID, MarketName: m.MarketName, Days: days}
		if len(days) > 0 {
			pd.TopDay = days[0].Day
		}
		b.PeakDaysByLocation = append(b.PeakDaysByLocation, pd)

		b.AverageOrderByLocation = append(b.AverageOrderByLocation, LocationAverageOrder{
			MarketID:          m.MarketID,
			MarketName:        m.MarketName,
			AverageOrderCents: m.AverageTicketCents(),
		})

		total := len(m.Buyers)
		loyalty := LocationLoyalty{
			MarketID:        m.MarketID,
			MarketName:      m.MarketName,
			TotalCustomers:  total,
			RepeatCustomers: m.RepeatBuyers,
			NewCustomers:    m.NewBuyers,
		}
		if total > 0 {
			loyalty.RepeatPercent = int(math.Round(float64(m.RepeatBuyers) / float64(total) * 100))
		}
		b.CustomerLoyalty = append(b.CustomerLoyalty, loyalty)
	}

	sort.SliceStable(b.RevenueByLocation, func(i, j int) bool {
		return b.RevenueByLocation[i].RevenueCents > b.RevenueByLocation[j].RevenueCents
	})
	sort.SliceStable(b.AverageOrderByLocation, func(i, j int) bool {
		return b.AverageOrderByLocation[i].AverageOrderCents > b.AverageOrderByLocation[j].AverageOrderCents
	})
	sort.SliceStable(b.CustomerLoyalty, func(i, j int) bool {
		return b.CustomerLoyalty[i].TotalCustomers > b.CustomerLoyalty[j].TotalCustomers
	})
	return b
}

// peakDays returns the non-empty weekdays, busiest first, Sunday first on ties.
func peakDays(counts [7]int) []DayCount {
	days := make([]DayCount, 0, 7)
	for d, n := range counts {
		if n > 0 {
			days = append(days, DayCount{Day: time.Weekday(d).String(), Orders: n})
		}
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Orders > days[j].Orders })
	return days
}
