// Package insights computes tier-gated location analytics for a vendor. Each tier
// is built from the previous tier's result, so higher tiers only add metrics.
package insights

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/vendor-geo/internal/geo"
)

// ErrVendorNotFound is returned when the vendor has no profile.
var ErrVendorNotFound = eris.New("insights: vendor not found")

// ExcludedStatuses are order item statuses that never count toward metrics.
var ExcludedStatuses = []string{"cancelled", "refunded"}

// Request is one insights request. Ownership of VendorID is checked by the caller.
type Request struct {
	VendorID     string
	Vertical     string
	LookbackDays int
}

// Report is the insights response. Metrics is nil when Blocked.
type Report struct {
	VendorID     string `json:"vendor_id"`
	Tier         Tier   `json:"tier"`
	Blocked      bool   `json:"blocked"`
	LookbackDays int    `json:"lookback_days,omitempty"`
	Metrics      any    `json:"metrics,omitempty"`
}

// OrderItem is one historical sale.
type OrderItem struct {
	MarketID       string
	MarketName     string
	MarketLocation *geo.Point
	BuyerID        string
	RevenueCents   int64
	Status         string
	CreatedAt      time.Time
	PickupDate     *time.Time
}

// MarketRef is a market the vendor is scheduled at or has sold at.
type MarketRef struct {
	ID       string
	Name     string
	Location *geo.Point
}

// CandidateMarket is an active, approved market in the vertical.
type CandidateMarket struct {
	ID          string
	Name        string
	City        string
	State       string
	Location    geo.Point
	VendorCount int
}

// SearchVolume aggregates buyer searches for one postal code.
type SearchVolume struct {
	PostalCode  string
	Searches    int
	ZeroResults int
}

// Store reads the data the insights pipeline needs.
type Store interface {
	VendorSubscription(ctx context.Context, vendorID string) (string, error)
	OrderItems(ctx context.Context, vendorID string, from, to time.Time, excludeStatuses []string) ([]OrderItem, error)
	VendorScheduleMarkets(ctx context.Context, vendorID string) ([]MarketRef, error)
	VendorHistoryMarkets(ctx context.Context, vendorID string, excludeStatuses []string) ([]MarketRef, error)
	CandidateMarkets(ctx context.Context, vertical string) ([]CandidateMarket, error)
	BuyerLocations(ctx context.Context, vertical string) ([]geo.Point, error)
	SearchVolumeByPostalCode(ctx context.Context, vertical string, since time.Time, limit int) ([]SearchVolume, error)
}
