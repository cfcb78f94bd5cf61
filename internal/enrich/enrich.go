// Package enrich joins proximity candidates with their profiles, published
// listings and market associations.
package enrich

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/vendor-geo/internal/geo"
)

// ErrPartialData is returned when any enrichment fetch fails. Vendors are never
// rendered from an incomplete join.
var ErrPartialData = eris.New("enrich: partial data")

// PartialDataError carries the fetch failure behind ErrPartialData. It matches
// ErrPartialData under errors.Is and unwraps to the failed fetch's error, so
// callers can still inspect the store error with errors.As.
type PartialDataError struct {
	Fetch string
	Err   error
}

func (e *PartialDataError) Error() string {
	return "enrich: partial data: " + e.Fetch + ": " + e.Err.Error()
}

// Is reports whether target is ErrPartialData.
func (e *PartialDataError) Is(target error) bool { return target == ErrPartialData }

func (e *PartialDataError) Unwrap() error { return e.Err }

// DefaultName is used when a profile carries neither a business nor a farm name.
const DefaultName = "Vendor"

// Profile is an approved, non-deleted vendor profile.
type Profile struct {
	VendorID     string
	BusinessName string
	FarmName     string
	Description  string
	DisplayTier  string
	Rating       *float64
	RatingCount  *int
	CreatedAt    time.Time
}

// DisplayName returns the business name, then the farm name, then DefaultName.
func (p Profile) DisplayName() string {
	switch {
	case p.BusinessName != "":
		return p.BusinessName
	case p.FarmName != "":
		return p.FarmName
	default:
		return DefaultName
	}
}

// Listing is a published, non-deleted listing.
type Listing struct {
	VendorID  string
	ListingID string
	Category  string
}

// MarketLink associates a vendor with a market it attends. Location is nil when
// the market has no coordinates.
type MarketLink struct {
	VendorID string
	MarketID string
	Name     string
	Type     string
	City     string
	State    string
	Location *geo.Point
}

// Store fetches the three enrichment sources for a set of vendor ids.
type Store interface {
	VendorProfiles(ctx context.Context, ids []string) ([]Profile, error)
	PublishedListings(ctx context.Context, ids []string) ([]Listing, error)
	MarketAssociations(ctx context.Context, ids []string) ([]MarketLink, error)
}

// Market is a market a vendor attends, with its own distance from the search origin.
type Market struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	City          string  `json:"city,omitempty"`
	State         string  `json:"state,omitempty"`
	DistanceMiles float64 `json:"distance_miles"`
}

// Vendor is a fully enriched discovery result.
type Vendor struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Tier          string    `json:"tier"`
	Rating        *float64  `json:"rating"`
	RatingCount   *int      `json:"rating_count"`
	CreatedAt     time.Time `json:"created_at"`
	Categories    []string  `json:"categories"`
	ListingCount  int       `json:"listing_count"`
	Markets       []Market  `json:"markets"`
	DistanceMiles *float64  `json:"distance_miles"`
}
