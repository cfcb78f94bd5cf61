// Package discovery implements vendor search: proximity candidates are enriched,
// filtered, ordered by tier priority and distance, then paginated.
package discovery

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/vendor-geo/internal/enrich"
	"github.com/sells-group/vendor-geo/internal/geo"
)

// ErrInvalidInput is returned for bad coordinates or search parameters. It is
// raised before any query runs.
var ErrInvalidInput = eris.New("discovery: invalid input")

// SortMode selects the secondary ordering key.
type SortMode string

// Supported sort modes.
const (
	SortRating   SortMode = "rating"
	SortName     SortMode = "name"
	SortListings SortMode = "listings"
)

// Valid reports whether m is a known sort mode.
func (m SortMode) Valid() bool {
	switch m {
	case SortRating, SortName, SortListings:
		return true
	}
	return false
}

// Filters narrow the enriched result set. Empty fields are ignored.
type Filters struct {
	MarketID string
	Category string
	Text     string
}

// Query is one discovery search.
type Query struct {
	Origin      geo.Point
	RadiusMiles float64
	Vertical    string
	Filters     Filters
	Sort        SortMode
	Limit       int
	Offset      int
}

// Result is one page of vendors plus the size of the full result set.
type Result struct {
	Vendors []enrich.Vendor `json:"vendors"`
	Total   int             `json:"total"`
	HasMore bool            `json:"has_more"`
}
