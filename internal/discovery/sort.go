package discovery

import (
	"math"
	"sort"

	"github.com/sells-group/vendor-geo/internal/enrich"
	"github.com/sells-group/vendor-geo/internal/geo"
)

// TierPriority maps a display tier to its sort priority. Lower is shown first;
// unknown tiers sort after every known tier.
type TierPriority map[string]int

// DefaultTierPriority is used for verticals without their own mapping.
var DefaultTierPriority = TierPriority{"featured": 1, "premium": 2, "standard": 3}

func (p TierPriority) rank(tier string) int {
	if v, ok := p[tier]; ok {
		return v
	}
	return math.MaxInt
}

// Priorities holds a TierPriority per vertical. The "default" key applies to
// verticals without an entry.
type Priorities map[string]TierPriority

// NewPriorities converts the configured vertical -> tier -> priority mapping.
func NewPriorities(m map[string]map[string]int) Priorities {
	p := make(Priorities, len(m))
	for vertical, tiers := range m {
		p[vertical] = TierPriority(tiers)
	}
	return p
}

// For returns the mapping for vertical.
func (p Priorities) For(vertical string) TierPriority {
	if tp, ok := p[vertical]; ok {
		return tp
	}
	if tp, ok := p["default"]; ok {
		return tp
	}
	return DefaultTierPriority
}

// Sort orders vendors in place: tier priority, then distance (unknown last), then
// the mode's secondary key, then vendor id. The order is total, so sorting twice
// is a no-op.
func Sort(vendors []enrich.Vendor, mode SortMode, priority TierPriority) {
	sort.SliceStable(vendors, func(i, j int) bool {
		return less(&vendors[i], &vendors[j], mode, priority)
	})
}

func less(a, b *enrich.Vendor, mode SortMode, priority TierPriority) bool {
	if ra, rb := priority.rank(a.Tier), priority.rank(b.Tier); ra != rb {
		return ra < rb
	}
	if da, db := distance(a), distance(b); da != db {
		return da < db
	}

	switch mode {
	case SortName:
		if a.Name != b.Name {
			return a.Name < b.Name
		}
	case SortListings:
		if a.ListingCount != b.ListingCount {
			return a.ListingCount > b.ListingCount
		}
	default:
		if (a.Rating == nil) != (b.Rating == nil) {
			return a.Rating != nil
		}
		if a.Rating != nil && *a.Rating != *b.Rating {
			return *a.Rating > *b.Rating
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
	}
	return a.ID < b.ID
}

func distance(v *enrich.Vendor) float64 {
	if v.DistanceMiles == nil {
		return geo.SentinelMiles
	}
	return *v.DistanceMiles
}

// Paginate windows an already filtered and sorted slice.
func Paginate(vendors []enrich.Vendor, offset, limit int) (page []enrich.Vendor, total int, hasMore bool) {
	total = len(vendors)
	if offset >= total {
		return []enrich.Vendor{}, total, false
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return vendors[offset:end], total, end < total
}
