// Package proximity answers "which vendors are near this point". A PostGIS radius
// query is tried first; when it fails, a bounding-box scan of the location cache
// produces the same candidates with the same distance math.
package proximity

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/vendor-geo/internal/geo"
)

// Candidate is a vendor within the search radius, before enrichment.
type Candidate struct {
	VendorID      string  `json:"vendor_id"`
	DistanceMiles float64 `json:"distance_miles"`
}

// Request describes one proximity lookup.
type Request struct {
	Origin      geo.Point
	RadiusMiles float64
	Vertical    string
}

// Query finds candidate vendors around an origin. An empty slice with a nil error
// means nothing is nearby; an error means the lookup itself failed.
type Query interface {
	Nearby(ctx context.Context, req Request) ([]Candidate, error)
}

// cachedPoint is one row of vendor_location_cache. A vendor may have many.
type cachedPoint struct {
	VendorID string
	Point    geo.Point
}

// nearest reduces cached points to one candidate per vendor at its closest point,
// dropping vendors outside the radius. Output is ordered by distance, then id.
func nearest(origin geo.Point, radiusMiles float64, points []cachedPoint) []Candidate {
	best := make(map[string]float64, len(points))
	for _, p := range points {
		d := geo.DistanceMiles(origin, p.Point)
		if cur, ok := best[p.VendorID]; !ok || d < cur {
			best[p.VendorID] = d
		}
	}

	out := make([]Candidate, 0, len(best))
	for id, d := range best {
		// A NaN radius admits nothing.
		if !(d <= radiusMiles) {
			continue
		}
		out = append(out, Candidate{VendorID: id, DistanceMiles: d})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceMiles != out[j].DistanceMiles {
			return out[i].DistanceMiles < out[j].DistanceMiles
		}
		return out[i].VendorID < out[j].VendorID
	})
	return out
}

func scanPoints(rows pgx.Rows) ([]cachedPoint, error) {
	defer rows.Close()

	var points []cachedPoint
	for rows.Next() {
		var p cachedPoint
		if err := rows.Scan(&p.VendorID, &p.Point.Latitude, &p.Point.Longitude); err != nil {
			return nil, eris.Wrap(err, "proximity: scan location row")
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "proximity: iterate location rows")
	}
	return points, nil
}
