package enrich

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/vendor-geo/internal/db"
	"github.com/sells-group/vendor-geo/internal/geo"
)

// PostgresStore reads enrichment data from the marketplace database.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgresStore creates a PostgresStore.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const profilesSQL = `
	SELECT id,
	       COALESCE(profile_data->>'business_name', ''),
	       COALESCE(profile_data->>'farm_name', ''),
	       COALESCE(description, ''),
	       COALESCE(tier, 'standard'),
	       average_rating,
	       rating_count,
	       created_at
	FROM vendor_profiles
	WHERE id = ANY($1)
	  AND status = 'approved'
	  AND deleted_at IS NULL`

// VendorProfiles implements Store.
func (s *PostgresStore) VendorProfiles(ctx context.Context, ids []string) ([]Profile, error) {
	rows, err := s.pool.Query(ctx, profilesSQL, ids)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: query vendor profiles")
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.VendorID, &p.BusinessName, &p.FarmName, &p.Description,
			&p.DisplayTier, &p.Rating, &p.RatingCount, &p.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "enrich: scan vendor profile")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "enrich: iterate vendor profiles")
	}
	return out, nil
}

const listingsSQL = `
	SELECT vendor_profile_id, id, COALESCE(category, '')
	FROM listings
	WHERE vendor_profile_id = ANY($1)
	  AND status = 'published'
	  AND deleted_at IS NULL`

// PublishedListings implements Store.
func (s *PostgresStore) PublishedListings(ctx context.Context, ids []string) ([]Listing, error) {
	rows, err := s.pool.Query(ctx, listingsSQL, ids)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: query published listings")
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		var l Listing
		if err := rows.Scan(&l.VendorID, &l.ListingID, &l.Category); err != nil {
			return nil, eris.Wrap(err, "enrich: scan listing")
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "enrich: iterate listings")
	}
	return out, nil
}

// Scheduled markets come from published listings; historical ones from order items.
const associationsSQL = `
	SELECT a.vendor_id, m.id, m.name, m.market_type,
	       COALESCE(m.city, ''), COALESCE(m.state, ''),
	       m.latitude, m.longitude
	FROM (
		SELECT l.vendor_profile_id AS vendor_id, lm.market_id
		FROM listing_markets lm
		JOIN listings l ON l.id = lm.listing_id
		WHERE l.vendor_profile_id = ANY($1)
		  AND l.status = 'published'
		  AND l.deleted_at IS NULL
		UNION
		SELECT oi.vendor_profile_id, oi.market_id
		FROM order_items oi
		WHERE oi.vendor_profile_id = ANY($1)
		  AND oi.market_id IS NOT NULL
	) a
	JOIN markets m ON m.id = a.market_id`

// MarketAssociations implements Store.
func (s *PostgresStore) MarketAssociations(ctx context.Context, ids []string) ([]MarketLink, error) {
	rows, err := s.pool.Query(ctx, associationsSQL, ids)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: query market associations")
	}
	defer rows.Close()

	var out []MarketLink
	for rows.Next() {
		var (
			m        MarketLink
			lat, lng *float64
		)
		if err := rows.Scan(&m.VendorID, &m.MarketID, &m.Name, &m.Type, &m.City, &m.State, &lat, &lng); err != nil {
			return nil, eris.Wrap(err, "enrich: scan market association")
		}
		if lat != nil && lng != nil {
			m.Location = &geo.Point{Latitude: *lat, Longitude: *lng}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "enrich: iterate market associations")
	}
	return out, nil
}
