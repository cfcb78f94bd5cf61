package insights

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/vendor-geo/internal/db"
	"github.com/sells-group/vendor-geo/internal/geo"
)

// PostgresStore implements Store using pgx.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgresStore creates a PostgresStore.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// VendorSubscription returns the vendor's subscription tier, or ErrVendorNotFound.
func (s *PostgresStore) VendorSubscription(ctx context.Context, vendorID string) (string, error) {
	var tier string
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(subscription_tier, 'free') FROM vendor_profiles WHERE id = $1 AND deleted_at IS NULL`,
		vendorID,
	).Scan(&tier)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", eris.Wrapf(ErrVendorNotFound, "vendor %s", vendorID)
	}
	if err != nil {
		return "", eris.Wrapf(err, "insights: vendor subscription %s", vendorID)
	}
	return tier, nil
}

// OrderItems returns the vendor's order items created in [from, to), oldest first.
func (s *PostgresStore) OrderItems(ctx context.Context, vendorID string, from, to time.Time, excludeStatuses []string) ([]OrderItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT oi.market_id, COALESCE(m.name, ''), m.latitude, m.longitude,
		       COALESCE(o.buyer_user_id::text, ''), oi.subtotal_cents, oi.status,
		       oi.created_at, oi.pickup_date
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		LEFT JOIN markets m ON m.id = oi.market_id
		WHERE oi.vendor_profile_id = $1
		  AND oi.created_at >= $2
		  AND oi.created_at < $3
		  AND oi.status <> ALL($4)
		  AND oi.market_id IS NOT NULL
		ORDER BY oi.created_at, oi.id`,
		vendorID, from, to, excludeStatuses,
	)
	if err != nil {
		return nil, eris.Wrap(err, "insights: query order items")
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var (
			it       OrderItem
			lat, lng *float64
		)
		if err := rows.Scan(&it.MarketID, &it.MarketName, &lat, &lng, &it.BuyerID,
			&it.RevenueCents, &it.Status, &it.CreatedAt, &it.PickupDate); err != nil {
			return nil, eris.Wrap(err, "insights: scan order item")
		}
		it.MarketLocation = point(lat, lng)
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "insights: iterate order items")
	}
	return out, nil
}

// VendorScheduleMarkets returns markets on the vendor's active schedules.
func (s *PostgresStore) VendorScheduleMarkets(ctx context.Context, vendorID string) ([]MarketRef, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT m.id, m.name, m.latitude, m.longitude
		FROM vendor_market_schedules vms
		JOIN markets m ON m.id = vms.market_id
		WHERE vms.vendor_profile_id = $1
		  AND vms.is_active`,
		vendorID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "insights: query schedule markets")
	}
	return scanMarketRefs(rows, "schedule")
}

// VendorHistoryMarkets returns every market referenced by the vendor's order
// items over all time, skipping the given statuses.
func (s *PostgresStore) VendorHistoryMarkets(ctx context.Context, vendorID string, excludeStatuses []string) ([]MarketRef, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT m.id, m.name, m.latitude, m.longitude
		FROM order_items oi
		JOIN markets m ON m.id = oi.market_id
		WHERE oi.vendor_profile_id = $1
		  AND oi.status <> ALL($2)`,
		vendorID, excludeStatuses,
	)
	if err != nil {
		return nil, eris.Wrap(err, "insights: query history markets")
	}
	return scanMarketRefs(rows, "history")
}

func scanMarketRefs(rows pgx.Rows, kind string) ([]MarketRef, error) {
	defer rows.Close()

	var out []MarketRef
	for rows.Next() {
		var (
			m        MarketRef
			lat, lng *float64
		)
		if err := rows.Scan(&m.ID, &m.Name, &lat, &lng); err != nil {
			return nil, eris.Wrapf(err, "insights: scan %s market", kind)
		}
		m.Location = point(lat, lng)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "insights: iterate %s markets", kind)
	}
	return out, nil
}

// CandidateMarkets returns active, approved markets in the vertical that have
// coordinates, with how many vendors are scheduled at each.
func (s *PostgresStore) CandidateMarkets(ctx context.Context, vertical string) ([]CandidateMarket, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.id, m.name, COALESCE(m.city, ''), COALESCE(m.state, ''),
		       m.latitude, m.longitude,
		       (SELECT count(DISTINCT vms.vendor_profile_id)
		        FROM vendor_market_schedules vms
		        WHERE vms.market_id = m.id AND vms.is_active) AS vendor_count
		FROM markets m
		WHERE m.vertical_id = $1
		  AND m.active
		  AND m.status = 'approved'
		  AND m.latitude IS NOT NULL
		  AND m.longitude IS NOT NULL`,
		vertical,
	)
	if err != nil {
		return nil, eris.Wrap(err, "insights: query candidate markets")
	}
	defer rows.Close()

	var out []CandidateMarket
	for rows.Next() {
		var c CandidateMarket
		if err := rows.Scan(&c.ID, &c.Name, &c.City, &c.State,
			&c.Location.Latitude, &c.Location.Longitude, &c.VendorCount); err != nil {
			return nil, eris.Wrap(err, "insights: scan candidate market")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "insights: iterate candidate markets")
	}
	return out, nil
}

// BuyerLocations returns every buyer profile location in the vertical.
func (s *PostgresStore) BuyerLocations(ctx context.Context, vertical string) ([]geo.Point, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT latitude, longitude
		FROM buyer_profiles
		WHERE vertical_id = $1
		  AND latitude IS NOT NULL
		  AND longitude IS NOT NULL`,
		vertical,
	)
	if err != nil {
		return nil, eris.Wrap(err, "insights: query buyer locations")
	}
	defer rows.Close()

	var out []geo.Point
	for rows.Next() {
		var p geo.Point
		if err := rows.Scan(&p.Latitude, &p.Longitude); err != nil {
			return nil, eris.Wrap(err, "insights: scan buyer location")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "insights: iterate buyer locations")
	}
	return out, nil
}

// SearchVolumeByPostalCode returns the busiest postal codes in the buyer search
// log since the given time.
func (s *PostgresStore) SearchVolumeByPostalCode(ctx context.Context, vertical string, since time.Time, limit int) ([]SearchVolume, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT postal_code,
		       count(*) AS searches,
		       count(*) FILTER (WHERE result_count = 0) AS zero_results
		FROM buyer_search_log
		WHERE vertical_id = $1
		  AND created_at >= $2
		  AND postal_code IS NOT NULL
		GROUP BY postal_code
		ORDER BY searches DESC, postal_code
		LIMIT $3`,
		vertical, since, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "insights: query search volume")
	}
	defer rows.Close()

	var out []SearchVolume
	for rows.Next() {
		var v SearchVolume
		if err := rows.Scan(&v.PostalCode, &v.Searches, &v.ZeroResults); err != nil {
			return nil, eris.Wrap(err, "insights: scan search volume")
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "insights: iterate search volume")
	}
	return out, nil
}

func point(lat, lng *float64) *geo.Point {
	if lat == nil || lng == nil {
		return nil
	}
	return &geo.Point{Latitude: *lat, Longitude: *lng}
}
