package postal

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/vendor-geo/internal/db"
	"github.com/sells-group/vendor-geo/internal/geo"
)

var postalUpsert = db.UpsertSpec{
	Table:   pgx.Identifier{"geo", "postal_codes"},
	Columns: []string{"postal_code", "city", "state", "latitude", "longitude"},
	Keys:    []string{"postal_code"},
}

// PostgresDirectory is a Directory in the geo.postal_codes table.
type PostgresDirectory struct {
	pool db.Pool
}

// NewPostgres creates a PostgresDirectory.
func NewPostgres(pool db.Pool) *PostgresDirectory {
	return &PostgresDirectory{pool: pool}
}

// Load bulk upserts places.
func (d *PostgresDirectory) Load(ctx context.Context, places []Place) (int64, error) {
	rows := make([][]any, len(places))
	for i, p := range places {
		lat, lng := nullableCoords(p.Location)
		rows[i] = []any{p.PostalCode, p.City, p.State, lat, lng}
	}
	n, err := db.Upsert(ctx, d.pool, postalUpsert, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postal: postgres load")
	}
	return n, nil
}

// Close is a no-op; the pool is owned by the caller.
func (d *PostgresDirectory) Close() error { return nil }

// Lookup implements Directory.
func (d *PostgresDirectory) Lookup(ctx context.Context, codes []string) (map[string]Place, error) {
	out := make(map[string]Place, len(codes))
	if len(codes) == 0 {
		return out, nil
	}

	rows, err := d.pool.Query(ctx,
		`SELECT postal_code, city, state, latitude, longitude
		FROM geo.postal_codes
		WHERE postal_code = ANY($1)`, codes)
	if err != nil {
		return nil, eris.Wrap(err, "postal: postgres lookup")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p        Place
			lat, lng *float64
		)
		if err := rows.Scan(&p.PostalCode, &p.City, &p.State, &lat, &lng); err != nil {
			return nil, eris.Wrap(err, "postal: scan postgres row")
		}
		if lat != nil && lng != nil {
			p.Location = &geo.Point{Latitude: *lat, Longitude: *lng}
		}
		out[p.PostalCode] = p
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postal: iterate postgres rows")
	}
	return out, nil
}
