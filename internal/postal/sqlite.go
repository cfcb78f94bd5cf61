package postal

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/vendor-geo/internal/geo"
)

// SQLiteDirectory is a Directory in a local SQLite file.
type SQLiteDirectory struct {
	db *sql.DB
}

// NewSQLite opens the directory at dsn and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteDirectory, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "postal: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "postal: exec %s", pragma)
		}
	}
	return &SQLiteDirectory{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS postal_codes (
	postal_code TEXT PRIMARY KEY,
	city        TEXT NOT NULL,
	state       TEXT NOT NULL,
	latitude    REAL,
	longitude   REAL
);
`

// Migrate creates the postal_codes table.
func (d *SQLiteDirectory) Migrate(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "postal: migrate sqlite")
}

// Close closes the database.
func (d *SQLiteDirectory) Close() error {
	return d.db.Close()
}

// Load upserts places in one transaction.
func (d *SQLiteDirectory) Load(ctx context.Context, places []Place) (int64, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "postal: begin load")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO postal_codes (postal_code, city, state, latitude, longitude)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(postal_code) DO UPDATE SET
			city = excluded.city,
			state = excluded.state,
			latitude = excluded.latitude,
			longitude = excluded.longitude`)
	if err != nil {
		return 0, eris.Wrap(err, "postal: prepare load")
	}
	defer stmt.Close()

	for _, p := range places {
		lat, lng := nullableCoords(p.Location)
		if _, err := stmt.ExecContext(ctx, p.PostalCode, p.City, p.State, lat, lng); err != nil {
			return 0, eris.Wrapf(err, "postal: load %s", p.PostalCode)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "postal: commit load")
	}
	return int64(len(places)), nil
}

// Lookup implements Directory.
func (d *SQLiteDirectory) Lookup(ctx context.Context, codes []string) (map[string]Place, error) {
	out := make(map[string]Place, len(codes))
	if len(codes) == 0 {
		return out, nil
	}

	args := make([]any, len(codes))
	for i, c := range codes {
		args[i] = c
	}
	query := `SELECT postal_code, city, state, latitude, longitude FROM postal_codes WHERE postal_code IN (?` +
		strings.Repeat(", ?", len(codes)-1) + `)`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postal: sqlite lookup")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p        Place
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(&p.PostalCode, &p.City, &p.State, &lat, &lng); err != nil {
			return nil, eris.Wrap(err, "postal: scan sqlite row")
		}
		if lat.Valid && lng.Valid {
			p.Location = &geo.Point{Latitude: lat.Float64, Longitude: lng.Float64}
		}
		out[p.PostalCode] = p
	}
	return out, eris.Wrap(rows.Err(), "postal: iterate sqlite rows")
}

func nullableCoords(p *geo.Point) (any, any) {
	if p == nil {
		return nil, nil
	}
	return p.Latitude, p.Longitude
}
