// Package postal maps postal codes to city and state. The directory is backed by
// a local SQLite file or by the shared Postgres database.
package postal

import (
	"context"

	"github.com/sells-group/vendor-geo/internal/geo"
)

// Place is one postal code entry.
type Place struct {
	PostalCode string     `json:"postal_code"`
	City       string     `json:"city"`
	State      string     `json:"state"`
	Location   *geo.Point `json:"location,omitempty"`
}

// Directory resolves postal codes. Unknown codes are absent from the result.
type Directory interface {
	Lookup(ctx context.Context, codes []string) (map[string]Place, error)
}

// Loader is a Directory that can be bulk loaded.
type Loader interface {
	Directory
	Load(ctx context.Context, places []Place) (int64, error)
	Close() error
}
