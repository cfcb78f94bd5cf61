// Package geo provides point validation and the great-circle distance math shared by
// every proximity path in the module.
package geo

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

// SRID is the spatial reference used for all coordinates (WGS84).
const SRID = 4326

// ErrInvalidPoint is returned for non-numeric, non-finite or out-of-range coordinates.
var ErrInvalidPoint = eris.New("geo: invalid coordinates")

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate reports whether p is finite and inside [-90,90] x [-180,180].
func (p Point) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) ||
		math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) {
		return eris.Wrap(ErrInvalidPoint, "coordinates must be finite")
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return eris.Wrapf(ErrInvalidPoint, "latitude %v out of range", p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return eris.Wrapf(ErrInvalidPoint, "longitude %v out of range", p.Longitude)
	}
	return nil
}

// ParsePoint parses textual coordinates strictly. Blank or non-numeric input is
// rejected rather than coerced to zero.
func ParsePoint(lat, lng string) (Point, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Point{}, eris.Wrapf(ErrInvalidPoint, "latitude %q is not a number", lat)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return Point{}, eris.Wrapf(ErrInvalidPoint, "longitude %q is not a number", lng)
	}
	p := Point{Latitude: la, Longitude: lo}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// EWKBPoint encodes p as little-endian EWKB with SRID 4326, suitable as a bind
// parameter for ST_GeomFromEWKB.
func EWKBPoint(p Point) ([]byte, error) {
	g := geom.NewPointFlat(geom.XY, []float64{p.Longitude, p.Latitude}).SetSRID(SRID)
	data, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "geo: encode EWKB point")
	}
	return data, nil
}
