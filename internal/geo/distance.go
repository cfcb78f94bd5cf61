package geo

import (
	"math"

	"github.com/twpayne/go-geom"
)

const (
	// EarthRadiusMiles is the mean Earth radius used by the haversine formula.
	EarthRadiusMiles = 3959.0

	// MetersPerMile converts radius miles to the meters PostGIS geography expects.
	MetersPerMile = 1609.344

	// SentinelMiles is the distance assigned to places without coordinates so they
	// sort after every real distance.
	SentinelMiles = 999.0

	// milesPerDegreeLat is the approximate length of one degree of latitude.
	milesPerDegreeLat = 69.0

	// bboxBuffer pads the bounding box so it is a safe superset of the radius circle.
	bboxBuffer = 1.2

	// minCosLat keeps the longitude delta finite at the poles.
	minCosLat = 1e-6
)

// DistanceMiles returns the haversine great-circle distance between a and b in miles.
func DistanceMiles(a, b Point) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLng := toRadians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	if h > 1 {
		h = 1
	}
	return 2 * EarthRadiusMiles * math.Asin(math.Sqrt(h))
}

// MilesToMeters converts miles to meters.
func MilesToMeters(miles float64) float64 {
	return miles * MetersPerMile
}

// PaddedBounds returns a lng/lat box around origin that contains every point within
// radiusMiles, padded by 20%. It is a coarse pre-filter; callers must re-check
// distances with DistanceMiles.
func PaddedBounds(origin Point, radiusMiles float64) *geom.Bounds {
	latDelta := radiusMiles * bboxBuffer / milesPerDegreeLat

	cosLat := math.Cos(toRadians(origin.Latitude))
	if cosLat < minCosLat {
		cosLat = minCosLat
	}
	lngDelta := radiusMiles * bboxBuffer / (milesPerDegreeLat * cosLat)

	return geom.NewBounds(geom.XY).Set(
		origin.Longitude-lngDelta, origin.Latitude-latDelta,
		origin.Longitude+lngDelta, origin.Latitude+latDelta,
	)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
