package insights

import (
	"time"

	"github.com/sells-group/vendor-geo/internal/geo"
	"github.com/sells-group/vendor-geo/internal/postal"
)

var (
	// Tuesday.
	now = time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)

	mueller = &geo.Point{Latitude: 30.30, Longitude: -97.75}
	barton  = &geo.Point{Latitude: 30.26, Longitude: -97.77}
)

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 10, 0, 0, 0, time.UTC)
}

func sale(market, buyer string, cents int64, created time.Time) OrderItem {
	it := OrderItem{BuyerID: buyer, RevenueCents: cents, Status: "fulfilled", CreatedAt: created}
	switch market {
	case "A":
		it.MarketID, it.MarketName, it.MarketLocation = "A", "Mueller", mueller
	case "B":
		it.MarketID, it.MarketName, it.MarketLocation = "B", "Barton", barton
	}
	return it
}

// fixtureItems: market A has 10 orders, 10000 cents, 5 buyers of which b1 and
// b2 bought there in the prior window. Market B has 4 orders, 2000 cents and 3
// buyers, none repeat.
func fixtureItems() []OrderItem {
	pickup := day(time.June, 6)
	wedWithSatPickup := sale("A", "b5", 1000, day(time.June, 3))
	wedWithSatPickup.PickupDate = &pickup

	cancelled := sale("A", "b9", 99999, day(time.June, 6))
	cancelled.Status = "cancelled"

	return []OrderItem{
		// Too old: before the prior window.
		sale("B", "b7", 700, day(time.April, 1)),
		// Prior window.
		sale("A", "b1", 800, day(time.May, 15)),
		sale("A", "b2", 800, day(time.May, 20)),
		sale("A", "b6", 800, day(time.May, 20)),
		// Current window.
		sale("A", "b1", 1000, day(time.June, 2)),
		sale("A", "b2", 1000, day(time.June, 2)),
		sale("A", "b3", 1000, day(time.June, 2)),
		sale("A", "b4", 1000, day(time.June, 2)),
		sale("A", "b1", 1000, day(time.June, 6)),
		sale("A", "b2", 1000, day(time.June, 6)),
		sale("A", "b3", 1000, day(time.June, 6)),
		sale("A", "b4", 1000, day(time.June, 6)),
		sale("A", "b5", 1000, day(time.June, 6)),
		wedWithSatPickup,
		cancelled,
		sale("B", "b6", 500, day(time.June, 10)),
		sale("B", "b7", 500, day(time.June, 10)),
		sale("B", "b8", 500, day(time.June, 10)),
		sale("B", "b8", 500, day(time.June, 10)),
	}
}

func fixtureSchedule() []MarketRef {
	return []MarketRef{{ID: "C", Name: "Zilker", Location: &geo.Point{Latitude: 30.267, Longitude: -97.773}}}
}

func fixtureCandidates() []CandidateMarket {
	return []CandidateMarket{
		{ID: "A", Name: "Mueller", Location: *mueller, VendorCount: 40},
		{ID: "E", Name: "Round Rock", Location: geo.Point{Latitude: 30.51, Longitude: -97.68}, VendorCount: 8},
		{ID: "D", Name: "Pflugerville", Location: geo.Point{Latitude: 30.44, Longitude: -97.62}, VendorCount: 12},
		{ID: "F", Name: "San Antonio", Location: geo.Point{Latitude: 29.42, Longitude: -98.49}, VendorCount: 30},
	}
}

func fixtureBuyers() []geo.Point {
	return []geo.Point{
		{Latitude: 30.30, Longitude: -97.75},
		{Latitude: 30.30, Longitude: -97.75},
		{Latitude: 30.35, Longitude: -97.75},
		{Latitude: 29.42, Longitude: -98.49},
	}
}

func fixtureVolumes() []SearchVolume {
	return []SearchVolume{
		{PostalCode: "78701", Searches: 40, ZeroResults: 10},
		{PostalCode: "78702", Searches: 20},
	}
}

func fixturePlaces() map[string]postal.Place {
	return map[string]postal.Place{"78701": {PostalCode: "78701", City: "Austin", State: "TX"}}
}

func pointAt(lat, lng float64) geo.Point {
	return geo.Point{Latitude: lat, Longitude: lng}
}
