package insights

import (
	"context"
	"time"

	"github.com/sells-group/vendor-geo/internal/geo"
	"github.com/sells-group/vendor-geo/internal/postal"
)

type mockStore struct {
	subscription string
	subErr       error
	items        []OrderItem
	itemsErr     error
	schedule     []MarketRef
	history      []MarketRef
	candidates   []CandidateMarket
	buyers       []geo.Point
	volumes      []SearchVolume
	volumesErr   error

	itemsFrom, itemsTo time.Time
	excluded           []string
	volumesSince       time.Time
	volumesLimit       int
	calls              map[string]int
}

func (m *mockStore) hit(name string) {
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

func (m *mockStore) VendorSubscription(_ context.Context, _ string) (string, error) {
	m.hit("subscription")
	return m.subscription, m.subErr
}

func (m *mockStore) OrderItems(_ context.Context, _ string, from, to time.Time, exclude []string) ([]OrderItem, error) {
	m.hit("items")
	m.itemsFrom, m.itemsTo, m.excluded = from, to, exclude
	if m.itemsErr != nil {
		return nil, m.itemsErr
	}
	var out []OrderItem
	for _, it := range m.items {
		if !it.CreatedAt.Before(from) && it.CreatedAt.Before(to) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *mockStore) VendorHistoryMarkets(_ context.Context, _ string, _ []string) ([]MarketRef, error) {
	m.hit("history")
	return m.history, nil
}

func (m *mockStore) VendorScheduleMarkets(_ context.Context, _ string) ([]MarketRef, error) {
	m.hit("schedule")
	return m.schedule, nil
}

func (m *mockStore) CandidateMarkets(_ context.Context, _ string) ([]CandidateMarket, error) {
	m.hit("candidates")
	return m.candidates, nil
}

func (m *mockStore) BuyerLocations(_ context.Context, _ string) ([]geo.Point, error) {
	m.hit("buyers")
	return m.buyers, nil
}

func (m *mockStore) SearchVolumeByPostalCode(_ context.Context, _ string, since time.Time, limit int) ([]SearchVolume, error) {
	m.hit("volumes")
	m.volumesSince, m.volumesLimit = since, limit
	return m.volumes, m.volumesErr
}

type mockDirectory struct {
	places map[string]postal.Place
	codes  []string
}

func (d *mockDirectory) Lookup(_ context.Context, codes []string) (map[string]postal.Place, error) {
	d.codes = codes
	return d.places, nil
}
