package enrich

import (
	"context"
	"sync/atomic"
)

type mockStore struct {
	profiles    []Profile
	listings    []Listing
	links       []MarketLink
	profilesErr error
	listingsErr error
	linksErr    error

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	gate        chan struct{}
}

func (m *mockStore) enter() func() {
	n := m.inFlight.Add(1)
	for {
		cur := m.maxInFlight.Load()
		if n <= cur || m.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	if m.gate != nil {
		<-m.gate
	}
	return func() { m.inFlight.Add(-1) }
}

func (m *mockStore) VendorProfiles(_ context.Context, _ []string) ([]Profile, error) {
	defer m.enter()()
	return m.profiles, m.profilesErr
}

func (m *mockStore) PublishedListings(_ context.Context, _ []string) ([]Listing, error) {
	defer m.enter()()
	return m.listings, m.listingsErr
}

func (m *mockStore) MarketAssociations(_ context.Context, _ []string) ([]MarketLink, error) {
	defer m.enter()()
	return m.links, m.linksErr
}
