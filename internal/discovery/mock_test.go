package discovery

import (
	"context"

	"github.com/sells-group/vendor-geo/internal/enrich"
	"github.com/sells-group/vendor-geo/internal/geo"
	"github.com/sells-group/vendor-geo/internal/proximity"
)

type mockNearby struct {
	candidates []proximity.Candidate
	err        error
	calls      int
	last       proximity.Request
}

func (m *mockNearby) Nearby(_ context.Context, req proximity.Request) ([]proximity.Candidate, error) {
	m.calls++
	m.last = req
	return m.candidates, m.err
}

type mockEnricher struct {
	vendors []enrich.Vendor
	err     error
	calls   int
}

func (m *mockEnricher) Enrich(_ context.Context, _ geo.Point, _ []proximity.Candidate) ([]enrich.Vendor, error) {
	m.calls++
	out := make([]enrich.Vendor, len(m.vendors))
	copy(out, m.vendors)
	return out, m.err
}

// fakeEnrichStore backs a real enrich.Joiner in end-to-end tests.
type fakeEnrichStore struct {
	profiles []enrich.Profile
	listings []enrich.Listing
	links    []enrich.MarketLink
}

func (f *fakeEnrichStore) VendorProfiles(_ context.Context, _ []string) ([]enrich.Profile, error) {
	return f.profiles, nil
}

func (f *fakeEnrichStore) PublishedListings(_ context.Context, _ []string) ([]enrich.Listing, error) {
	return f.listings, nil
}

func (f *fakeEnrichStore) MarketAssociations(_ context.Context, _ []string) ([]enrich.MarketLink, error) {
	return f.links, nil
}
