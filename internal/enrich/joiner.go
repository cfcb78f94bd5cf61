package enrich

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/vendor-geo/internal/geo"
	"github.com/sells-group/vendor-geo/internal/proximity"
	"github.com/sells-group/vendor-geo/internal/resilience"
)

// Joiner merges candidates with store data.
type Joiner struct {
	store Store
	retry resilience.RetryConfig
}

// NewJoiner creates a Joiner. Each fetch is retried on transient errors per retry.
func NewJoiner(store Store, retry resilience.RetryConfig) *Joiner {
	return &Joiner{store: store, retry: retry}
}

// Enrich fetches profiles, listings and markets for the candidates concurrently
// and merges them. Candidates without an approved profile or without a published
// listing are dropped. Output follows candidate order.
func (j *Joiner) Enrich(ctx context.Context, origin geo.Point, candidates []proximity.Candidate) ([]Vendor, error) {
	if len(candidates) == 0 {
		return []Vendor{}, nil
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.VendorID
	}

	var (
		profiles []Profile
		listings []Listing
		links    []MarketLink
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = resilience.DoVal(gctx, j.retryFor("vendor_profiles"), func(ctx context.Context) ([]Profile, error) {
			return j.store.VendorProfiles(ctx, ids)
		})
		return partial("vendor_profiles", err)
	})
	g.Go(func() error {
		var err error
		listings, err = resilience.DoVal(gctx, j.retryFor("published_listings"), func(ctx context.Context) ([]Listing, error) {
			return j.store.PublishedListings(ctx, ids)
		})
		return partial("published_listings", err)
	})
	g.Go(func() error {
		var err error
		links, err = resilience.DoVal(gctx, j.retryFor("market_associations"), func(ctx context.Context) ([]MarketLink, error) {
			return j.store.MarketAssociations(ctx, ids)
		})
		return partial("market_associations", err)
	})
	if err := g.Wait(); err != nil {
		zap.L().Error("enrich: fetch failed", zap.Int("candidates", len(ids)), zap.Error(err))
		return nil, err
	}

	return merge(origin, candidates, profiles, listings, links), nil
}

func partial(fetch string, err error) error {
	if err == nil {
		return nil
	}
	return &PartialDataError{Fetch: fetch, Err: err}
}

func (j *Joiner) retryFor(fetch string) resilience.RetryConfig {
	cfg := j.retry
	cfg.OnRetry = resilience.RetryLogger(fetch)
	return cfg
}

func merge(origin geo.Point, candidates []proximity.Candidate, profiles []Profile, listings []Listing, links []MarketLink) []Vendor {
	byID := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		byID[p.VendorID] = p
	}
	listingsBy := make(map[string][]Listing)
	for _, l := range listings {
		listingsBy[l.VendorID] = append(listingsBy[l.VendorID], l)
	}
	linksBy := make(map[string][]MarketLink)
	for _, m := range links {
		linksBy[m.VendorID] = append(linksBy[m.VendorID], m)
	}

	out := make([]Vendor, 0, len(candidates))
	for _, c := range candidates {
		p, ok := byID[c.VendorID]
		if !ok {
			continue
		}
		vl := listingsBy[c.VendorID]
		if len(vl) == 0 {
			continue
		}

		dist := c.DistanceMiles
		out = append(out, Vendor{
			ID:            p.VendorID,
			Name:          p.DisplayName(),
			Description:   p.Description,
			Tier:          p.DisplayTier,
			Rating:        p.Rating,
			RatingCount:   p.RatingCount,
			CreatedAt:     p.CreatedAt,
			Categories:    categories(vl),
			ListingCount:  len(vl),
			Markets:       markets(origin, linksBy[c.VendorID]),
			DistanceMiles: &dist,
		})
	}
	return out
}

func categories(listings []Listing) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, l := range listings {
		c := strings.TrimSpace(l.Category)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// markets dedupes links by market id and measures each market from the search
// origin, not from the vendor's closest point.
func markets(origin geo.Point, links []MarketLink) []Market {
	seen := make(map[string]bool)
	out := []Market{}
	for _, l := range links {
		if seen[l.MarketID] {
			continue
		}
		seen[l.MarketID] = true

		d := geo.SentinelMiles
		if l.Location != nil {
			d = geo.DistanceMiles(origin, *l.Location)
		}
		out = append(out, Market{
			ID:            l.MarketID,
			Name:          l.Name,
			Type:          l.Type,
			City:          l.City,
			State:         l.State,
			DistanceMiles: d,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistanceMiles != out[j].DistanceMiles {
			return out[i].DistanceMiles < out[j].DistanceMiles
		}
		return out[i].ID < out[j].ID
	})
	return out
}
