package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_VendorProfiles(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rating := 4.5
	count := 12
	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM vendor_profiles").
		WithArgs([]string{"v1", "v2"}).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "business_name", "farm_name", "description", "tier", "average_rating", "rating_count", "created_at",
		}).
			AddRow("v1", "Hill Country Farm", "", "Pasture eggs", "premium", &rating, &count, created).
			AddRow("v2", "", "Sunny Acres", "", "standard", (*float64)(nil), (*int)(nil), created))

	got, err := NewPostgresStore(mock).VendorProfiles(context.Background(), []string{"v1", "v2"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Hill Country Farm", got[0].DisplayName())
	require.NotNil(t, got[0].Rating)
	assert.InDelta(t, 4.5, *got[0].Rating, 0.001)
	assert.Nil(t, got[1].Rating)
	assert.Equal(t, "Sunny Acres", got[1].DisplayName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PublishedListings(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("status = 'published'").
		WithArgs([]string{"v1"}).
		WillReturnRows(pgxmock.NewRows([]string{"vendor_profile_id", "id", "category"}).
			AddRow("v1", "l1", "eggs").
			AddRow("v1", "l2", ""))

	got, err := NewPostgresStore(mock).PublishedListings(context.Background(), []string{"v1"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "eggs", got[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MarketAssociations(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	lat, lng := 30.30, -97.75
	mock.ExpectQuery("UNION").
		WithArgs([]string{"v1"}).
		WillReturnRows(pgxmock.NewRows([]string{
			"vendor_id", "id", "name", "market_type", "city", "state", "latitude", "longitude",
		}).
			AddRow("v1", "m1", "Mueller", "traditional", "Austin", "TX", &lat, &lng).
			AddRow("v1", "m2", "Driveway pickup", "private_pickup", "", "", (*float64)(nil), (*float64)(nil)))

	got, err := NewPostgresStore(mock).MarketAssociations(context.Background(), []string{"v1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Location)
	assert.InDelta(t, 30.30, got[0].Location.Latitude, 0.0001)
	assert.Nil(t, got[1].Location)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_QueryErrors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("boom")
	mock.ExpectQuery("FROM vendor_profiles").WillReturnError(boom)
	mock.ExpectQuery("FROM listings").WillReturnError(boom)
	mock.ExpectQuery("UNION").WillReturnError(boom)

	s := NewPostgresStore(mock)
	_, err = s.VendorProfiles(context.Background(), []string{"v1"})
	assert.Error(t, err)
	_, err = s.PublishedListings(context.Background(), []string{"v1"})
	assert.Error(t, err)
	_, err = s.MarketAssociations(context.Background(), []string{"v1"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
