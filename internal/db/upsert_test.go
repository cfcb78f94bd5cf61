package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var places = UpsertSpec{
	Table:   pgx.Identifier{"geo", "postal_codes"},
	Columns: []string{"postal_code", "city", "state"},
	Keys:    []string{"postal_code"},
}

func TestUpsert_NoRows(t *testing.T) {
	n, err := Upsert(context.Background(), nil, places, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestUpsertSpec_Validate(t *testing.T) {
	tests := []struct {
		name string
		spec UpsertSpec
		want string
	}{
		{"no table", UpsertSpec{Columns: []string{"a"}, Keys: []string{"a"}}, "no table"},
		{"no columns", UpsertSpec{Table: pgx.Identifier{"t"}, Keys: []string{"a"}}, "no columns"},
		{"no keys", UpsertSpec{Table: pgx.Identifier{"t"}, Columns: []string{"a"}}, "no key columns"},
		{"stray key", UpsertSpec{Table: pgx.Identifier{"t"}, Columns: []string{"a"}, Keys: []string{"b"}}, `key "b" is not a column`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Upsert(context.Background(), nil, tt.spec, [][]any{{1}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestUpsertSpec_SQL(t *testing.T) {
	assert.Equal(t,
		`CREATE TEMP TABLE "stage_geo_postal_codes" (LIKE "geo"."postal_codes" INCLUDING DEFAULTS) ON COMMIT DROP`,
		places.stageSQL())
	assert.Equal(t,
		`INSERT INTO "geo"."postal_codes" ("postal_code", "city", "state") SELECT "postal_code", "city", "state" FROM "stage_geo_postal_codes" ON CONFLICT ("postal_code") DO UPDATE SET "city" = EXCLUDED."city", "state" = EXCLUDED."state"`,
		places.mergeSQL())

	keysOnly := UpsertSpec{Table: pgx.Identifier{"tags"}, Columns: []string{"tag"}, Keys: []string{"tag"}}
	assert.Contains(t, keysOnly.mergeSQL(), `ON CONFLICT ("tag") DO NOTHING`)
}

func TestUpsert_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "stage_geo_postal_codes"`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"stage_geo_postal_codes"}, places.Columns).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "geo"."postal_codes"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := Upsert(context.Background(), mock, places, [][]any{
		{"78701", "Austin", "TX"},
		{"73301", "Austin", "TX"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_CopyErrorRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"stage_geo_postal_codes"}, places.Columns).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = Upsert(context.Background(), mock, places, [][]any{{"78701", "Austin", "TX"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db: upsert geo.postal_codes: copy")
	assert.NoError(t, mock.ExpectationsWereMet())
}
