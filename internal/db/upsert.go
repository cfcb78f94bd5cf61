package db

import (
	"context"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpsertSpec describes a keyed bulk write into one table.
type UpsertSpec struct {
	Table   pgx.Identifier // schema-qualified, e.g. {"geo", "postal_codes"}
	Columns []string
	Keys    []string // unique constraint columns, a subset of Columns
}

func (s UpsertSpec) validate() error {
	if len(s.Table) == 0 {
		return eris.New("db: upsert: no table")
	}
	if len(s.Columns) == 0 {
		return eris.Errorf("db: upsert %s: no columns", s.name())
	}
	if len(s.Keys) == 0 {
		return eris.Errorf("db: upsert %s: no key columns", s.name())
	}
	for _, k := range s.Keys {
		if !slices.Contains(s.Columns, k) {
			return eris.Errorf("db: upsert %s: key %q is not a column", s.name(), k)
		}
	}
	return nil
}

func (s UpsertSpec) name() string { return strings.Join(s.Table, ".") }

// stage is the session-local table rows are copied into before the merge.
func (s UpsertSpec) stage() pgx.Identifier {
	return pgx.Identifier{"stage_" + strings.Join(s.Table, "_")}
}

func (s UpsertSpec) stageSQL() string {
	return "CREATE TEMP TABLE " + s.stage().Sanitize() +
		" (LIKE " + s.Table.Sanitize() + " INCLUDING DEFAULTS) ON COMMIT DROP"
}

// mergeSQL moves staged rows into the target. Non-key columns are overwritten
// on conflict; a spec with only key columns ignores duplicates.
func (s UpsertSpec) mergeSQL() string {
	cols := identList(s.Columns)

	var b strings.Builder
	b.WriteString("INSERT INTO " + s.Table.Sanitize() + " (" + cols + ")")
	b.WriteString(" SELECT " + cols + " FROM " + s.stage().Sanitize())
	b.WriteString(" ON CONFLICT (" + identList(s.Keys) + ")")

	var sets []string
	for _, c := range s.Columns {
		if slices.Contains(s.Keys, c) {
			continue
		}
		id := pgx.Identifier{c}.Sanitize()
		sets = append(sets, id+" = EXCLUDED."+id)
	}
	if len(sets) == 0 {
		b.WriteString(" DO NOTHING")
	} else {
		b.WriteString(" DO UPDATE SET " + strings.Join(sets, ", "))
	}
	return b.String()
}

// Upsert writes rows through a COPY into a temp stage and one INSERT ... ON
// CONFLICT, all in a single transaction. It returns the rows merged.
func Upsert(ctx context.Context, pool Pool, spec UpsertSpec, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := spec.validate(); err != nil {
		return 0, err
	}

	var merged int64
	err := inTx(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, spec.stageSQL()); err != nil {
			return eris.Wrapf(err, "db: upsert %s: create stage", spec.name())
		}
		if _, err := tx.CopyFrom(ctx, spec.stage(), spec.Columns, pgx.CopyFromRows(rows)); err != nil {
			return eris.Wrapf(err, "db: upsert %s: copy", spec.name())
		}
		tag, err := tx.Exec(ctx, spec.mergeSQL())
		if err != nil {
			return eris.Wrapf(err, "db: upsert %s: merge", spec.name())
		}
		merged = tag.RowsAffected()
		return nil
	})
	return merged, err
}

// inTx runs fn in a transaction, committing when fn succeeds.
func inTx(ctx context.Context, pool Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "db: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return eris.Wrap(tx.Commit(ctx), "db: commit tx")
}

func identList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
