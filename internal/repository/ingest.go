package repository

import (
	"context"
	"fmt"

	"nepremicnine-backend/internal/models"
	"nepremicnine-backend/internal/sqlassets"

	"github.com/jackc/pgx/v5"
)

// copyChunkSize bounds one CopyFrom batch so a bad row is localized and
// memory stays flat on multi-million-row register dumps.
const copyChunkSize = 1000

// TruncateStaging wipes the given staging tables. Table names are the
// internal staging identifiers, never user input.
func (r *Repository) TruncateStaging(ctx context.Context, tables ...string) error {
	for _, t := range tables {
		if _, err := r.db.Exec(ctx, fmt.Sprintf("TRUNCATE %s", t)); err != nil {
			return fmt.Errorf("truncate %s: %w", t, err)
		}
	}
	return nil
}

// CopyStaging bulk-loads rows into one staging table in chunks inside a
// single transaction. Columns must be a subset of the table's columns;
// the caller filters CSV headers through models.StagingColumns first.
func (r *Repository) CopyStaging(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	ident := stagingIdentifier(table)
	var total int64
	for start := 0; start < len(rows); start += copyChunkSize {
		end := start + copyChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		n, err := tx.CopyFrom(ctx, ident, columns, pgx.CopyFromRows(rows[start:end]))
		if err != nil {
			return 0, fmt.Errorf("copy into %s (rows %d..%d): %w", table, start, end, err)
		}
		total += n
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return total, nil
}

func stagingIdentifier(table string) pgx.Identifier {
	return pgx.Identifier{"staging", table}
}

// StagingCount returns the row count of one staging table.
func (r *Repository) StagingCount(ctx context.Context, table string) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM staging.%s", table)).Scan(&n)
	return n, err
}

// CountStagedResidential reports how many staged rental building parts
// are dwellings (vrsta_oddanih_prostorov 1, 2 or 16). The share is logged
// before the transform as a register-quality signal.
func (r *Repository) CountStagedResidential(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM staging.np_del_stavbe
		WHERE vrsta_oddanih_prostorov IN ('1', '2', '16')`).Scan(&n)
	return n, err
}

// CountStagedOrphans reports staged building-part rows whose deal is not
// present in the staged deal dump. Orphans are dropped by the transform
// join; the count is logged so upstream inconsistencies are visible.
func (r *Repository) CountStagedOrphans(ctx context.Context, ds models.Dataset) (int64, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s d
		WHERE NULLIF(d.id_posla, '') IS NOT NULL
		  AND NOT EXISTS (SELECT 1 FROM %s p WHERE p.id_posla = d.id_posla)`,
		ds.StagingDelStavbe(), ds.StagingPosel())

	var n int64
	err := r.db.QueryRow(ctx, query).Scan(&n)
	return n, err
}

// StagedOrphanSample returns up to limit orphaned id_posla values for the
// audit log line.
func (r *Repository) StagedOrphanSample(ctx context.Context, ds models.Dataset, limit int) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT d.id_posla
		FROM %s d
		WHERE NULLIF(d.id_posla, '') IS NOT NULL
		  AND NOT EXISTS (SELECT 1 FROM %s p WHERE p.id_posla = d.id_posla)
		LIMIT $1`, ds.StagingDelStavbe(), ds.StagingPosel())

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TransformYear replaces the core partition for one (dataset, year) from
// the staged dump. The delete and both transforms run in one transaction
// so a failed run leaves the previous partition intact. Deals go first;
// the building-part transform joins on them.
func (r *Repository) TransformYear(ctx context.Context, ds models.Dataset, year int) (poselCount, delStavbeCount int64, err error) {
	poselSQL, err := sqlassets.Query(ds.Code + "_posel_transform.sql")
	if err != nil {
		return 0, 0, err
	}
	delSQL, err := sqlassets.Query(ds.Code + "_del_stavbe_transform.sql")
	if err != nil {
		return 0, 0, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE leto = $1", ds.CoreDelStavbe()), year); err != nil {
		return 0, 0, fmt.Errorf("delete %s partition %d: %w", ds.CoreDelStavbe(), year, err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE leto = $1", ds.CorePosel()), year); err != nil {
		return 0, 0, fmt.Errorf("delete %s partition %d: %w", ds.CorePosel(), year, err)
	}

	poselTag, err := tx.Exec(ctx, poselSQL)
	if err != nil {
		return 0, 0, fmt.Errorf("transform %s: %w", ds.CorePosel(), err)
	}
	delTag, err := tx.Exec(ctx, delSQL)
	if err != nil {
		return 0, 0, fmt.Errorf("transform %s: %w", ds.CoreDelStavbe(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, err
	}
	return poselTag.RowsAffected(), delTag.RowsAffected(), nil
}
