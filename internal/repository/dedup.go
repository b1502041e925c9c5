package repository

import (
	"context"
	"fmt"

	"nepremicnine-backend/internal/models"
	"nepremicnine-backend/internal/sqlassets"
)

// RebuildDeduplicated drops and rebuilds the deduplicated table of one
// dataset from its full core history. Delete and rebuild share a
// transaction so readers never observe a half-built table.
func (r *Repository) RebuildDeduplicated(ctx context.Context, ds models.Dataset) (int64, error) {
	sql, err := sqlassets.Query(ds.Code + "_del_stavbe_deduplication.sql")
	if err != nil {
		return 0, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s", ds.Deduplicated())); err != nil {
		return 0, fmt.Errorf("clear %s: %w", ds.Deduplicated(), err)
	}
	tag, err := tx.Exec(ctx, sql)
	if err != nil {
		return 0, fmt.Errorf("rebuild %s: %w", ds.Deduplicated(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountCoreDelStavbe returns the all-years input row count of one
// dataset's core building-part table.
func (r *Repository) CountCoreDelStavbe(ctx context.Context, ds models.Dataset) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", ds.CoreDelStavbe())).Scan(&n)
	return n, err
}

// DeduplicatedStats summarizes one deduplicated table for status probes.
type DeduplicatedStats struct {
	Rows            int64 `json:"rows"`
	WithCertificate int64 `json:"with_certificate"`
	SourceRows      int64 `json:"source_rows"`
}

func (r *Repository) GetDeduplicatedStats(ctx context.Context, ds models.Dataset) (DeduplicatedStats, error) {
	var s DeduplicatedStats
	err := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE energetske_izkaznice IS NOT NULL
		                          AND array_length(energetske_izkaznice, 1) > 0),
		       COALESCE(SUM(array_length(povezani_del_stavbe_ids, 1)), 0)
		FROM %s`, ds.Deduplicated())).Scan(&s.Rows, &s.WithCertificate, &s.SourceRows)
	return s, err
}
