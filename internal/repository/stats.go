package repository

import (
	"context"
	"fmt"

	"nepremicnine-backend/internal/models"
	"nepremicnine-backend/internal/sqlassets"
)

// statsViewTemplates are executed in order; each drops and recreates one
// materialized view.
var statsViewTemplates = []string{
	"stats/create_mv_prodajne_stats.sql",
	"stats/create_mv_najemne_stats.sql",
	"stats/create_mv_prodajne_stats_12m.sql",
	"stats/create_mv_najemne_stats_12m.sql",
}

// RefreshStatistike recreates the four materialized views and repopulates
// the serving cache. The cache swap is transactional; view recreation is
// not (a failed view recreation aborts before the cache is touched).
func (r *Repository) RefreshStatistike(ctx context.Context) (yearly, last12m int64, err error) {
	for _, name := range statsViewTemplates {
		sql, err := sqlassets.Query(name)
		if err != nil {
			return 0, 0, err
		}
		if _, err := r.db.Exec(ctx, sql); err != nil {
			return 0, 0, fmt.Errorf("recreate view %s: %w", name, err)
		}
	}

	yearlySQL, err := sqlassets.Query("stats/populate_statistike_cache.sql")
	if err != nil {
		return 0, 0, err
	}
	last12mSQL, err := sqlassets.Query("stats/populate_statistike_cache_12m.sql")
	if err != nil {
		return 0, 0, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE stats.statistike_cache"); err != nil {
		return 0, 0, fmt.Errorf("truncate statistics cache: %w", err)
	}
	if _, err := tx.Exec(ctx, yearlySQL); err != nil {
		return 0, 0, fmt.Errorf("populate yearly cache: %w", err)
	}
	if _, err := tx.Exec(ctx, last12mSQL); err != nil {
		return 0, 0, fmt.Errorf("populate last-12m cache: %w", err)
	}

	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE tip_obdobja = 'letno'),
		       COUNT(*) FILTER (WHERE tip_obdobja = 'zadnjih12m')
		FROM stats.statistike_cache`).Scan(&yearly, &last12m)
	if err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, err
	}
	return yearly, last12m, nil
}

const statistikeCacheColumns = `
	tip_regije, ime_regije, tip_posla, vrsta_nepremicnine, tip_obdobja,
	leto, povprecna_cena_m2, povprecna_skupna_cena, stevilo_poslov,
	aktivna_v_letu, povprecna_velikost_m2, povprecna_starost_stavbe`

// GetStatistike loads every cache row for one region, yearly rows newest
// first. Region names are matched on their normalized form so callers may
// pass any diacritic/case variant.
func (r *Repository) GetStatistike(ctx context.Context, tipRegije, imeRegijeNorm string) ([]models.StatistikaCacheRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+statistikeCacheColumns+`
		FROM stats.statistike_cache
		WHERE tip_regije = $1
		  AND upper(translate(ime_regije, 'čšžČŠŽ', 'cszCSZ')) = $2
		ORDER BY tip_posla, vrsta_nepremicnine, tip_obdobja, leto DESC NULLS LAST`,
		tipRegije, imeRegijeNorm)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStatistikaRows(rows)
}

// GetObcineZadnjih12m returns the trailing-12-month rows for every
// municipality, optionally including cadastral municipalities.
func (r *Repository) GetObcineZadnjih12m(ctx context.Context, includeCadastral bool) ([]models.StatistikaCacheRow, error) {
	kinds := []string{"obcina"}
	if includeCadastral {
		kinds = append(kinds, "katastrska_obcina")
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+statistikeCacheColumns+`
		FROM stats.statistike_cache
		WHERE tip_obdobja = 'zadnjih12m'
		  AND tip_regije = ANY($1)
		ORDER BY tip_regije, ime_regije, tip_posla, vrsta_nepremicnine`, kinds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStatistikaRows(rows)
}

type statistikaRowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanStatistikaRows(rows statistikaRowScanner) ([]models.StatistikaCacheRow, error) {
	var out []models.StatistikaCacheRow
	for rows.Next() {
		var s models.StatistikaCacheRow
		if err := rows.Scan(
			&s.TipRegije, &s.ImeRegije, &s.TipPosla, &s.VrstaNepremicnine,
			&s.TipObdobja, &s.Leto, &s.PovprecnaCenaM2, &s.PovprecnaSkupnaCena,
			&s.SteviloPoslov, &s.AktivnaVLetu, &s.PovprecnaVelikostM2,
			&s.PovprecnaStarostStavbe,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetStatistikeStatus reports cache freshness for the status endpoint.
func (r *Repository) GetStatistikeStatus(ctx context.Context) (map[string]any, error) {
	var total, yearly, last12m int64
	var newest *int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE tip_obdobja = 'letno'),
		       COUNT(*) FILTER (WHERE tip_obdobja = 'zadnjih12m'),
		       MAX(leto)
		FROM stats.statistike_cache`).Scan(&total, &yearly, &last12m, &newest)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"rows":         total,
		"yearly_rows":  yearly,
		"last12m_rows": last12m,
		"newest_year":  newest,
	}, nil
}
