package repository

import (
	"context"
	"fmt"

	"nepremicnine-backend/internal/models"
	"nepremicnine-backend/internal/sqlassets"

	"github.com/jackc/pgx/v5"
)

// eiStagingColumns is the fixed column order the certificate ingester
// produces after cleaning the public CSV.
var eiStagingColumns = []string{
	"ei_id", "datum_izdelave", "velja_do", "sifra_ko", "stevilka_stavbe",
	"stevilka_dela_stavbe", "tip_izkaznice", "potrebna_toplota_ogrevanje",
	"dovedena_energija_delovanje", "celotna_energija",
	"dovedena_elektricna_energija", "primarna_energija", "emisije_co2",
	"kondicionirana_povrsina", "energijski_razred", "epbd_tip",
}

// StageEnergetskeIzkaznice replaces the staged certificate table with the
// cleaned rows. Rows follow eiStagingColumns order.
func (r *Repository) StageEnergetskeIzkaznice(ctx context.Context, rows [][]any) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE staging.energetska_izkaznica"); err != nil {
		return 0, err
	}

	var total int64
	for start := 0; start < len(rows); start += copyChunkSize {
		end := start + copyChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"staging", "energetska_izkaznica"},
			eiStagingColumns,
			pgx.CopyFromRows(rows[start:end]))
		if err != nil {
			return 0, fmt.Errorf("copy certificates (rows %d..%d): %w", start, end, err)
		}
		total += n
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return total, nil
}

// ReplaceEnergetskeIzkaznice swaps the core certificate register for the
// staged one and returns the inserted row count.
func (r *Repository) ReplaceEnergetskeIzkaznice(ctx context.Context) (int64, error) {
	sql, err := sqlassets.Query("ei_insert.sql")
	if err != nil {
		return 0, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, sql)
	if err != nil {
		return 0, fmt.Errorf("replace certificate register: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// AttachEnergetskeIzkaznice stamps certificate id arrays and the
// representative energy class onto both deduplicated tables.
func (r *Repository) AttachEnergetskeIzkaznice(ctx context.Context) error {
	sql, err := sqlassets.Query("dodaj_ei_deduplication.sql")
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, sql); err != nil {
		return fmt.Errorf("attach certificates: %w", err)
	}
	return nil
}

// CountEnergetskeIzkaznice returns the size of the core certificate
// register, used by the status probe.
func (r *Repository) CountEnergetskeIzkaznice(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM core.energetska_izkaznica").Scan(&n)
	return n, err
}

// GetEnergetskeIzkazniceByIDs loads certificates by primary key, newest
// issue date first.
func (r *Repository) GetEnergetskeIzkazniceByIDs(ctx context.Context, ids []int64) ([]models.EnergetskaIzkaznica, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, ei_id, datum_izdelave, velja_do, sifra_ko, stevilka_stavbe,
		       stevilka_dela_stavbe, tip_izkaznice, potrebna_toplota_ogrevanje,
		       dovedena_energija_delovanje, celotna_energija,
		       dovedena_elektricna_energija, primarna_energija, emisije_co2,
		       kondicionirana_povrsina, energijski_razred, epbd_tip
		FROM core.energetska_izkaznica
		WHERE id = ANY($1)
		ORDER BY datum_izdelave DESC NULLS LAST, id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.EnergetskaIzkaznica
	for rows.Next() {
		var e models.EnergetskaIzkaznica
		if err := rows.Scan(
			&e.ID, &e.EiID, &e.DatumIzdelave, &e.VeljaDo, &e.SifraKo,
			&e.StevilkaStavbe, &e.StevilkaDelaStavbe, &e.TipIzkaznice,
			&e.PotrebnaToplotaOgrevanje, &e.DovedenaEnergijaDelovanje,
			&e.CelotnaEnergija, &e.DovedenaElektricnaEnergija,
			&e.PrimarnaEnergija, &e.EmisijeCO2, &e.KondicioniranaPovrsina,
			&e.EnergijskiRazred, &e.EpbdTip,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
