package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nepremicnine-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

// dedupSelect builds the shared projection over a deduplicated table. The
// rental and sale tables differ in two cached columns; the sale side
// selects NULL placeholders so both scan through the same column list.
func dedupSelect(ds models.Dataset) string {
	var extra string
	if ds.IsRental() {
		extra = `opremljenost, NULL::int AS stevilo_sob,
		       zadnja_najemnina AS zadnja_cena_vrednost, zadnje_vkljuceno_stroski`
	} else {
		extra = `NULL::smallint AS opremljenost, stevilo_sob,
		       zadnja_cena AS zadnja_cena_vrednost, NULL::boolean AS zadnje_vkljuceno_stroski`
	}
	return fmt.Sprintf(`
		SELECT id, sifra_ko, stevilka_stavbe, stevilka_dela_stavbe,
		       dejanska_raba, povezani_del_stavbe_ids, povezani_posel_ids,
		       najnovejsi_del_stavbe_id, obcina, naselje, ulica,
		       hisna_stevilka, dodatek_hs, stev_stanovanja, povrsina_uradna,
		       povrsina_uporabna, leto_izgradnje_stavbe, vrsta_nepremicnine,
		       %s,
		       zadnje_vkljuceno_ddv, zadnja_stopnja_ddv, zadnje_leto,
		       energetske_izkaznice, energijski_razred,
		       ST_X(coordinates), ST_Y(coordinates)
		FROM %s`, extra, ds.Deduplicated())
}

func scanDedupRow(row pgx.Row, ds models.Dataset) (models.DeduplicatedDelStavbe, error) {
	var d models.DeduplicatedDelStavbe
	var price *float64
	err := row.Scan(
		&d.ID, &d.SifraKo, &d.StevilkaStavbe, &d.StevilkaDelaStavbe,
		&d.DejanskaRaba, &d.PovezaniDelStavbeIDs, &d.PovezaniPoselIDs,
		&d.NajnovejsiDelStavbeID, &d.Obcina, &d.Naselje, &d.Ulica,
		&d.HisnaStevilka, &d.DodatekHs, &d.StevStanovanja, &d.PovrsinaUradna,
		&d.PovrsinaUporabna, &d.LetoIzgradnjeStavbe, &d.VrstaNepremicnine,
		&d.Opremljenost, &d.SteviloSob, &price, &d.ZadnjeVkljucenoStroski,
		&d.ZadnjeVkljucenoDDV, &d.ZadnjaStopnjaDDV, &d.ZadnjeLeto,
		&d.EnergetskeIzkaznice, &d.EnergijskiRazred, &d.Lng, &d.Lat,
	)
	if err != nil {
		return d, err
	}
	if ds.IsRental() {
		d.ZadnjaNajemnina = price
	} else {
		d.ZadnjaCena = price
	}
	return d, nil
}

// appendFilterClauses adds the map filter predicates to conds/args. The
// price column is dataset-specific.
func appendFilterClauses(ds models.Dataset, f models.MapFilters, conds []string, args []any) ([]string, []any) {
	if f.YearMin != nil {
		args = append(args, *f.YearMin)
		conds = append(conds, fmt.Sprintf("zadnje_leto >= $%d", len(args)))
	}
	if f.PriceMin != nil {
		args = append(args, *f.PriceMin)
		conds = append(conds, fmt.Sprintf("%s >= $%d", ds.PriceColumn, len(args)))
	}
	if f.PriceMax != nil {
		args = append(args, *f.PriceMax)
		conds = append(conds, fmt.Sprintf("%s <= $%d", ds.PriceColumn, len(args)))
	}
	if f.AreaMin != nil {
		args = append(args, *f.AreaMin)
		conds = append(conds, fmt.Sprintf("povrsina_uradna >= $%d", len(args)))
	}
	if f.AreaMax != nil {
		args = append(args, *f.AreaMax)
		conds = append(conds, fmt.Sprintf("povrsina_uradna <= $%d", len(args)))
	}
	return conds, args
}

// GetMapRows loads the deduplicated rows that intersect the bbox and pass
// the filters. The GIST index on coordinates serves the bbox predicate.
func (r *Repository) GetMapRows(ctx context.Context, ds models.Dataset, bbox models.BBox, f models.MapFilters) ([]models.DeduplicatedDelStavbe, error) {
	args := []any{bbox.West, bbox.South, bbox.East, bbox.North}
	conds := []string{"coordinates && ST_MakeEnvelope($1, $2, $3, $4, 4326)"}
	conds, args = appendFilterClauses(ds, f, conds, args)

	query := dedupSelect(ds) + "\n\t\tWHERE " + strings.Join(conds, " AND ")
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDedupRows(rows, ds)
}

// GetBuildingMembers loads the rows of one building cluster, identified
// by (obcina, sifra_ko, stevilka_stavbe).
func (r *Repository) GetBuildingMembers(ctx context.Context, ds models.Dataset, obcina string, sifraKo, stevilkaStavbe int, f models.MapFilters) ([]models.DeduplicatedDelStavbe, error) {
	args := []any{obcina, sifraKo, stevilkaStavbe}
	conds := []string{"obcina = $1", "sifra_ko = $2", "stevilka_stavbe = $3"}
	conds, args = appendFilterClauses(ds, f, conds, args)

	query := dedupSelect(ds) +
		"\n\t\tWHERE " + strings.Join(conds, " AND ") +
		"\n\t\tORDER BY stevilka_dela_stavbe"
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDedupRows(rows, ds)
}

// CountBuildingMembers reports the unfiltered size of one building
// cluster; the expansion endpoint uses it for the skipped count.
func (r *Repository) CountBuildingMembers(ctx context.Context, ds models.Dataset, obcina string, sifraKo, stevilkaStavbe int) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT COUNT(*) FROM %s
		WHERE obcina = $1 AND sifra_ko = $2 AND stevilka_stavbe = $3`,
		ds.Deduplicated()), obcina, sifraKo, stevilkaStavbe).Scan(&n)
	return n, err
}

// GetDeduplicatedByID loads one deduplicated row.
func (r *Repository) GetDeduplicatedByID(ctx context.Context, ds models.Dataset, id int64) (*models.DeduplicatedDelStavbe, error) {
	row := r.db.QueryRow(ctx, dedupSelect(ds)+"\n\t\tWHERE id = $1", id)
	d, err := scanDedupRow(row, ds)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func collectDedupRows(rows pgx.Rows, ds models.Dataset) ([]models.DeduplicatedDelStavbe, error) {
	var out []models.DeduplicatedDelStavbe
	for rows.Next() {
		d, err := scanDedupRow(rows, ds)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
