package repository

import (
	"context"
	"fmt"
	"strings"

	"nepremicnine-backend/internal/models"
)

// GetDelStavbeByIDs batch-loads building parts for the details endpoint,
// ordered by the cadastral part numbers.
func (r *Repository) GetDelStavbeByIDs(ctx context.Context, ds models.Dataset, ids []int64) ([]models.DelStavbe, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var extra string
	if ds.IsRental() {
		extra = `opremljenost, NULL::int AS novogradnja, NULL::int AS stevilo_sob,
		       NULL::numeric AS pogodbena_cena, NULL::numeric AS stopnja_ddv`
	} else {
		extra = `NULL::smallint AS opremljenost, novogradnja, stevilo_sob,
		       pogodbena_cena, stopnja_ddv`
	}

	query := fmt.Sprintf(`
		SELECT del_stavbe_id, posel_id, sifra_ko, ime_ko, obcina,
		       stevilka_stavbe, stevilka_dela_stavbe, naselje, ulica,
		       hisna_stevilka, dodatek_hs, stev_stanovanja, vrsta,
		       %s,
		       opombe, leto_izgradnje_stavbe, dejanska_raba, lega_v_stavbi,
		       povrsina, povrsina_uporabna, prostori,
		       ST_X(coordinates), ST_Y(coordinates), leto
		FROM %s
		WHERE del_stavbe_id = ANY($1)
		ORDER BY stevilka_stavbe NULLS LAST, stevilka_dela_stavbe NULLS LAST`,
		extra, ds.CoreDelStavbe())

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DelStavbe
	for rows.Next() {
		var d models.DelStavbe
		if err := rows.Scan(
			&d.DelStavbeID, &d.PoselID, &d.SifraKo, &d.ImeKo, &d.Obcina,
			&d.StevilkaStavbe, &d.StevilkaDelaStavbe, &d.Naselje, &d.Ulica,
			&d.HisnaStevilka, &d.DodatekHs, &d.StevStanovanja, &d.Vrsta,
			&d.Opremljenost, &d.Novogradnja, &d.SteviloSob, &d.PogodbenaCena,
			&d.StopnjaDDV, &d.Opombe, &d.LetoIzgradnjeStavbe, &d.DejanskaRaba,
			&d.LegaVStavbi, &d.Povrsina, &d.PovrsinaUporabna, &d.Prostori,
			&d.Lng, &d.Lat, &d.Leto,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetPosliByIDs batch-loads deals for the details endpoint, newest first.
func (r *Repository) GetPosliByIDs(ctx context.Context, ds models.Dataset, ids []int64) ([]models.Posel, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var extra string
	if ds.IsRental() {
		extra = `najemnina AS cena_vrednost, vkljuceno_stroski,
		       datum_zacetka_najemanja, datum_prenehanja_najemanja,
		       trajanje_najemanja`
	} else {
		extra = `cena AS cena_vrednost, NULL::boolean AS vkljuceno_stroski,
		       NULL::date AS datum_zacetka_najemanja,
		       NULL::date AS datum_prenehanja_najemanja,
		       NULL::int AS trajanje_najemanja`
	}

	query := fmt.Sprintf(`
		SELECT posel_id, vrsta_posla, datum_uveljavitve, datum_sklenitve,
		       %s,
		       vkljuceno_ddv, stopnja_ddv, opombe, posredovanje_agencije,
		       trznost_posla, vrsta_akta, datum_zadnje_spremembe, leto
		FROM %s
		WHERE posel_id = ANY($1)
		ORDER BY datum_sklenitve DESC NULLS LAST,
		         datum_uveljavitve DESC NULLS LAST`,
		extra, ds.CorePosel())

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Posel
	for rows.Next() {
		var p models.Posel
		var price *float64
		if err := rows.Scan(
			&p.PoselID, &p.VrstaPosla, &p.DatumUveljavitve, &p.DatumSklenitve,
			&price, &p.VkljucenoStroski, &p.DatumZacetkaNajemanja,
			&p.DatumPrenehanjaNajema, &p.TrajanjeNajemanja,
			&p.VkljucenoDDV, &p.StopnjaDDV, &p.Opombe, &p.PosredovanjeAgencije,
			&p.TrznostPosla, &p.VrstaAkta, &p.DatumZadnjeSpremembe, &p.Leto,
		); err != nil {
			return nil, err
		}
		if ds.IsRental() {
			p.Najemnina = price
		} else {
			p.Cena = price
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SimilarWindow is the candidate predicate of the similarity engine. Each
// bound applies only when the reference attribute is present.
type SimilarWindow struct {
	VrstaNepremicnine  string
	RadiusKm           float64
	AreaMin, AreaMax   *float64
	PriceMin, PriceMax *float64
	YearMin, YearMax   *int
}

// GetSimilarCandidates loads deduplicated rows around a reference point
// that satisfy the candidate window. Distance search runs in SRID 3857;
// the caller re-measures exact distances for scoring.
func (r *Repository) GetSimilarCandidates(ctx context.Context, ds models.Dataset, refID int64, lng, lat float64, w SimilarWindow) ([]models.DeduplicatedDelStavbe, error) {
	args := []any{refID, w.VrstaNepremicnine, lng, lat, w.RadiusKm * 1000}
	conds := []string{
		"id <> $1",
		"vrsta_nepremicnine = $2",
		`ST_DWithin(
			ST_Transform(coordinates, 3857),
			ST_Transform(ST_SetSRID(ST_MakePoint($3, $4), 4326), 3857),
			$5 / cosd($4))`,
	}

	addBound := func(col, op string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s %s $%d", col, op, len(args)))
	}
	if w.AreaMin != nil {
		addBound("COALESCE(povrsina_uradna, povrsina_uporabna)", ">=", *w.AreaMin)
	}
	if w.AreaMax != nil {
		addBound("COALESCE(povrsina_uradna, povrsina_uporabna)", "<=", *w.AreaMax)
	}
	if w.PriceMin != nil {
		addBound(ds.PriceColumn, ">=", *w.PriceMin)
	}
	if w.PriceMax != nil {
		addBound(ds.PriceColumn, "<=", *w.PriceMax)
	}
	if w.YearMin != nil {
		addBound("leto_izgradnje_stavbe", ">=", *w.YearMin)
	}
	if w.YearMax != nil {
		addBound("leto_izgradnje_stavbe", "<=", *w.YearMax)
	}

	query := dedupSelect(ds) + "\n\t\tWHERE " + strings.Join(conds, " AND ")
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDedupRows(rows, ds)
}
