// Package stats serves the precomputed market statistics and owns their
// refresh cycle.
package stats

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"nepremicnine-backend/internal/models"
	"nepremicnine-backend/internal/repository"
)

// ErrBadRegionKind is returned for region kinds outside the closed set.
var ErrBadRegionKind = errors.New("unknown region kind")

// regionKinds is the closed set of supported region granularities.
var regionKinds = map[string]bool{
	"obcina":            true,
	"katastrska_obcina": true,
	"slovenija":         true,
}

type Service struct {
	repo *repository.Repository
}

func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// NormalizeRegion folds a region name onto its matching key: upper-cased,
// trimmed, Slovenian diacritics replaced by their ASCII base letters.
// Lookups match on this form so "Šmarje pri Jelšah" and "SMARJE PRI
// JELSAH" hit the same cache rows.
func NormalizeRegion(name string) string {
	replacer := strings.NewReplacer(
		"č", "c", "š", "s", "ž", "z",
		"Č", "C", "Š", "S", "Ž", "Z",
	)
	return strings.ToUpper(strings.TrimSpace(replacer.Replace(name)))
}

// RefreshAll recreates the materialized views and swaps the serving
// cache.
func (s *Service) RefreshAll(ctx context.Context) error {
	log.Printf("[stats] refreshing statistics cache")
	yearly, last12m, err := s.repo.RefreshStatistike(ctx)
	if err != nil {
		return fmt.Errorf("refresh statistics: %w", err)
	}
	log.Printf("[stats] cache populated: %d yearly rows, %d last-12m rows", yearly, last12m)
	return nil
}

// KindStats holds one (deal kind, property kind) cell of the full
// skeleton. Yearly rows are ordered newest year first.
type KindStats struct {
	Yearly  []models.StatistikaCacheRow `json:"yearly"`
	Last12m *models.StatistikaCacheRow  `json:"last12m"`
}

type DealStats struct {
	Apartment KindStats `json:"apartment"`
	House     KindStats `json:"house"`
}

// FullStats is the fixed response skeleton of the full-statistics
// endpoint. Cells with no data keep an empty yearly list and nil last12m.
type FullStats struct {
	Sale DealStats `json:"sale"`
	Rent DealStats `json:"rent"`
}

// GeneralStats is the four-cell trailing-12-month summary.
type GeneralStats struct {
	SaleApartment *models.StatistikaCacheRow `json:"sale_apartment"`
	SaleHouse     *models.StatistikaCacheRow `json:"sale_house"`
	RentApartment *models.StatistikaCacheRow `json:"rent_apartment"`
	RentHouse     *models.StatistikaCacheRow `json:"rent_house"`
}

func (s *Service) loadRegion(ctx context.Context, regionKind, region string) ([]models.StatistikaCacheRow, error) {
	if !regionKinds[regionKind] {
		return nil, fmt.Errorf("%w: %q", ErrBadRegionKind, regionKind)
	}
	rows, err := s.repo.GetStatistike(ctx, regionKind, NormalizeRegion(region))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repository.ErrNotFound
	}
	return rows, nil
}

// GetFull returns every cache row of one region grouped into the fixed
// sale/rent x apartment/house x yearly/last12m skeleton.
func (s *Service) GetFull(ctx context.Context, regionKind, region string) (*FullStats, error) {
	rows, err := s.loadRegion(ctx, regionKind, region)
	if err != nil {
		return nil, err
	}
	return buildFullStats(rows), nil
}

func buildFullStats(rows []models.StatistikaCacheRow) *FullStats {
	full := &FullStats{
		Sale: DealStats{
			Apartment: KindStats{Yearly: []models.StatistikaCacheRow{}},
			House:     KindStats{Yearly: []models.StatistikaCacheRow{}},
		},
		Rent: DealStats{
			Apartment: KindStats{Yearly: []models.StatistikaCacheRow{}},
			House:     KindStats{Yearly: []models.StatistikaCacheRow{}},
		},
	}

	for _, row := range rows {
		cell := full.cell(row.TipPosla, row.VrstaNepremicnine)
		if cell == nil {
			continue
		}
		switch row.TipObdobja {
		case "letno":
			cell.Yearly = append(cell.Yearly, row)
		case "zadnjih12m":
			r := row
			cell.Last12m = &r
		}
	}
	return full
}

func (f *FullStats) cell(tipPosla, vrstaNepremicnine string) *KindStats {
	var deal *DealStats
	switch tipPosla {
	case "prodaja":
		deal = &f.Sale
	case "najem":
		deal = &f.Rent
	default:
		return nil
	}
	switch vrstaNepremicnine {
	case "stanovanje":
		return &deal.Apartment
	case "hisa":
		return &deal.House
	default:
		return nil
	}
}

// GetGeneral returns only the four trailing-12-month rows of one region.
func (s *Service) GetGeneral(ctx context.Context, regionKind, region string) (*GeneralStats, error) {
	full, err := s.GetFull(ctx, regionKind, region)
	if err != nil {
		return nil, err
	}
	return &GeneralStats{
		SaleApartment: full.Sale.Apartment.Last12m,
		SaleHouse:     full.Sale.House.Last12m,
		RentApartment: full.Rent.Apartment.Last12m,
		RentHouse:     full.Rent.House.Last12m,
	}, nil
}

// MunicipalityActivity is the per-municipality deal-count breakdown over
// the trailing 12 months.
type MunicipalityActivity struct {
	ImeRegije         string `json:"ime_regije"`
	TipRegije         string `json:"tip_regije"`
	ProdajaStanovanje int64  `json:"prodaja_stanovanje"`
	ProdajaHisa       int64  `json:"prodaja_hisa"`
	NajemStanovanje   int64  `json:"najem_stanovanje"`
	NajemHisa         int64  `json:"najem_hisa"`
	ProdajaSkupaj     int64  `json:"prodaja_skupaj"`
	NajemSkupaj       int64  `json:"najem_skupaj"`
	Skupaj            int64  `json:"skupaj"`
}

// GetAllMunicipalitiesLast12m aggregates trailing-12-month deal counts
// per municipality, optionally including cadastral municipalities.
func (s *Service) GetAllMunicipalitiesLast12m(ctx context.Context, includeCadastral bool) ([]MunicipalityActivity, error) {
	rows, err := s.repo.GetObcineZadnjih12m(ctx, includeCadastral)
	if err != nil {
		return nil, err
	}

	var out []MunicipalityActivity
	index := make(map[string]int)
	for _, row := range rows {
		key := row.TipRegije + "\x00" + row.ImeRegije
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, MunicipalityActivity{
				ImeRegije: row.ImeRegije,
				TipRegije: row.TipRegije,
			})
		}

		m := &out[i]
		switch {
		case row.TipPosla == "prodaja" && row.VrstaNepremicnine == "stanovanje":
			m.ProdajaStanovanje += row.SteviloPoslov
		case row.TipPosla == "prodaja" && row.VrstaNepremicnine == "hisa":
			m.ProdajaHisa += row.SteviloPoslov
		case row.TipPosla == "najem" && row.VrstaNepremicnine == "stanovanje":
			m.NajemStanovanje += row.SteviloPoslov
		case row.TipPosla == "najem" && row.VrstaNepremicnine == "hisa":
			m.NajemHisa += row.SteviloPoslov
		}
		switch row.TipPosla {
		case "prodaja":
			m.ProdajaSkupaj += row.SteviloPoslov
		case "najem":
			m.NajemSkupaj += row.SteviloPoslov
		}
		m.Skupaj += row.SteviloPoslov
	}
	return out, nil
}

// Status reports cache freshness for the status endpoint.
func (s *Service) Status(ctx context.Context) (map[string]any, error) {
	return s.repo.GetStatistikeStatus(ctx)
}
