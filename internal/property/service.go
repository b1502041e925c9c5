// Package property serves single-property details and the similar-listing
// ranking.
package property

import (
	"context"
	"fmt"

	"nepremicnine-backend/internal/models"
	"nepremicnine-backend/internal/repository"
	"nepremicnine-backend/internal/zemljevid"
)

type Service struct {
	repo *repository.Repository
}

func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// DetailsProperties is the property block of the details feature: the
// deduplicated row inlined, plus the expanded source lists.
type DetailsProperties struct {
	models.DeduplicatedDelStavbe

	NajnovejsiDelStavbe models.DelStavbe             `json:"najnovejsi_del_stavbe"`
	DeliStavb           []models.DelStavbe           `json:"deli_stavb"`
	Posli               []models.Posel               `json:"posli"`
	IzkaznicePodatki    []models.EnergetskaIzkaznica `json:"energetske_izkaznice_podatki"`
	SteviloPoslov       int                          `json:"stevilo_poslov"`
	ImaVecPoslov        bool                         `json:"ima_vec_poslov"`
	Naslov              string                       `json:"naslov"`
}

// GetDetails resolves one deduplicated property into a GeoJSON feature
// with its full transaction history. The expansions are explicit IN-list
// batch loads on the id arrays.
func (s *Service) GetDetails(ctx context.Context, ds models.Dataset, id int64) (*zemljevid.Feature, error) {
	d, err := s.repo.GetDeduplicatedByID(ctx, ds, id)
	if err != nil {
		return nil, err
	}

	deli, err := s.repo.GetDelStavbeByIDs(ctx, ds, d.PovezaniDelStavbeIDs)
	if err != nil {
		return nil, fmt.Errorf("load building parts for %d: %w", id, err)
	}
	posli, err := s.repo.GetPosliByIDs(ctx, ds, d.PovezaniPoselIDs)
	if err != nil {
		return nil, fmt.Errorf("load deals for %d: %w", id, err)
	}

	var najnovejsi *models.DelStavbe
	for i := range deli {
		if deli[i].DelStavbeID == d.NajnovejsiDelStavbeID {
			najnovejsi = &deli[i]
			break
		}
	}
	if najnovejsi == nil {
		return nil, repository.ErrNotFound
	}

	izkaznice, err := s.repo.GetEnergetskeIzkazniceByIDs(ctx, d.EnergetskeIzkaznice)
	if err != nil {
		return nil, fmt.Errorf("load certificates for %d: %w", id, err)
	}
	if izkaznice == nil {
		izkaznice = []models.EnergetskaIzkaznica{}
	}

	props := DetailsProperties{
		DeduplicatedDelStavbe: *d,
		NajnovejsiDelStavbe:   *najnovejsi,
		DeliStavb:             deli,
		Posli:                 posli,
		IzkaznicePodatki:      izkaznice,
		SteviloPoslov:         len(posli),
		ImaVecPoslov:          len(posli) > 1,
		Naslov:                FormatAddress(d.Ulica, d.HisnaStevilka, d.DodatekHs, d.Naselje, d.Obcina),
	}

	feature := zemljevid.Feature{
		Type: "Feature",
		Geometry: zemljevid.Geometry{
			Type:        "Point",
			Coordinates: [2]float64{d.Lng, d.Lat},
		},
		Properties: props,
	}
	return &feature, nil
}
