package property

import (
	"context"
	"math"
	"sort"
	"strings"

	"nepremicnine-backend/internal/models"
	"nepremicnine-backend/internal/repository"
)

// Candidate windows around the reference attributes. Scoring tolerances
// are wider on purpose: the window prunes, the score ranks.
const (
	areaWindow  = 0.15
	priceWindow = 0.15
	yearWindow  = 10
)

// Criterion weights of the 100-point similarity scale.
const (
	weightArea     = 30.0
	weightPrice    = 25.0
	weightLocation = 20.0
	weightYear     = 15.0
	weightEnergy   = 10.0
)

// SimilarProperty is one ranked result: the deduplicated row annotated
// with its score, distance and display address.
type SimilarProperty struct {
	models.DeduplicatedDelStavbe

	SimilarityScore float64 `json:"similarity_score"`
	DistanceKm      float64 `json:"distance_km"`
	Naslov          string  `json:"naslov"`
}

// GetSimilar ranks properties around a reference by attribute and
// location similarity. Candidates share the reference's property kind,
// lie within radiusKm and fall inside the attribute windows for every
// reference attribute that is present.
func (s *Service) GetSimilar(ctx context.Context, ds models.Dataset, refID int64, limit int, radiusKm float64) ([]SimilarProperty, error) {
	ref, err := s.repo.GetDeduplicatedByID(ctx, ds, refID)
	if err != nil {
		return nil, err
	}
	if ref.VrstaNepremicnine == nil {
		return []SimilarProperty{}, nil
	}

	refArea := areaOf(*ref)
	refPrice := priceOf(ds, *ref)
	refYear := ref.LetoIzgradnjeStavbe

	w := repository.SimilarWindow{
		VrstaNepremicnine: *ref.VrstaNepremicnine,
		RadiusKm:          radiusKm,
	}
	if refArea != nil {
		lo, hi := (*refArea)*(1-areaWindow), (*refArea)*(1+areaWindow)
		w.AreaMin, w.AreaMax = &lo, &hi
	}
	if refPrice != nil {
		lo, hi := (*refPrice)*(1-priceWindow), (*refPrice)*(1+priceWindow)
		w.PriceMin, w.PriceMax = &lo, &hi
	}
	if refYear != nil {
		lo, hi := *refYear-yearWindow, *refYear+yearWindow
		w.YearMin, w.YearMax = &lo, &hi
	}

	candidates, err := s.repo.GetSimilarCandidates(ctx, ds, ref.ID, ref.Lng, ref.Lat, w)
	if err != nil {
		return nil, err
	}

	results := make([]SimilarProperty, 0, len(candidates))
	for _, cand := range candidates {
		distKm := haversineKm(ref.Lat, ref.Lng, cand.Lat, cand.Lng)
		if distKm > radiusKm {
			continue
		}
		results = append(results, SimilarProperty{
			DeduplicatedDelStavbe: cand,
			SimilarityScore:       similarityScore(ds, *ref, cand, distKm),
			DistanceKm:            math.Round(distKm*100) / 100,
			Naslov:                FormatAddress(cand.Ulica, cand.HisnaStevilka, cand.DodatekHs, cand.Naselje, cand.Obcina),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func areaOf(d models.DeduplicatedDelStavbe) *float64 {
	if d.PovrsinaUradna != nil {
		return d.PovrsinaUradna
	}
	return d.PovrsinaUporabna
}

func priceOf(ds models.Dataset, d models.DeduplicatedDelStavbe) *float64 {
	if ds.IsRental() {
		return d.ZadnjaNajemnina
	}
	return d.ZadnjaCena
}

// similarityScore combines the weighted criteria into a 0..100 score.
// A criterion with a missing reference datum carries no weight; a
// criterion the candidate cannot answer scores zero but keeps its weight.
func similarityScore(ds models.Dataset, ref, cand models.DeduplicatedDelStavbe, distKm float64) float64 {
	var score, weights float64

	if refArea := areaOf(ref); refArea != nil && *refArea > 0 {
		weights += weightArea
		if candArea := areaOf(cand); candArea != nil {
			score += proximityScore(weightArea, *refArea, *candArea)
		}
	}
	if refPrice := priceOf(ds, ref); refPrice != nil && *refPrice > 0 {
		weights += weightPrice
		if candPrice := priceOf(ds, cand); candPrice != nil {
			score += proximityScore(weightPrice, *refPrice, *candPrice)
		}
	}

	weights += weightLocation
	score += locationScore(distKm)

	if ref.LetoIzgradnjeStavbe != nil {
		weights += weightYear
		if cand.LetoIzgradnjeStavbe != nil {
			delta := math.Abs(float64(*ref.LetoIzgradnjeStavbe - *cand.LetoIzgradnjeStavbe))
			score += clampNonNegative(weightYear * (1 - delta/30))
		}
	}

	if refIdx, ok := energyClassIndex(ref.EnergijskiRazred); ok {
		weights += weightEnergy
		if candIdx, ok := energyClassIndex(cand.EnergijskiRazred); ok {
			delta := math.Abs(float64(refIdx - candIdx))
			score += clampNonNegative(weightEnergy * (1 - delta/6))
		}
	}

	if weights == 0 {
		return 0
	}
	final := 100 * score / weights
	if final > 100 {
		final = 100
	}
	return clampNonNegative(final)
}

// proximityScore is the shared shape of the area and price criteria:
// full weight at equality, linear falloff with relative difference.
func proximityScore(weight, ref, cand float64) float64 {
	return clampNonNegative(weight * (1 - math.Abs(cand-ref)/ref))
}

// locationScore steps down with distance and fades linearly past 5 km.
func locationScore(distKm float64) float64 {
	switch {
	case distKm <= 1:
		return 20
	case distKm <= 3:
		return 15
	case distKm <= 5:
		return 10
	default:
		return clampNonNegative(20 * (1 - (distKm-5)/10))
	}
}

// energyClassIndex maps class letters A..G onto 0..6. Subclasses like
// "A1" count as their base letter.
func energyClassIndex(class *string) (int, bool) {
	if class == nil {
		return 0, false
	}
	c := strings.TrimSpace(strings.ToUpper(*class))
	if c == "" || c[0] < 'A' || c[0] > 'G' {
		return 0, false
	}
	return int(c[0] - 'A'), true
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// haversineKm is the great-circle distance between two WGS-84 points.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0

	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
