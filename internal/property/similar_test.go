package property

import (
	"math"
	"testing"

	"nepremicnine-backend/internal/models"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }
func sp(v string) *string   { return &v }

func TestLocationScore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		distKm float64
		want   float64
	}{
		{0, 20},
		{1, 20},
		{2, 15},
		{3, 15},
		{4, 10},
		{5, 10},
		{10, 10},
		{15, 0},
		{50, 0},
	}
	for _, tc := range cases {
		if got := locationScore(tc.distKm); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("locationScore(%v)=%v want %v", tc.distKm, got, tc.want)
		}
	}
}

func TestEnergyClassIndex(t *testing.T) {
	t.Parallel()

	cases := []struct {
		class *string
		want  int
		ok    bool
	}{
		{nil, 0, false},
		{sp(""), 0, false},
		{sp("A"), 0, true},
		{sp("a"), 0, true},
		{sp("A1"), 0, true},
		{sp("B2"), 1, true},
		{sp(" C "), 2, true},
		{sp("G"), 6, true},
		{sp("H"), 0, false},
		{sp("2"), 0, false},
	}
	for _, tc := range cases {
		got, ok := energyClassIndex(tc.class)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("energyClassIndex(%v)=(%d,%v) want (%d,%v)", tc.class, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSimilarityScoreIdentical(t *testing.T) {
	t.Parallel()

	ref := models.DeduplicatedDelStavbe{
		PovrsinaUradna:      fp(70),
		ZadnjaCena:          fp(250000),
		LetoIzgradnjeStavbe: ip(2005),
		EnergijskiRazred:    sp("B2"),
	}
	got := similarityScore(models.KPP, ref, ref, 0)
	if math.Abs(got-100) > 1e-9 {
		t.Fatalf("identical property scored %v, want 100", got)
	}
}

func TestSimilarityScoreBounds(t *testing.T) {
	t.Parallel()

	ref := models.DeduplicatedDelStavbe{
		PovrsinaUradna:      fp(70),
		ZadnjaNajemnina:     fp(900),
		LetoIzgradnjeStavbe: ip(2005),
		EnergijskiRazred:    sp("B"),
	}
	cands := []models.DeduplicatedDelStavbe{
		{},
		{PovrsinaUradna: fp(1), ZadnjaNajemnina: fp(100000), LetoIzgradnjeStavbe: ip(1850), EnergijskiRazred: sp("G")},
		{PovrsinaUporabna: fp(65), ZadnjaNajemnina: fp(850)},
		ref,
	}
	for _, cand := range cands {
		for _, dist := range []float64{0, 0.5, 2.5, 4, 8, 30} {
			got := similarityScore(models.NP, ref, cand, dist)
			if got < 0 || got > 100 {
				t.Fatalf("score %v out of [0,100] for cand %+v dist %v", got, cand, dist)
			}
		}
	}
}

func TestSimilarityScoreMissingReferenceCriteria(t *testing.T) {
	t.Parallel()

	// Reference with no attributes at all still carries the location
	// weight, so a nearby candidate scores full marks.
	ref := models.DeduplicatedDelStavbe{}
	got := similarityScore(models.KPP, ref, models.DeduplicatedDelStavbe{}, 0.5)
	if math.Abs(got-100) > 1e-9 {
		t.Fatalf("location-only score %v, want 100", got)
	}
}

func TestSimilarityScoreCandidateMissingDatum(t *testing.T) {
	t.Parallel()

	ref := models.DeduplicatedDelStavbe{PovrsinaUradna: fp(70)}
	full := models.DeduplicatedDelStavbe{PovrsinaUradna: fp(70)}
	missing := models.DeduplicatedDelStavbe{}

	// The candidate without an area keeps the weight but scores zero on
	// it, so it must rank strictly below the complete candidate.
	a := similarityScore(models.KPP, ref, full, 0.5)
	b := similarityScore(models.KPP, ref, missing, 0.5)
	if b >= a {
		t.Fatalf("missing-area candidate scored %v >= complete candidate %v", b, a)
	}
}

func TestHaversineKm(t *testing.T) {
	t.Parallel()

	// Ljubljana to Maribor is roughly 106 km.
	got := haversineKm(46.0569, 14.5058, 46.5547, 15.6459)
	if got < 95 || got > 115 {
		t.Fatalf("Ljubljana-Maribor distance %v km", got)
	}

	if d := haversineKm(46.05, 14.50, 46.05, 14.50); d != 0 {
		t.Fatalf("zero distance is %v", d)
	}
}
