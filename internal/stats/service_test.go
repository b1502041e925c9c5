package stats

import (
	"testing"

	"nepremicnine-backend/internal/models"
)

func TestNormalizeRegion(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Ljubljana", "LJUBLJANA"},
		{"  Maribor ", "MARIBOR"},
		{"Šmarje pri Jelšah", "SMARJE PRI JELSAH"},
		{"ČRNOMELJ", "CRNOMELJ"},
		{"Žužemberk", "ZUZEMBERK"},
		{"slovenija", "SLOVENIJA"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeRegion(tc.in); got != tc.want {
			t.Fatalf("NormalizeRegion(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func row(tipPosla, vrsta, tipObdobja string, leto *int) models.StatistikaCacheRow {
	return models.StatistikaCacheRow{
		TipRegije:         "obcina",
		ImeRegije:         "LJUBLJANA",
		TipPosla:          tipPosla,
		VrstaNepremicnine: vrsta,
		TipObdobja:        tipObdobja,
		Leto:              leto,
	}
}

func TestFullStatsCellRouting(t *testing.T) {
	t.Parallel()

	full := &FullStats{}
	cases := []struct {
		tipPosla, vrsta string
		want            *KindStats
	}{
		{"prodaja", "stanovanje", &full.Sale.Apartment},
		{"prodaja", "hisa", &full.Sale.House},
		{"najem", "stanovanje", &full.Rent.Apartment},
		{"najem", "hisa", &full.Rent.House},
		{"prodaja", "parcela", nil},
		{"menjava", "hisa", nil},
	}
	for _, tc := range cases {
		if got := full.cell(tc.tipPosla, tc.vrsta); got != tc.want {
			t.Fatalf("cell(%q,%q)=%p want %p", tc.tipPosla, tc.vrsta, got, tc.want)
		}
	}
}

func TestFullStatsGrouping(t *testing.T) {
	t.Parallel()

	y2024, y2025 := 2024, 2025
	rows := []models.StatistikaCacheRow{
		row("prodaja", "stanovanje", "letno", &y2025),
		row("prodaja", "stanovanje", "letno", &y2024),
		row("prodaja", "stanovanje", "zadnjih12m", nil),
		row("najem", "hisa", "zadnjih12m", nil),
		row("prodaja", "parcela", "letno", &y2025), // outside the skeleton, dropped
	}

	full := buildFullStats(rows)

	if len(full.Sale.Apartment.Yearly) != 2 {
		t.Fatalf("sale apartment yearly rows %d", len(full.Sale.Apartment.Yearly))
	}
	if full.Sale.Apartment.Last12m == nil {
		t.Fatal("sale apartment last12m missing")
	}
	if full.Rent.House.Last12m == nil || len(full.Rent.House.Yearly) != 0 {
		t.Fatalf("rent house cell %+v", full.Rent.House)
	}
	if full.Sale.House.Last12m != nil || len(full.Sale.House.Yearly) != 0 {
		t.Fatalf("sale house cell should be empty, got %+v", full.Sale.House)
	}
}
