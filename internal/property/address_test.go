package property

import "testing"

func TestFormatAddress(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                                     string
		ulica, hisnaStevilka, dodatekHs, naselje *string
		obcina                                   *string
		want                                     string
	}{
		{
			name:          "full address",
			ulica:         sp("Slovenska cesta"),
			hisnaStevilka: sp("15"),
			naselje:       sp("Ljubljana"),
			obcina:        sp("LJUBLJANA"),
			want:          "Slovenska cesta 15, LJUBLJANA",
		},
		{
			name:          "number suffix",
			ulica:         sp("Trubarjeva"),
			hisnaStevilka: sp("7"),
			dodatekHs:     sp("a"),
			naselje:       sp("Celje"),
			obcina:        sp("Mesto Celje"),
			want:          "Trubarjeva 7a, Celje, Mesto Celje",
		},
		{
			name:    "no street",
			naselje: sp("Bled"),
			obcina:  sp("BLED"),
			want:    "BLED",
		},
		{
			name:    "settlement differs",
			naselje: sp("Zgornje Gorje"),
			obcina:  sp("GORJE"),
			want:    "Zgornje Gorje, GORJE",
		},
		{
			name:  "street without number",
			ulica: sp("Cankarjeva"),
			want:  "Cankarjeva",
		},
		{
			name: "everything missing",
			want: "",
		},
	}

	for _, tc := range cases {
		got := FormatAddress(tc.ulica, tc.hisnaStevilka, tc.dodatekHs, tc.naselje, tc.obcina)
		if got != tc.want {
			t.Fatalf("%s: FormatAddress=%q want %q", tc.name, got, tc.want)
		}
	}
}
