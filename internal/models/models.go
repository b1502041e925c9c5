package models

import "time"

// Posel is one transaction (rental contract or purchase deed) from the
// public register. Price fields differ per dataset: Najemnina is set for
// rental deals, Cena for sales.
type Posel struct {
	PoselID               int64      `json:"posel_id"`
	VrstaPosla            *int16     `json:"vrsta_posla"`
	DatumUveljavitve      *time.Time `json:"datum_uveljavitve"`
	DatumSklenitve        *time.Time `json:"datum_sklenitve"`
	Najemnina             *float64   `json:"najemnina,omitempty"`
	Cena                  *float64   `json:"cena,omitempty"`
	VkljucenoStroski      *bool      `json:"vkljuceno_stroski,omitempty"`
	VkljucenoDDV          *bool      `json:"vkljuceno_ddv"`
	StopnjaDDV            *float64   `json:"stopnja_ddv"`
	DatumZacetkaNajemanja *time.Time `json:"datum_zacetka_najemanja,omitempty"`
	DatumPrenehanjaNajema *time.Time `json:"datum_prenehanja_najemanja,omitempty"`
	TrajanjeNajemanja     *int       `json:"trajanje_najemanja,omitempty"`
	Opombe                *string    `json:"opombe"`
	PosredovanjeAgencije  *bool      `json:"posredovanje_agencije"`
	TrznostPosla          *int16     `json:"trznost_posla"`
	VrstaAkta             *int16     `json:"vrsta_akta"`
	DatumZadnjeSpremembe  *time.Time `json:"datum_zadnje_spremembe"`
	Leto                  int        `json:"leto"`
}

// DelStavbe is one transacted building part, linked to exactly one Posel.
type DelStavbe struct {
	DelStavbeID         int64      `json:"del_stavbe_id"`
	PoselID             int64      `json:"posel_id"`
	SifraKo             int        `json:"sifra_ko"`
	ImeKo               *string    `json:"ime_ko"`
	Obcina              *string    `json:"obcina"`
	StevilkaStavbe      *int       `json:"stevilka_stavbe"`
	StevilkaDelaStavbe  *int       `json:"stevilka_dela_stavbe"`
	Naselje             *string    `json:"naselje"`
	Ulica               *string    `json:"ulica"`
	HisnaStevilka       *string    `json:"hisna_stevilka"`
	DodatekHs           *string    `json:"dodatek_hs"`
	StevStanovanja      *int       `json:"stev_stanovanja"`
	Vrsta               *int16     `json:"vrsta"`
	Novogradnja         *int       `json:"novogradnja,omitempty"`
	Opremljenost        *int16     `json:"opremljenost,omitempty"`
	SteviloSob          *int       `json:"stevilo_sob,omitempty"`
	Opombe              *string    `json:"opombe"`
	LetoIzgradnjeStavbe *int       `json:"leto_izgradnje_stavbe"`
	DejanskaRaba        *string    `json:"dejanska_raba"`
	LegaVStavbi         *string    `json:"lega_v_stavbi"`
	Povrsina            *float64   `json:"povrsina"`
	PovrsinaUporabna    *float64   `json:"povrsina_uporabna"`
	Prostori            *string    `json:"prostori"`
	PogodbenaCena       *float64   `json:"pogodbena_cena,omitempty"`
	StopnjaDDV          *float64   `json:"stopnja_ddv,omitempty"`
	Lng                 *float64   `json:"lng"`
	Lat                 *float64   `json:"lat"`
	Leto                int        `json:"leto"`
}

// DeduplicatedDelStavbe is the canonical building-part row. One row per
// natural key (sifra_ko, stevilka_stavbe, stevilka_dela_stavbe,
// dejanska_raba) across all ingested years. The povezani_* arrays are
// first-class fields populated by a single projection query; the cached
// attribute block is copied from the freshest source row's pair.
type DeduplicatedDelStavbe struct {
	ID                 int64  `json:"id"`
	SifraKo            int    `json:"sifra_ko"`
	StevilkaStavbe     int    `json:"stevilka_stavbe"`
	StevilkaDelaStavbe int    `json:"stevilka_dela_stavbe"`
	DejanskaRaba       string `json:"dejanska_raba"`

	PovezaniDelStavbeIDs  []int64 `json:"povezani_del_stavbe_ids"`
	PovezaniPoselIDs      []int64 `json:"povezani_posel_ids"`
	NajnovejsiDelStavbeID int64   `json:"najnovejsi_del_stavbe_id"`

	Obcina              *string  `json:"obcina"`
	Naselje             *string  `json:"naselje"`
	Ulica               *string  `json:"ulica"`
	HisnaStevilka       *string  `json:"hisna_stevilka"`
	DodatekHs           *string  `json:"dodatek_hs"`
	StevStanovanja      *int     `json:"stev_stanovanja"`
	PovrsinaUradna      *float64 `json:"povrsina_uradna"`
	PovrsinaUporabna    *float64 `json:"povrsina_uporabna"`
	LetoIzgradnjeStavbe *int     `json:"leto_izgradnje_stavbe"`
	VrstaNepremicnine   *string  `json:"vrsta_nepremicnine"`

	// Dataset specific extras; only one side is populated per dataset.
	Opremljenost *int16 `json:"opremljenost,omitempty"`
	SteviloSob   *int   `json:"stevilo_sob,omitempty"`

	// "Last" fields come from the deal of najnovejsi_del_stavbe_id.
	ZadnjaNajemnina        *float64 `json:"zadnja_najemnina,omitempty"`
	ZadnjaCena             *float64 `json:"zadnja_cena,omitempty"`
	ZadnjeVkljucenoStroski *bool    `json:"zadnje_vkljuceno_stroski,omitempty"`
	ZadnjeVkljucenoDDV     *bool    `json:"zadnje_vkljuceno_ddv"`
	ZadnjaStopnjaDDV       *float64 `json:"zadnja_stopnja_ddv"`
	ZadnjeLeto             int      `json:"zadnje_leto"`

	EnergetskeIzkaznice []int64 `json:"energetske_izkaznice"`
	EnergijskiRazred    *string `json:"energijski_razred"`

	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// EnergetskaIzkaznica is one issued energy-performance certificate.
type EnergetskaIzkaznica struct {
	ID                         int64      `json:"id"`
	EiID                       string     `json:"ei_id"`
	DatumIzdelave              *time.Time `json:"datum_izdelave"`
	VeljaDo                    *time.Time `json:"velja_do"`
	SifraKo                    *int       `json:"sifra_ko"`
	StevilkaStavbe             *int       `json:"stevilka_stavbe"`
	StevilkaDelaStavbe         *int       `json:"stevilka_dela_stavbe"`
	TipIzkaznice               *string    `json:"tip_izkaznice"`
	PotrebnaToplotaOgrevanje   *float64   `json:"potrebna_toplota_ogrevanje"`
	DovedenaEnergijaDelovanje  *float64   `json:"dovedena_energija_delovanje"`
	CelotnaEnergija            *float64   `json:"celotna_energija"`
	DovedenaElektricnaEnergija *float64   `json:"dovedena_elektricna_energija"`
	PrimarnaEnergija           *float64   `json:"primarna_energija"`
	EmisijeCO2                 *float64   `json:"emisije_co2"`
	KondicioniranaPovrsina     *float64   `json:"kondicionirana_povrsina"`
	EnergijskiRazred           *string    `json:"energijski_razred"`
	EpbdTip                    *string    `json:"epbd_tip"`
}

// StatistikaCacheRow is one precomputed row of the statistics cache.
// tip_regije in {obcina, katastrska_obcina, slovenija},
// tip_posla in {prodaja, najem}, vrsta_nepremicnine in {stanovanje, hisa},
// tip_obdobja in {letno, zadnjih12m}. Leto is nil for zadnjih12m rows.
type StatistikaCacheRow struct {
	TipRegije              string   `json:"tip_regije"`
	ImeRegije              string   `json:"ime_regije"`
	TipPosla               string   `json:"tip_posla"`
	VrstaNepremicnine      string   `json:"vrsta_nepremicnine"`
	TipObdobja             string   `json:"tip_obdobja"`
	Leto                   *int     `json:"leto"`
	PovprecnaCenaM2        *float64 `json:"povprecna_cena_m2"`
	PovprecnaSkupnaCena    *float64 `json:"povprecna_skupna_cena"`
	SteviloPoslov          int64    `json:"stevilo_poslov"`
	AktivnaVLetu           *int64   `json:"aktivna_v_letu"`
	PovprecnaVelikostM2    *float64 `json:"povprecna_velikost_m2"`
	PovprecnaStarostStavbe *float64 `json:"povprecna_starost_stavbe"`
}
