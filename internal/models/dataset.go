package models

import "fmt"

// Dataset is the typed descriptor for one register family. Handlers and
// services pass the descriptor around instead of branching on a raw
// data_type string at every call site.
type Dataset struct {
	// Code is "np" (rentals) or "kpp" (sales); it is also the table prefix.
	Code string

	// MetadataURL is the register endpoint that returns {"url": "..."} for
	// the yearly zip archive.
	MetadataURL string

	// DefaultStartYear is the first year the register carries data for.
	DefaultStartYear int

	// PriceColumn is the deduplicated-table column the price filter and the
	// similarity price criterion target.
	PriceColumn string

	// PriceKey is the JSON property name of the "last price" field.
	PriceKey string

	// ExtraColumn is the dataset-specific attribute cached on deduplicated
	// rows (np: opremljenost, kpp: stevilo_sob).
	ExtraColumn string
}

func (d Dataset) StagingPosel() string     { return "staging." + d.Code + "_posel" }
func (d Dataset) StagingDelStavbe() string { return "staging." + d.Code + "_del_stavbe" }
func (d Dataset) CorePosel() string        { return "core." + d.Code + "_posel" }
func (d Dataset) CoreDelStavbe() string    { return "core." + d.Code + "_del_stavbe" }
func (d Dataset) Deduplicated() string     { return "core." + d.Code + "_del_stavbe_deduplicated" }

func (d Dataset) IsRental() bool { return d.Code == "np" }

var (
	// NP is the rental register (najemni posli).
	NP = Dataset{
		Code:             "np",
		MetadataURL:      "https://ipi.eprostor.gov.si/jgp-service-api/display-views/groups/127/composite-products/322/file",
		DefaultStartYear: 2013,
		PriceColumn:      "zadnja_najemnina",
		PriceKey:         "zadnja_najemnina",
		ExtraColumn:      "opremljenost",
	}

	// KPP is the sale register (kupoprodajni posli).
	KPP = Dataset{
		Code:             "kpp",
		MetadataURL:      "https://ipi.eprostor.gov.si/jgp-service-api/display-views/groups/127/composite-products/321/file",
		DefaultStartYear: 2007,
		PriceColumn:      "zadnja_cena",
		PriceKey:         "zadnja_cena",
		ExtraColumn:      "stevilo_sob",
	}
)

// DatasetByCode resolves a data_source/data_type query value.
func DatasetByCode(code string) (Dataset, error) {
	switch code {
	case "np":
		return NP, nil
	case "kpp":
		return KPP, nil
	default:
		return Dataset{}, fmt.Errorf("unknown dataset %q (want np or kpp)", code)
	}
}

// AllDatasets is the deduplication/scheduler processing order.
func AllDatasets() []Dataset { return []Dataset{NP, KPP} }

// StagingColumns returns the allowed column set of a staging table. CSV
// headers not present here are dropped before the bulk insert so upstream
// column additions do not break staging.
func StagingColumns(table string) []string {
	switch table {
	case "sifranti":
		return []string{"tip_sifranta", "sifra", "opis"}
	case "np_posel":
		return []string{
			"id_posla", "vrsta_posla", "datum_uveljavitve", "datum_sklenitve",
			"najemnina", "vkljuceno_stroski", "vkljuceno_ddv", "stopnja_ddv",
			"datum_zacetka_najemanja", "datum_prenehanja_najemanja",
			"cas_najemanja", "trajanje_najemanja", "datum_zakljucka_najema",
			"opombe", "posredovanje_agencije", "datum_zadnje_spremembe",
			"datum_zadnje_uveljavitve", "vrsta_akta", "trznost_posla",
		}
	case "np_del_stavbe":
		return []string{
			"id_posla", "sifra_ko", "ime_ko", "obcina", "stevilka_stavbe",
			"stevilka_dela_stavbe", "naselje", "ulica", "hisna_stevilka",
			"dodatek_hs", "stev_stanovanja", "vrsta_oddanih_prostorov",
			"opremljenost", "opombe", "leto_izgradnje_stavbe", "dejanska_raba",
			"lega_v_stavbi", "povrsina", "povrsina_uporabna", "prostori",
			"e_centroid", "n_centroid",
		}
	case "kpp_posel":
		return []string{
			"id_posla", "vrsta_posla", "datum_uveljavitve", "datum_sklenitve",
			"cena", "vkljuceno_ddv", "stopnja_ddv", "opombe",
			"posredovanje_agencije", "trznost_posla", "vrsta_akta",
			"datum_zadnje_spremembe", "datum_zadnje_uveljavitve",
		}
	case "kpp_del_stavbe":
		return []string{
			"id_posla", "sifra_ko", "ime_ko", "obcina", "stevilka_stavbe",
			"stevilka_dela_stavbe", "naselje", "ulica", "hisna_stevilka",
			"dodatek_hs", "stev_stanovanja", "vrsta_dela_stavbe",
			"leto_izgradnje_dela_stavbe", "stavba_je_dokoncana",
			"gradbena_faza", "novogradnja", "prodana_povrsina",
			"prodani_delez", "prodana_povrsina_dela_stavbe",
			"prodana_uporabna_povrsina_dela_stavbe", "nadstropje",
			"stevilo_zunanjih_parkirnih_mest", "atrij", "povrsina_atrija",
			"opombe", "dejanska_raba", "lega_v_stavbi", "stevilo_sob",
			"povrsina", "povrsina_uporabna", "prostori", "pogodbena_cena",
			"stopnja_ddv", "e_centroid", "n_centroid",
		}
	default:
		return nil
	}
}
