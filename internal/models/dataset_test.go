package models

import "testing"

func TestDatasetByCode(t *testing.T) {
	t.Parallel()

	np, err := DatasetByCode("np")
	if err != nil || np.Code != "np" || !np.IsRental() {
		t.Fatalf("DatasetByCode(np)=%+v err=%v", np, err)
	}
	kpp, err := DatasetByCode("kpp")
	if err != nil || kpp.Code != "kpp" || kpp.IsRental() {
		t.Fatalf("DatasetByCode(kpp)=%+v err=%v", kpp, err)
	}
	for _, bad := range []string{"", "vsi", "NP", "sales"} {
		if _, err := DatasetByCode(bad); err == nil {
			t.Fatalf("DatasetByCode(%q) expected error", bad)
		}
	}
}

func TestDatasetTableNames(t *testing.T) {
	t.Parallel()

	if got := NP.StagingPosel(); got != "staging.np_posel" {
		t.Fatalf("StagingPosel=%q", got)
	}
	if got := KPP.CoreDelStavbe(); got != "core.kpp_del_stavbe" {
		t.Fatalf("CoreDelStavbe=%q", got)
	}
	if got := NP.Deduplicated(); got != "core.np_del_stavbe_deduplicated" {
		t.Fatalf("Deduplicated=%q", got)
	}
}

func TestStagingColumns(t *testing.T) {
	t.Parallel()

	for _, table := range []string{"sifranti", "np_posel", "np_del_stavbe", "kpp_posel", "kpp_del_stavbe"} {
		cols := StagingColumns(table)
		if len(cols) == 0 {
			t.Fatalf("StagingColumns(%q) empty", table)
		}
		seen := make(map[string]bool, len(cols))
		for _, c := range cols {
			if seen[c] {
				t.Fatalf("StagingColumns(%q) duplicate column %q", table, c)
			}
			seen[c] = true
		}
		if !seen["id_posla"] && table != "sifranti" {
			t.Fatalf("StagingColumns(%q) missing id_posla", table)
		}
	}
	if StagingColumns("nope") != nil {
		t.Fatal("unknown table should return nil")
	}
}
