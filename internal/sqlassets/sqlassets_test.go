package sqlassets

import (
	"strings"
	"testing"
)

// Every template the services execute by name must be embedded.
var referenced = []string{
	"np_posel_transform.sql",
	"np_del_stavbe_transform.sql",
	"kpp_posel_transform.sql",
	"kpp_del_stavbe_transform.sql",
	"np_del_stavbe_deduplication.sql",
	"kpp_del_stavbe_deduplication.sql",
	"dodaj_ei_deduplication.sql",
	"ei_insert.sql",
	"stats/create_mv_prodajne_stats.sql",
	"stats/create_mv_prodajne_stats_12m.sql",
	"stats/create_mv_najemne_stats.sql",
	"stats/create_mv_najemne_stats_12m.sql",
	"stats/populate_statistike_cache.sql",
	"stats/populate_statistike_cache_12m.sql",
}

func TestReferencedAssetsExist(t *testing.T) {
	t.Parallel()

	for _, name := range referenced {
		q, err := Query(name)
		if err != nil {
			t.Fatalf("Query(%q): %v", name, err)
		}
		if strings.TrimSpace(q) == "" {
			t.Fatalf("asset %q is empty", name)
		}
	}
}

func TestNamesCoversReferenced(t *testing.T) {
	t.Parallel()

	names := Names()
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, name := range referenced {
		if !have[name] {
			t.Fatalf("Names() missing %q (have %v)", name, names)
		}
	}
	if len(names) != len(referenced) {
		t.Fatalf("embedded asset set drifted: %d embedded, %d referenced", len(names), len(referenced))
	}
}

func TestMustQueryPanicsOnMissing(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("MustQuery on a missing asset should panic")
		}
	}()
	MustQuery("no_such_asset.sql")
}
