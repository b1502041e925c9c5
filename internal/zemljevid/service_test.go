package zemljevid

import (
	"math"
	"testing"

	"nepremicnine-backend/internal/models"
)

func TestResolution(t *testing.T) {
	t.Parallel()

	cases := []struct {
		zoom float64
		want float64
	}{
		{12, 0.01},
		{13, 0.005},
		{14, 0.0025},
		{11, 0.02},
		{10, 0.04},
	}
	for _, tc := range cases {
		if got := Resolution(tc.zoom); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("Resolution(%v)=%v want %v", tc.zoom, got, tc.want)
		}
	}

	// Zooming in must always shrink the cell.
	for zoom := 6.0; zoom < 14.0; zoom += 0.5 {
		if Resolution(zoom+0.5) >= Resolution(zoom) {
			t.Fatalf("Resolution not decreasing at zoom %v", zoom)
		}
	}
}

func TestParseClusterID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		id   string
		want BuildingKey
	}{
		{"b_LJUBLJANA_1725_100", BuildingKey{"LJUBLJANA", 1725, 100}},
		{"b_NOVO_MESTO_1456_7", BuildingKey{"NOVO_MESTO", 1456, 7}},
		{"b_SMARJE_PRI_JELSAH_1200_42", BuildingKey{"SMARJE_PRI_JELSAH", 1200, 42}},
		{"b__99_1", BuildingKey{"", 99, 1}},
	}
	for _, tc := range cases {
		got, err := ParseClusterID(tc.id)
		if err != nil {
			t.Fatalf("ParseClusterID(%q) error: %v", tc.id, err)
		}
		if got != tc.want {
			t.Fatalf("ParseClusterID(%q)=%+v want %+v", tc.id, got, tc.want)
		}
	}
}

func TestParseClusterIDRejects(t *testing.T) {
	t.Parallel()

	bad := []string{
		"",
		"d_LJUBLJANA_3_5",
		"c_LJUBLJANA_1725_100",
		"b_1725_100",
		"b_LJUBLJANA_abc_100",
		"b_LJUBLJANA_1725_xyz",
	}
	for _, id := range bad {
		if _, err := ParseClusterID(id); err == nil {
			t.Fatalf("ParseClusterID(%q) expected error", id)
		}
	}
}

func ljubljana() *string {
	s := "LJUBLJANA"
	return &s
}

func TestGroupByBuilding(t *testing.T) {
	t.Parallel()

	rows := []models.DeduplicatedDelStavbe{
		{ID: 1, SifraKo: 1725, StevilkaStavbe: 10, Obcina: ljubljana(), Lng: 14.50, Lat: 46.05},
		{ID: 2, SifraKo: 1725, StevilkaStavbe: 10, Obcina: ljubljana(), Lng: 14.52, Lat: 46.07},
		{ID: 3, SifraKo: 1725, StevilkaStavbe: 11, Obcina: ljubljana(), Lng: 14.60, Lat: 46.10},
	}

	features := groupByBuilding(rows)
	if len(features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(features))
	}

	cluster, ok := features[0].Properties.(ClusterProperties)
	if !ok {
		t.Fatalf("first feature is %T, want ClusterProperties", features[0].Properties)
	}
	if cluster.ClusterID != "b_LJUBLJANA_1725_10" {
		t.Fatalf("cluster id %q", cluster.ClusterID)
	}
	if cluster.PointCount != 2 || len(cluster.DeduplicatedIDs) != 2 {
		t.Fatalf("cluster count %d ids %v", cluster.PointCount, cluster.DeduplicatedIDs)
	}
	if cluster.DeduplicatedIDs[0] != 1 || cluster.DeduplicatedIDs[1] != 2 {
		t.Fatalf("cluster ids not sorted: %v", cluster.DeduplicatedIDs)
	}

	// Centroid is the member mean.
	wantLng, wantLat := (14.50+14.52)/2, (46.05+46.07)/2
	got := features[0].Geometry.Coordinates
	if math.Abs(got[0]-wantLng) > 1e-9 || math.Abs(got[1]-wantLat) > 1e-9 {
		t.Fatalf("cluster centroid %v want [%v %v]", got, wantLng, wantLat)
	}

	single, ok := features[1].Properties.(IndividualProperties)
	if !ok {
		t.Fatalf("second feature is %T, want IndividualProperties", features[1].Properties)
	}
	if single.Type != "individual" || single.ID != 3 {
		t.Fatalf("individual feature %+v", single)
	}
}

func TestGroupByDistanceConservesPoints(t *testing.T) {
	t.Parallel()

	var rows []models.DeduplicatedDelStavbe
	for i := 0; i < 20; i++ {
		rows = append(rows, models.DeduplicatedDelStavbe{
			ID:     int64(i + 1),
			Obcina: ljubljana(),
			Lng:    14.5 + float64(i%4)*0.003,
			Lat:    46.0 + float64(i/4)*0.003,
		})
	}

	features := groupByDistance(rows, Resolution(12))

	total := 0
	for _, f := range features {
		switch p := f.Properties.(type) {
		case ClusterProperties:
			if p.ClusterType != "distance" {
				t.Fatalf("cluster type %q", p.ClusterType)
			}
			total += p.PointCount
		case IndividualProperties:
			total++
		default:
			t.Fatalf("unexpected properties %T", p)
		}
	}
	if total != len(rows) {
		t.Fatalf("grouping lost points: %d of %d", total, len(rows))
	}
}

func TestGroupOrderIsStable(t *testing.T) {
	t.Parallel()

	rows := []models.DeduplicatedDelStavbe{
		{ID: 5, SifraKo: 2, StevilkaStavbe: 1, Obcina: ljubljana()},
		{ID: 6, SifraKo: 1, StevilkaStavbe: 1, Obcina: ljubljana()},
		{ID: 7, SifraKo: 2, StevilkaStavbe: 1, Obcina: ljubljana()},
	}
	groups := collectGroups(rows, func(d models.DeduplicatedDelStavbe) string {
		return buildingClusterID(regionOf(d), d.SifraKo, d.StevilkaStavbe)
	})
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].key != "b_LJUBLJANA_2_1" || groups[1].key != "b_LJUBLJANA_1_1" {
		t.Fatalf("group order changed: %q, %q", groups[0].key, groups[1].key)
	}
	if len(groups[0].members) != 2 {
		t.Fatalf("first group has %d members", len(groups[0].members))
	}
}
