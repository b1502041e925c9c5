// Package zemljevid turns deduplicated property rows into zoom-adaptive
// map pins: one pin per building when zoomed in, grid clusters when
// zoomed out.
package zemljevid

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"nepremicnine-backend/internal/models"
	"nepremicnine-backend/internal/repository"
)

// buildingZoom is the threshold above which pins follow cadastral
// building identity instead of grid cells.
const buildingZoom = 14.5

// DefaultYearMin is applied when the map query carries no year filter;
// the default view shows fresh activity only.
const DefaultYearMin = 2025

// ErrBadCluster marks malformed or non-expandable cluster ids.
var ErrBadCluster = errors.New("invalid cluster id")

type Service struct {
	repo *repository.Repository
}

func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// Resolution is the grid cell size in degrees for the distance regime:
// 0.01 at zoom 12, halving with every zoom step in.
func Resolution(zoom float64) float64 {
	return 0.01 * math.Pow(2, 12-zoom)
}

// GetMapTile loads the filtered rows intersecting the bbox and groups
// them into individual and cluster features.
func (s *Service) GetMapTile(ctx context.Context, ds models.Dataset, bbox models.BBox, zoom float64, f models.MapFilters) (FeatureCollection, error) {
	if f.YearMin == nil {
		y := DefaultYearMin
		f.YearMin = &y
	}

	rows, err := s.repo.GetMapRows(ctx, ds, bbox, f)
	if err != nil {
		return FeatureCollection{}, err
	}

	if zoom >= buildingZoom {
		return NewFeatureCollection(groupByBuilding(rows)), nil
	}
	return NewFeatureCollection(groupByDistance(rows, Resolution(zoom))), nil
}

type group struct {
	key     string
	members []models.DeduplicatedDelStavbe
}

// collectGroups buckets rows by key, keeping first-seen key order stable
// for deterministic output.
func collectGroups(rows []models.DeduplicatedDelStavbe, keyFn func(models.DeduplicatedDelStavbe) string) []group {
	index := make(map[string]int)
	var groups []group
	for _, row := range rows {
		key := keyFn(row)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, group{key: key})
		}
		groups[i].members = append(groups[i].members, row)
	}
	return groups
}

func emit(groups []group, clusterType string) []Feature {
	features := make([]Feature, 0, len(groups))
	for _, g := range groups {
		if len(g.members) == 1 {
			features = append(features, individualFeature(g.members[0]))
			continue
		}

		var sumLng, sumLat float64
		ids := make([]int64, 0, len(g.members))
		for _, m := range g.members {
			sumLng += m.Lng
			sumLat += m.Lat
			ids = append(ids, m.ID)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		n := float64(len(g.members))
		features = append(features, pointFeature(sumLng/n, sumLat/n, ClusterProperties{
			Type:            "cluster",
			ClusterType:     clusterType,
			ClusterID:       g.key,
			PointCount:      len(g.members),
			DeduplicatedIDs: ids,
		}))
	}
	return features
}

func groupByBuilding(rows []models.DeduplicatedDelStavbe) []Feature {
	groups := collectGroups(rows, func(d models.DeduplicatedDelStavbe) string {
		return buildingClusterID(regionOf(d), d.SifraKo, d.StevilkaStavbe)
	})
	return emit(groups, "building")
}

func groupByDistance(rows []models.DeduplicatedDelStavbe, resolution float64) []Feature {
	groups := collectGroups(rows, func(d models.DeduplicatedDelStavbe) string {
		cx := int(math.Floor(d.Lng / resolution))
		cy := int(math.Floor(d.Lat / resolution))
		return fmt.Sprintf("d_%s_%d_%d", regionOf(d), cx, cy)
	})
	return emit(groups, "distance")
}

func regionOf(d models.DeduplicatedDelStavbe) string {
	if d.Obcina != nil {
		return *d.Obcina
	}
	return ""
}

func buildingClusterID(obcina string, sifraKo, stevilkaStavbe int) string {
	return fmt.Sprintf("b_%s_%d_%d", obcina, sifraKo, stevilkaStavbe)
}

// BuildingKey identifies one building cluster.
type BuildingKey struct {
	Obcina         string
	SifraKo        int
	StevilkaStavbe int
}

// ParseClusterID decodes a building cluster id. Municipality names may
// contain underscores, so the numeric components are taken from the
// right. Distance ids are not expandable and are rejected.
func ParseClusterID(id string) (BuildingKey, error) {
	if strings.HasPrefix(id, "d_") {
		return BuildingKey{}, fmt.Errorf("%w: distance clusters cannot be expanded", ErrBadCluster)
	}
	if !strings.HasPrefix(id, "b_") {
		return BuildingKey{}, fmt.Errorf("%w: %q", ErrBadCluster, id)
	}

	parts := strings.Split(id[2:], "_")
	if len(parts) < 3 {
		return BuildingKey{}, fmt.Errorf("%w: %q", ErrBadCluster, id)
	}

	stevilkaStavbe, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return BuildingKey{}, fmt.Errorf("%w: %q", ErrBadCluster, id)
	}
	sifraKo, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return BuildingKey{}, fmt.Errorf("%w: %q", ErrBadCluster, id)
	}

	return BuildingKey{
		Obcina:         strings.Join(parts[:len(parts)-2], "_"),
		SifraKo:        sifraKo,
		StevilkaStavbe: stevilkaStavbe,
	}, nil
}

// ClusterInfo summarizes a building-cluster expansion.
type ClusterInfo struct {
	ClusterID  string `json:"cluster_id"`
	TotalCount int64  `json:"total_count"`
	Returned   int    `json:"returned"`
	Skipped    int64  `json:"skipped"`
}

// BuildingClusterResult is the expansion payload: the individual features
// of one building plus the filter bookkeeping block.
type BuildingClusterResult struct {
	Type        string      `json:"type"`
	Features    []Feature   `json:"features"`
	ClusterInfo ClusterInfo `json:"cluster_info"`
}

// GetBuildingCluster expands one building cluster into its individual
// features, applying the same filters as the map tile.
func (s *Service) GetBuildingCluster(ctx context.Context, ds models.Dataset, key BuildingKey, f models.MapFilters) (*BuildingClusterResult, error) {
	if f.YearMin == nil {
		y := DefaultYearMin
		f.YearMin = &y
	}

	members, err := s.repo.GetBuildingMembers(ctx, ds, key.Obcina, key.SifraKo, key.StevilkaStavbe, f)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountBuildingMembers(ctx, ds, key.Obcina, key.SifraKo, key.StevilkaStavbe)
	if err != nil {
		return nil, err
	}

	features := make([]Feature, 0, len(members))
	for _, m := range members {
		features = append(features, individualFeature(m))
	}

	return &BuildingClusterResult{
		Type:     "FeatureCollection",
		Features: features,
		ClusterInfo: ClusterInfo{
			ClusterID:  buildingClusterID(key.Obcina, key.SifraKo, key.StevilkaStavbe),
			TotalCount: total,
			Returned:   len(members),
			Skipped:    total - int64(len(members)),
		},
	}, nil
}
