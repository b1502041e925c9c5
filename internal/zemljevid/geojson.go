package zemljevid

import "nepremicnine-backend/internal/models"

// Minimal GeoJSON shapes; only Point geometries are ever emitted.

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string   `json:"type"`
	Geometry   Geometry `json:"geometry"`
	Properties any      `json:"properties"`
}

type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

func NewFeatureCollection(features []Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

func pointFeature(lng, lat float64, props any) Feature {
	return Feature{
		Type:       "Feature",
		Geometry:   Geometry{Type: "Point", Coordinates: [2]float64{lng, lat}},
		Properties: props,
	}
}

// IndividualProperties is the property block of a single-property pin;
// the full deduplicated row is inlined.
type IndividualProperties struct {
	Type string `json:"type"`
	models.DeduplicatedDelStavbe
}

// ClusterProperties is the property block of a multi-property pin.
type ClusterProperties struct {
	Type            string  `json:"type"`
	ClusterType     string  `json:"cluster_type"`
	ClusterID       string  `json:"cluster_id"`
	PointCount      int     `json:"point_count"`
	DeduplicatedIDs []int64 `json:"deduplicated_ids"`
}

func individualFeature(d models.DeduplicatedDelStavbe) Feature {
	return pointFeature(d.Lng, d.Lat, IndividualProperties{
		Type:                  "individual",
		DeduplicatedDelStavbe: d,
	})
}
