package models

import (
	"fmt"
	"strconv"
	"strings"
)

// BBox is a WGS-84 bounding box in (west, south, east, north) order.
type BBox struct {
	West  float64
	South float64
	East  float64
	North float64
}

// ParseBBox parses the "w,s,e,n" query form.
func ParseBBox(s string) (BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BBox{}, fmt.Errorf("bbox must be four comma-separated numbers, got %q", s)
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BBox{}, fmt.Errorf("bbox component %d: %w", i, err)
		}
		vals[i] = v
	}
	b := BBox{West: vals[0], South: vals[1], East: vals[2], North: vals[3]}
	if b.West >= b.East || b.South >= b.North {
		return BBox{}, fmt.Errorf("bbox %q is empty", s)
	}
	return b, nil
}

// MapFilters narrows deduplicated rows before clustering. Nil means the
// filter is not applied. YearMin is special-cased by the caller: when the
// query omits filter_leto the map defaults to the current activity year.
type MapFilters struct {
	YearMin  *int
	PriceMin *float64
	PriceMax *float64
	AreaMin  *float64
	AreaMax  *float64
}
