package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"nepremicnine-backend/internal/jobs"
	"nepremicnine-backend/internal/repository"
	"nepremicnine-backend/internal/stats"
	"nepremicnine-backend/internal/zemljevid"
)

func TestWriteServiceErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{repository.ErrNotFound, http.StatusNotFound},
		{stats.ErrBadRegionKind, http.StatusBadRequest},
		{zemljevid.ErrBadCluster, http.StatusBadRequest},
		{&jobs.ConflictError{Key: "dataset:np", JobID: 7}, http.StatusConflict},
		{jobs.ErrQueueFull, http.StatusServiceUnavailable},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeServiceError(rec, tc.err)
		if rec.Code != tc.want {
			t.Fatalf("writeServiceError(%v) status %d want %d", tc.err, rec.Code, tc.want)
		}
		var env apiEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("response body not json: %v", err)
		}
		if env.Status != "error" || env.Message == "" {
			t.Fatalf("envelope %+v", env)
		}
	}
}

func TestWriteAccepted(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeAccepted(rec, "ingestion np 2025-2025 queued as job 3")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status %d", rec.Code)
	}
	var env apiEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("body: %v", err)
	}
	if env.Status != "success" || env.Message == "" {
		t.Fatalf("envelope %+v", env)
	}
}

func TestDatasetParam(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/properties/geojson?data_source=np", nil)
	ds, err := datasetParam(r)
	if err != nil || ds.Code != "np" {
		t.Fatalf("data_source=np gave %+v err=%v", ds, err)
	}

	// Legacy parameter name still accepted.
	r = httptest.NewRequest("GET", "/properties/geojson?data_type=kpp", nil)
	ds, err = datasetParam(r)
	if err != nil || ds.Code != "kpp" {
		t.Fatalf("data_type=kpp gave %+v err=%v", ds, err)
	}

	r = httptest.NewRequest("GET", "/properties/geojson", nil)
	if _, err := datasetParam(r); err == nil {
		t.Fatal("missing dataset should error")
	}
}

func TestMapFilters(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/properties/geojson?filter_leto=2020&min_cena=100&max_povrsina=85.5", nil)
	f, err := mapFilters(r)
	if err != nil {
		t.Fatalf("mapFilters: %v", err)
	}
	if f.YearMin == nil || *f.YearMin != 2020 {
		t.Fatalf("YearMin %v", f.YearMin)
	}
	if f.PriceMin == nil || *f.PriceMin != 100 {
		t.Fatalf("PriceMin %v", f.PriceMin)
	}
	if f.PriceMax != nil || f.AreaMin != nil {
		t.Fatalf("unset filters should stay nil: %+v", f)
	}
	if f.AreaMax == nil || *f.AreaMax != 85.5 {
		t.Fatalf("AreaMax %v", f.AreaMax)
	}

	r = httptest.NewRequest("GET", "/properties/geojson?filter_leto=abc", nil)
	if _, err := mapFilters(r); err == nil {
		t.Fatal("invalid filter_leto should error")
	}
}
