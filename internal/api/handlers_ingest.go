package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"nepremicnine-backend/internal/jobs"
	"nepremicnine-backend/internal/models"
)

// defaultEndYear caps ingestion ranges when end_year is omitted.
const defaultEndYear = 2025

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	ds, err := datasetParam(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	startYear, err := queryInt(r, "start_year")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid start_year")
		return
	}
	endYear, err := queryInt(r, "end_year")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid end_year")
		return
	}

	start := ds.DefaultStartYear
	if startYear != nil {
		start = *startYear
	}
	end := defaultEndYear
	if endYear != nil {
		end = *endYear
	}
	if start > end || start < ds.DefaultStartYear || end > time.Now().Year() {
		writeAPIError(w, http.StatusBadRequest,
			fmt.Sprintf("invalid year range %d-%d for %s", start, end, ds.Code))
		return
	}

	name := fmt.Sprintf("ingestion %s %d-%d", ds.Code, start, end)
	id, err := s.queue.Enqueue(name, []string{jobs.DatasetKey(ds.Code)}, func(ctx context.Context) error {
		for year := start; year <= end; year++ {
			if err := s.ingest.RunIngestion(ctx, ds, year); err != nil {
				return fmt.Errorf("year %d: %w", year, err)
			}
		}
		return nil
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAccepted(w, fmt.Sprintf("%s queued as job %d", name, id))
}

func (s *Server) handleDeduplication(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("data_type")
	if code == "" {
		code = "vsi"
	}

	var datasets []models.Dataset
	switch code {
	case "vsi":
		datasets = models.AllDatasets()
	default:
		ds, err := models.DatasetByCode(code)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, err.Error())
			return
		}
		datasets = []models.Dataset{ds}
	}

	keys := []string{jobs.DerivedKey}
	for _, ds := range datasets {
		keys = append(keys, jobs.DatasetKey(ds.Code))
	}

	name := "deduplication " + code
	id, err := s.queue.Enqueue(name, keys, func(ctx context.Context) error {
		return s.dedup.BuildAllDeduplicated(ctx, datasets)
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAccepted(w, fmt.Sprintf("%s queued as job %d", name, id))
}

func (s *Server) handleEnergetskeIzkaznice(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")

	id, err := s.queue.Enqueue("certificate ingestion", []string{jobs.CertificatesKey}, func(ctx context.Context) error {
		return s.energetska.RunIngestion(ctx, url)
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAccepted(w, fmt.Sprintf("certificate ingestion queued as job %d", id))
}

func (s *Server) handleStatistikePosodobi(w http.ResponseWriter, r *http.Request) {
	id, err := s.queue.Enqueue("statistics refresh", []string{jobs.DerivedKey}, func(ctx context.Context) error {
		return s.stats.RefreshAll(ctx)
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAccepted(w, fmt.Sprintf("statistics refresh queued as job %d", id))
}
