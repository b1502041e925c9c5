package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"nepremicnine-backend/internal/jobs"
	"nepremicnine-backend/internal/models"
	"nepremicnine-backend/internal/repository"
	"nepremicnine-backend/internal/stats"
	"nepremicnine-backend/internal/zemljevid"
)

type apiEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeAPIResponse(w http.ResponseWriter, data any) {
	json.NewEncoder(w).Encode(apiEnvelope{Status: "success", Data: data})
}

func writeAccepted(w http.ResponseWriter, message string) {
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(apiEnvelope{Status: "success", Message: message})
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiEnvelope{Status: "error", Message: message})
}

// writeRaw encodes payloads that are themselves a wire format (GeoJSON),
// without the envelope.
func writeRaw(w http.ResponseWriter, payload any) {
	json.NewEncoder(w).Encode(payload)
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeAPIError(w, http.StatusNotFound, "not found")
	case errors.Is(err, stats.ErrBadRegionKind),
		errors.Is(err, zemljevid.ErrBadCluster):
		writeAPIError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, jobs.ErrConflict):
		writeAPIError(w, http.StatusConflict, err.Error())
	case errors.Is(err, jobs.ErrQueueFull):
		writeAPIError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeAPIError(w, http.StatusInternalServerError, "internal error")
	}
}

// datasetParam resolves the data_source/data_type query value; both
// names are accepted since the map endpoints predate the ingest ones.
func datasetParam(r *http.Request) (models.Dataset, error) {
	code := r.URL.Query().Get("data_source")
	if code == "" {
		code = r.URL.Query().Get("data_type")
	}
	return models.DatasetByCode(code)
}

func queryInt(r *http.Request, name string) (*int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func queryFloat(r *http.Request, name string) (*float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// mapFilters parses the shared map filter set. Names follow the public
// query surface: filter_leto, min/max_cena, min/max_povrsina.
func mapFilters(r *http.Request) (models.MapFilters, error) {
	var f models.MapFilters
	var err error
	if f.YearMin, err = queryInt(r, "filter_leto"); err != nil {
		return f, err
	}
	if f.PriceMin, err = queryFloat(r, "min_cena"); err != nil {
		return f, err
	}
	if f.PriceMax, err = queryFloat(r, "max_cena"); err != nil {
		return f, err
	}
	if f.AreaMin, err = queryFloat(r, "min_povrsina"); err != nil {
		return f, err
	}
	if f.AreaMax, err = queryFloat(r, "max_povrsina"); err != nil {
		return f, err
	}
	return f, nil
}
