package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// Similar-listing defaults; both are overridable per request.
const (
	defaultSimilarLimit  = 5
	defaultSimilarRadius = 5.0
)

func (s *Server) handlePropertyDetails(w http.ResponseWriter, r *http.Request) {
	ds, err := datasetParam(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	feature, err := s.property.GetDetails(r.Context(), ds, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeRaw(w, feature)
}

func (s *Server) handlePropertySimilar(w http.ResponseWriter, r *http.Request) {
	ds, err := datasetParam(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	limit := defaultSimilarLimit
	if v, err := queryInt(r, "limit"); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid limit")
		return
	} else if v != nil {
		if *v <= 0 {
			writeAPIError(w, http.StatusBadRequest, "limit must be positive")
			return
		}
		limit = *v
	}

	radiusKm := defaultSimilarRadius
	if v, err := queryFloat(r, "radius_km"); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid radius_km")
		return
	} else if v != nil {
		if *v <= 0 {
			writeAPIError(w, http.StatusBadRequest, "radius_km must be positive")
			return
		}
		radiusKm = *v
	}

	similar, err := s.property.GetSimilar(r.Context(), ds, id, limit, radiusKm)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAPIResponse(w, similar)
}
