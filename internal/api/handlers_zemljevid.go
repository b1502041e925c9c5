package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"nepremicnine-backend/internal/models"
	"nepremicnine-backend/internal/zemljevid"
)

func (s *Server) handlePropertiesGeoJSON(w http.ResponseWriter, r *http.Request) {
	ds, err := datasetParam(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	bbox, err := models.ParseBBox(r.URL.Query().Get("bbox"))
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	zoom, err := strconv.ParseFloat(r.URL.Query().Get("zoom"), 64)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid zoom")
		return
	}

	filters, err := mapFilters(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid filter value")
		return
	}

	fc, err := s.zemljevid.GetMapTile(r.Context(), ds, bbox, zoom, filters)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeRaw(w, fc)
}

func (s *Server) handleClusterProperties(w http.ResponseWriter, r *http.Request) {
	ds, err := datasetParam(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, err := zemljevid.ParseClusterID(mux.Vars(r)["clusterID"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filters, err := mapFilters(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid filter value")
		return
	}

	result, err := s.zemljevid.GetBuildingCluster(r.Context(), ds, key, filters)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeRaw(w, result)
}
