package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleStatistikeVse(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	full, err := s.stats.GetFull(r.Context(), vars["regionKind"], vars["region"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAPIResponse(w, full)
}

func (s *Server) handleStatistikeSplosne(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	general, err := s.stats.GetGeneral(r.Context(), vars["regionKind"], vars["region"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAPIResponse(w, general)
}

func (s *Server) handleStatistikeVseObcine(w http.ResponseWriter, r *http.Request) {
	includeCadastral := r.URL.Query().Get("vkljuci_katastrske") == "true"

	activity, err := s.stats.GetAllMunicipalitiesLast12m(r.Context(), includeCadastral)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAPIResponse(w, activity)
}
