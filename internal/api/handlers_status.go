package api

import (
	"net/http"
	"strings"

	"nepremicnine-backend/internal/jobs"
	"nepremicnine-backend/internal/models"
)

// jobsByPrefix narrows the queue snapshot to one subsystem's jobs.
func (s *Server) jobsByPrefix(prefix string) []jobs.Status {
	out := []jobs.Status{}
	for _, st := range s.queue.Snapshot() {
		if strings.HasPrefix(st.Name, prefix) {
			out = append(out, st)
		}
	}
	return out
}

// statusDatasets resolves the optional data_type query: one dataset or,
// when absent, both.
func statusDatasets(r *http.Request) ([]models.Dataset, error) {
	code := r.URL.Query().Get("data_type")
	if code == "" {
		return models.AllDatasets(), nil
	}
	ds, err := models.DatasetByCode(code)
	if err != nil {
		return nil, err
	}
	return []models.Dataset{ds}, nil
}

func (s *Server) handleIngestStatus(w http.ResponseWriter, r *http.Request) {
	datasets, err := statusDatasets(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx := r.Context()

	perDataset := make(map[string]any)
	for _, ds := range datasets {
		staged := make(map[string]int64)
		for _, table := range []string{ds.Code + "_posel", ds.Code + "_del_stavbe"} {
			n, err := s.repo.StagingCount(ctx, table)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			staged[table] = n
		}
		core, err := s.repo.CountCoreDelStavbe(ctx, ds)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		perDataset[ds.Code] = map[string]any{
			"staging":        staged,
			"core_del_stavb": core,
		}
	}

	writeAPIResponse(w, map[string]any{
		"datasets": perDataset,
		"jobs":     s.jobsByPrefix("ingestion"),
	})
}

func (s *Server) handleDeduplicationStatus(w http.ResponseWriter, r *http.Request) {
	datasets, err := statusDatasets(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx := r.Context()

	perDataset := make(map[string]any)
	for _, ds := range datasets {
		stats, err := s.repo.GetDeduplicatedStats(ctx, ds)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		perDataset[ds.Code] = stats
	}

	writeAPIResponse(w, map[string]any{
		"datasets": perDataset,
		"jobs":     s.jobsByPrefix("deduplication"),
	})
}

func (s *Server) handleEnergetskeIzkazniceStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.repo.CountEnergetskeIzkaznice(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAPIResponse(w, map[string]any{
		"certificates": count,
		"jobs":         s.jobsByPrefix("certificate"),
	})
}

func (s *Server) handleStatistikeStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.stats.Status(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeAPIResponse(w, map[string]any{
		"cache": status,
		"jobs":  s.jobsByPrefix("statistics"),
	})
}
