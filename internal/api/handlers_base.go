package api

import (
	"net/http"

	"nepremicnine-backend/internal/models"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeRaw(w, map[string]string{
		"service": "nepremicnine-backend",
		"commit":  BuildCommit,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		writeAPIError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeRaw(w, map[string]string{"status": "ok"})
}

// handleStatus reports deduplicated-table sizes, statistics cache
// freshness and the job backlog in one probe.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	datasets := make(map[string]any)
	for _, ds := range models.AllDatasets() {
		stats, err := s.repo.GetDeduplicatedStats(ctx, ds)
		if err != nil {
			datasets[ds.Code] = map[string]string{"error": err.Error()}
			continue
		}
		datasets[ds.Code] = stats
	}

	statistike, err := s.stats.Status(ctx)
	if err != nil {
		statistike = map[string]any{"error": err.Error()}
	}

	writeAPIResponse(w, map[string]any{
		"datasets":   datasets,
		"statistike": statistike,
		"jobs":       s.queue.Snapshot(),
	})
}
