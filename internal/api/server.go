package api

import (
	"context"
	"net/http"
	"strings"

	"nepremicnine-backend/internal/config"
	"nepremicnine-backend/internal/dedup"
	"nepremicnine-backend/internal/ingester"
	"nepremicnine-backend/internal/jobs"
	"nepremicnine-backend/internal/property"
	"nepremicnine-backend/internal/repository"
	"nepremicnine-backend/internal/stats"
	"nepremicnine-backend/internal/zemljevid"

	"github.com/gorilla/mux"
)

// BuildCommit is set by main to the git commit hash baked in at build time.
var BuildCommit = "dev"

type Server struct {
	repo       *repository.Repository
	ingest     *ingester.Service
	energetska *ingester.EnergetskaService
	dedup      *dedup.Service
	stats      *stats.Service
	zemljevid  *zemljevid.Service
	property   *property.Service
	queue      *jobs.Queue

	corsOrigins map[string]bool
	httpServer  *http.Server
}

type Deps struct {
	Repo       *repository.Repository
	Ingest     *ingester.Service
	Energetska *ingester.EnergetskaService
	Dedup      *dedup.Service
	Stats      *stats.Service
	Zemljevid  *zemljevid.Service
	Property   *property.Service
	Queue      *jobs.Queue
}

func NewServer(cfg *config.Config, d Deps) *Server {
	s := &Server{
		repo:        d.Repo,
		ingest:      d.Ingest,
		energetska:  d.Energetska,
		dedup:       d.Dedup,
		stats:       d.Stats,
		zemljevid:   d.Zemljevid,
		property:    d.Property,
		queue:       d.Queue,
		corsOrigins: make(map[string]bool),
	}
	for _, origin := range cfg.CORSOrigins {
		s.corsOrigins[strings.TrimRight(origin, "/")] = true
	}

	r := mux.NewRouter()
	r.Use(s.commonMiddleware)
	r.Use(rateLimitMiddleware)

	registerBaseRoutes(r, s)
	registerIngestRoutes(r, s)
	registerStatistikeRoutes(r, s)
	registerZemljevidRoutes(r, s)

	s.httpServer = &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: r,
	}
	return s
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// commonMiddleware sets the JSON content type and answers CORS for the
// configured origins. Credentials are allowed, so the origin is echoed
// back instead of a wildcard.
func (s *Server) commonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if origin := r.Header.Get("Origin"); origin != "" && s.corsOrigins[strings.TrimRight(origin, "/")] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Vary", "Origin")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
