package api

import "github.com/gorilla/mux"

func registerBaseRoutes(r *mux.Router, s *Server) {
	r.HandleFunc("/", s.handleRoot).Methods("GET", "OPTIONS")
	r.HandleFunc("/health", s.handleHealth).Methods("GET", "OPTIONS")
	r.HandleFunc("/status", s.handleStatus).Methods("GET", "OPTIONS")
	r.HandleFunc("/ws/jobs", s.handleJobsWebSocket).Methods("GET", "OPTIONS")
}

func registerIngestRoutes(r *mux.Router, s *Server) {
	r.HandleFunc("/api/deli-stavb/ingest", s.handleIngest).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/deli-stavb/status", s.handleIngestStatus).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/deduplication/ingest", s.handleDeduplication).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/deduplication/status", s.handleDeduplicationStatus).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/energetske-izkaznice/ingest", s.handleEnergetskeIzkaznice).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/energetske-izkaznice/status", s.handleEnergetskeIzkazniceStatus).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/statistike/posodobi", s.handleStatistikePosodobi).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/statistike/status", s.handleStatistikeStatus).Methods("GET", "OPTIONS")
}

func registerStatistikeRoutes(r *mux.Router, s *Server) {
	r.HandleFunc("/api/statistike/vse/{regionKind}/{region}", s.handleStatistikeVse).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/statistike/splosne/{regionKind}/{region}", s.handleStatistikeSplosne).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/statistike/vse-obcine-posli-zadnjih-12m", s.handleStatistikeVseObcine).Methods("GET", "OPTIONS")
}

func registerZemljevidRoutes(r *mux.Router, s *Server) {
	r.HandleFunc("/properties/geojson", s.handlePropertiesGeoJSON).Methods("GET", "OPTIONS")
	r.HandleFunc("/property-details/{id}", s.handlePropertyDetails).Methods("GET", "OPTIONS")
	r.HandleFunc("/cluster/{clusterID}/properties", s.handleClusterProperties).Methods("GET", "OPTIONS")
	r.HandleFunc("/property/{id}/similar", s.handlePropertySimilar).Methods("GET", "OPTIONS")
}
