package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"time"

	"nepremicnine-backend/internal/api"
	"nepremicnine-backend/internal/config"
	"nepremicnine-backend/internal/dedup"
	"nepremicnine-backend/internal/ingester"
	"nepremicnine-backend/internal/jobs"
	"nepremicnine-backend/internal/property"
	"nepremicnine-backend/internal/repository"
	"nepremicnine-backend/internal/scheduler"
	"nepremicnine-backend/internal/stats"
	"nepremicnine-backend/internal/zemljevid"
)

// BuildCommit is set at build time via -ldflags.
var BuildCommit = "dev"

func main() {
	// 1. Config
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	log.Println("Initializing nepremicnine backend...")
	log.Printf("DB: %s", redactDatabaseURL(cfg.DatabaseURL))
	log.Printf("API Port: %s", cfg.APIPort)

	// 2. Dependencies
	repo, err := repository.NewRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer repo.Close()

	// 2a. Auto-Migration (skip with SKIP_MIGRATION=true for API-only containers)
	if os.Getenv("SKIP_MIGRATION") == "true" {
		log.Println("Database Migration SKIPPED (SKIP_MIGRATION=true)")
	} else {
		log.Println("Running Database Migration...")
		if err := repo.Migrate("schema.sql"); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Database Migration Complete.")
	}

	// 3. Services
	ingestSvc := ingester.NewService(repo)
	energetskaSvc := ingester.NewEnergetskaService(repo, cfg.EIBaseURL)
	dedupSvc := dedup.NewService(repo)
	statsSvc := stats.NewService(repo)
	zemljevidSvc := zemljevid.NewService(repo)
	propertySvc := property.NewService(repo)

	queue := jobs.NewQueue(4, 32)

	api.BuildCommit = BuildCommit
	apiServer := api.NewServer(cfg, api.Deps{
		Repo:       repo,
		Ingest:     ingestSvc,
		Energetska: energetskaSvc,
		Dedup:      dedupSvc,
		Stats:      statsSvc,
		Zemljevid:  zemljevidSvc,
		Property:   propertySvc,
		Queue:      queue,
	})

	// 4. Run
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	queue.Start(ctx)

	if cfg.SchedulerEnabled {
		sched, err := scheduler.New(queue, ingestSvc, energetskaSvc, dedupSvc, statsSvc)
		if err != nil {
			log.Fatalf("Failed to build scheduler: %v", err)
		}
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	} else {
		log.Println("Scheduler is DISABLED (SCHEDULER_ENABLED=false)")
	}

	go func() {
		log.Printf("Starting API Server on :%s", cfg.APIPort)
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("API shutdown error: %v", err)
	}
	queue.Wait()
}

func redactDatabaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" {
		if u.User != nil {
			user := u.User.Username()
			if user == "" {
				user = "user"
			}
			u.User = url.UserPassword(user, "****")
		}
		// Avoid leaking secrets embedded in query params; keep only scheme/host/path for debugging.
		u.RawQuery = ""
		return u.String()
	}

	// Best-effort fallback for malformed/DSN-like URLs.
	re := regexp.MustCompile(`(?i)(postgres(?:ql)?://[^:/?#]+):([^@]+)@`)
	if re.MatchString(raw) {
		return re.ReplaceAllString(raw, `$1:****@`)
	}
	re = regexp.MustCompile(`(?i)(password=)(\S+)`)
	return re.ReplaceAllString(raw, `$1****`)
}
