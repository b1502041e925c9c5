// Package scheduler runs the weekly full refresh: re-ingest the two most
// recent register years, pull the certificate register, rebuild the
// deduplicated tables and refresh statistics.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"nepremicnine-backend/internal/dedup"
	"nepremicnine-backend/internal/ingester"
	"nepremicnine-backend/internal/jobs"
	"nepremicnine-backend/internal/models"
	"nepremicnine-backend/internal/stats"

	"github.com/robfig/cron/v3"
)

// cronSpec fires Fridays at 20:00 local time; the registers publish
// weekly updates before the weekend.
const cronSpec = "0 20 * * 5"

type Scheduler struct {
	cron       *cron.Cron
	queue      *jobs.Queue
	ingest     *ingester.Service
	energetska *ingester.EnergetskaService
	dedup      *dedup.Service
	stats      *stats.Service
	now        func() time.Time
}

func New(queue *jobs.Queue, ingest *ingester.Service, energetska *ingester.EnergetskaService, dedupSvc *dedup.Service, statsSvc *stats.Service) (*Scheduler, error) {
	loc, err := time.LoadLocation("Europe/Ljubljana")
	if err != nil {
		return nil, fmt.Errorf("load scheduler timezone: %w", err)
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		queue:      queue,
		ingest:     ingest,
		energetska: energetska,
		dedup:      dedupSvc,
		stats:      statsSvc,
		now:        func() time.Time { return time.Now().In(loc) },
	}, nil
}

// Start registers the weekly job and launches the cron loop. The loop
// stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(cronSpec, func() {
		s.RunWeekly(ctx)
	})
	if err != nil {
		return fmt.Errorf("register weekly job: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] weekly refresh registered (%s, Europe/Ljubljana)", cronSpec)

	go func() {
		<-ctx.Done()
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
	}()
	return nil
}

// RunWeekly executes one full refresh pass. Every step is attempted even
// when an earlier one fails; the next weekly pass re-converges. Each step
// runs as a queue job under the same exclusive keys the API handlers
// use, so a weekly pass and an operator-triggered job on the same data
// can never overlap: whichever starts second sees a key conflict.
func (s *Scheduler) RunWeekly(ctx context.Context) {
	started := s.now()
	log.Printf("[scheduler] weekly refresh starting")

	thisYear := started.Year()
	years := []int{thisYear - 1, thisYear}
	for _, ds := range []models.Dataset{models.KPP, models.NP} {
		name := fmt.Sprintf("ingestion %s %d-%d", ds.Code, years[0], years[len(years)-1])
		s.runStep(ctx, name, []string{jobs.DatasetKey(ds.Code)}, func(ctx context.Context) error {
			var firstErr error
			for _, year := range years {
				if err := s.ingest.RunIngestion(ctx, ds, year); err != nil {
					log.Printf("[scheduler] ingestion %s %d failed: %v", ds.Code, year, err)
					if firstErr == nil {
						firstErr = fmt.Errorf("year %d: %w", year, err)
					}
				}
			}
			return firstErr
		})
	}

	s.runStep(ctx, "certificate ingestion", []string{jobs.CertificatesKey}, func(ctx context.Context) error {
		return s.energetska.RunIngestion(ctx, "")
	})

	dedupKeys := []string{jobs.DerivedKey}
	for _, ds := range models.AllDatasets() {
		dedupKeys = append(dedupKeys, jobs.DatasetKey(ds.Code))
	}
	s.runStep(ctx, "deduplication vsi", dedupKeys, func(ctx context.Context) error {
		return s.dedup.BuildAllDeduplicated(ctx, models.AllDatasets())
	})

	s.runStep(ctx, "statistics refresh", []string{jobs.DerivedKey}, func(ctx context.Context) error {
		return s.stats.RefreshAll(ctx)
	})

	log.Printf("[scheduler] weekly refresh finished in %s", time.Since(started).Round(time.Second))
}

// runStep executes one weekly step through the job queue and waits for
// it. A key conflict means an operator job already covers that work; the
// step is skipped and the next weekly pass picks it up.
func (s *Scheduler) runStep(ctx context.Context, name string, keys []string, run func(ctx context.Context) error) {
	switch err := s.queue.Run(ctx, name, keys, run); {
	case errors.Is(err, jobs.ErrConflict):
		log.Printf("[scheduler] %s skipped: %v", name, err)
	case err != nil:
		log.Printf("[scheduler] %s failed: %v", name, err)
	}
}
