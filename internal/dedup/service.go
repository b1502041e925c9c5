// Package dedup rebuilds the canonical one-row-per-property tables from
// the full core transaction history.
package dedup

import (
	"context"
	"fmt"
	"log"

	"nepremicnine-backend/internal/models"
	"nepremicnine-backend/internal/repository"
)

type Service struct {
	repo *repository.Repository
}

func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// BuildDeduplicated rebuilds one dataset's deduplicated table and logs
// the input/output verification numbers. Verification failures are never
// fatal.
func (s *Service) BuildDeduplicated(ctx context.Context, ds models.Dataset) error {
	log.Printf("[dedup] %s: rebuilding", ds.Code)

	output, err := s.repo.RebuildDeduplicated(ctx, ds)
	if err != nil {
		return fmt.Errorf("deduplicate %s: %w", ds.Code, err)
	}

	input, err := s.repo.CountCoreDelStavbe(ctx, ds)
	if err != nil {
		log.Printf("[dedup] %s: verification count failed: %v", ds.Code, err)
		return nil
	}

	if input == 0 {
		log.Printf("[dedup] %s: no core rows, deduplicated table is empty", ds.Code)
		return nil
	}
	ratio := float64(input-output) / float64(input)
	log.Printf("[dedup] %s: %d source rows -> %d properties (collapsed %.1f%%)",
		ds.Code, input, output, ratio*100)
	if output > input {
		log.Printf("[dedup] %s: WARNING: more deduplicated rows than source rows", ds.Code)
	}
	return nil
}

// BuildAllDeduplicated rebuilds every given dataset, then attaches energy
// certificates in a single pass. The attach runs after all rebuilds so
// every row gets its certificates regardless of dataset order; its
// failure is logged but does not fail the batch.
func (s *Service) BuildAllDeduplicated(ctx context.Context, datasets []models.Dataset) error {
	for _, ds := range datasets {
		if err := s.BuildDeduplicated(ctx, ds); err != nil {
			return err
		}
	}

	if err := s.repo.AttachEnergetskeIzkaznice(ctx); err != nil {
		log.Printf("[dedup] certificate attach failed: %v", err)
		return nil
	}
	log.Printf("[dedup] certificates attached to deduplicated tables")
	return nil
}
