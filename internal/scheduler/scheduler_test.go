package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"nepremicnine-backend/internal/jobs"
)

func startedQueue(t *testing.T) *jobs.Queue {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	q := jobs.NewQueue(2, 8)
	q.Start(ctx)
	return q
}

func TestRunStepHoldsExclusiveKeys(t *testing.T) {
	t.Parallel()

	q := startedQueue(t)
	s := &Scheduler{queue: q, now: time.Now}

	entered := make(chan struct{})
	release := make(chan struct{})
	stepDone := make(chan struct{})
	go func() {
		defer close(stepDone)
		s.runStep(context.Background(), "ingestion np 2024-2025", []string{jobs.DatasetKey("np")}, func(ctx context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("step never started")
	}

	// An operator request on the same dataset is rejected while the
	// weekly step runs.
	_, err := q.Enqueue("deduplication np", []string{jobs.DerivedKey, jobs.DatasetKey("np")}, func(ctx context.Context) error { return nil })
	if !errors.Is(err, jobs.ErrConflict) {
		t.Fatalf("expected ErrConflict during weekly step, got %v", err)
	}

	close(release)
	select {
	case <-stepDone:
	case <-time.After(5 * time.Second):
		t.Fatal("step never finished")
	}

	// Key released once the step completes.
	if _, err := q.Enqueue("deduplication np", []string{jobs.DerivedKey, jobs.DatasetKey("np")}, func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("enqueue after step: %v", err)
	}
}

func TestRunStepSkipsOnConflict(t *testing.T) {
	t.Parallel()

	q := startedQueue(t)
	s := &Scheduler{queue: q, now: time.Now}

	// An operator job already holds the dataset key.
	release := make(chan struct{})
	if _, err := q.Enqueue("ingestion kpp 2024-2024", []string{jobs.DatasetKey("kpp")}, func(ctx context.Context) error {
		<-release
		return nil
	}); err != nil {
		t.Fatalf("enqueue operator job: %v", err)
	}
	defer close(release)

	ran := false
	s.runStep(context.Background(), "ingestion kpp 2023-2024", []string{jobs.DatasetKey("kpp")}, func(ctx context.Context) error {
		ran = true
		return nil
	})
	if ran {
		t.Fatal("conflicting weekly step must be skipped, not run")
	}
}

func TestRunStepContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	q := startedQueue(t)
	s := &Scheduler{queue: q, now: time.Now}

	s.runStep(context.Background(), "certificate ingestion", []string{jobs.CertificatesKey}, func(ctx context.Context) error {
		return errors.New("register download failed")
	})

	// A failed step releases its key; the next step on the same key runs.
	ran := false
	s.runStep(context.Background(), "certificate ingestion", []string{jobs.CertificatesKey}, func(ctx context.Context) error {
		ran = true
		return nil
	})
	if !ran {
		t.Fatal("step after failure never ran")
	}
}
