package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func waitForState(t *testing.T, events <-chan Status, id int64, state string) Status {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case st := <-events:
			if st.ID == id && st.State == state {
				return st
			}
		case <-deadline:
			t.Fatalf("timed out waiting for job %d to reach %q", id, state)
		}
	}
}

func TestQueueKeyConflict(t *testing.T) {
	t.Parallel()

	q := NewQueue(1, 4)
	// No workers started: the job stays queued and its keys stay held.
	id, err := q.Enqueue("first", []string{"dataset:np"}, func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("enqueue first: %v", err)
	}

	_, err = q.Enqueue("second", []string{"dataset:np", "derived"}, func(ctx context.Context) error { return nil })
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %T", err)
	}
	if conflict.Key != "dataset:np" || conflict.JobID != id {
		t.Fatalf("conflict %+v, want key dataset:np held by %d", conflict, id)
	}

	// A disjoint key set is accepted.
	if _, err := q.Enqueue("third", []string{"dataset:kpp"}, func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("enqueue disjoint: %v", err)
	}
}

func TestQueueFull(t *testing.T) {
	t.Parallel()

	q := NewQueue(1, 2)
	for i, key := range []string{"a", "b"} {
		if _, err := q.Enqueue("job", []string{key}, func(ctx context.Context) error { return nil }); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if _, err := q.Enqueue("job", []string{"c"}, func(ctx context.Context) error { return nil }); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestQueueLifecycle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewQueue(1, 4)
	q.Start(ctx)

	events, unsubscribe := q.Subscribe()
	defer unsubscribe()

	release := make(chan struct{})
	id, err := q.Enqueue("ingestion np 2025-2025", []string{"dataset:np"}, func(ctx context.Context) error {
		<-release
		return nil
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	running := waitForState(t, events, id, StateRunning)
	if running.StartedAt == nil {
		t.Fatal("running status carries no StartedAt")
	}

	// The key is held while the job runs.
	if _, err := q.Enqueue("again", []string{"dataset:np"}, func(ctx context.Context) error { return nil }); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict while running, got %v", err)
	}

	close(release)
	done := waitForState(t, events, id, StateDone)
	if done.FinishedAt == nil || done.Error != "" {
		t.Fatalf("done status %+v", done)
	}

	// Key released after completion.
	if _, err := q.Enqueue("after", []string{"dataset:np"}, func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("enqueue after completion: %v", err)
	}
}

func TestQueueRun(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewQueue(1, 4)
	q.Start(ctx)

	ran := false
	if err := q.Run(ctx, "statistics refresh", []string{"derived"}, func(ctx context.Context) error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ran {
		t.Fatal("job never executed")
	}

	boom := errors.New("materialized view rebuild failed")
	if err := q.Run(ctx, "statistics refresh", []string{"derived"}, func(ctx context.Context) error {
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("run error %v, want %v", err, boom)
	}

	// Key released after the failed run.
	if err := q.Run(ctx, "statistics refresh", []string{"derived"}, func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("run after failure: %v", err)
	}
}

func TestQueueRunConflict(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewQueue(1, 4)
	q.Start(ctx)

	events, unsubscribe := q.Subscribe()
	defer unsubscribe()

	release := make(chan struct{})
	id, err := q.Enqueue("deduplication np", []string{"dataset:np", "derived"}, func(ctx context.Context) error {
		<-release
		return nil
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	waitForState(t, events, id, StateRunning)

	ran := false
	if err := q.Run(ctx, "ingestion np 2025-2025", []string{"dataset:np"}, func(ctx context.Context) error {
		ran = true
		return nil
	}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if ran {
		t.Fatal("conflicting run must not execute")
	}
	close(release)
}

func TestQueueEnqueueConcurrentAtCapacity(t *testing.T) {
	t.Parallel()

	// No workers: the backlog never drains, so the two capacity slots
	// are the only ones ever granted. Every call must return promptly,
	// either with an id or with ErrQueueFull.
	q := NewQueue(1, 2)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := q.Enqueue("job", []string{fmt.Sprintf("key-%d", i)}, func(ctx context.Context) error { return nil })
			results <- err
		}(i)
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("an enqueue blocked instead of returning")
	}
	close(results)

	accepted, full := 0, 0
	for err := range results {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, ErrQueueFull):
			full++
		default:
			t.Fatalf("unexpected enqueue error: %v", err)
		}
	}
	if accepted != 2 || full != attempts-2 {
		t.Fatalf("accepted %d, full %d, want 2 and %d", accepted, full, attempts-2)
	}
}

func TestQueueFailedJobStatus(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewQueue(1, 4)
	q.Start(ctx)

	events, unsubscribe := q.Subscribe()
	defer unsubscribe()

	boom := errors.New("remote register unreachable")
	id, err := q.Enqueue("ingestion kpp 2024-2024", []string{"dataset:kpp"}, func(ctx context.Context) error {
		return boom
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	failed := waitForState(t, events, id, StateFailed)
	if failed.Error != boom.Error() {
		t.Fatalf("failed status error %q, want %q", failed.Error, boom.Error())
	}

	found := false
	for _, st := range q.Snapshot() {
		if st.ID == id && st.State == StateFailed {
			found = true
		}
	}
	if !found {
		t.Fatal("failed job missing from snapshot")
	}
}
