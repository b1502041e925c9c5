// Package jobs is a bounded background-job queue with exclusive keys.
// API handlers enqueue long-running work (ingestion, deduplication,
// statistics refresh) and return 202; jobs holding overlapping keys are
// rejected instead of queued so the same dataset is never processed
// twice concurrently.
package jobs

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

var (
	// ErrConflict means a queued or running job holds one of the
	// requested exclusive keys.
	ErrConflict = errors.New("conflicting job already queued or running")

	// ErrQueueFull means the backlog is at capacity.
	ErrQueueFull = errors.New("job queue is full")
)

// State of one job through its lifetime.
const (
	StateQueued  = "queued"
	StateRunning = "running"
	StateDone    = "done"
	StateFailed  = "failed"
)

// Status is the observable record of one job.
type Status struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Keys       []string   `json:"keys"`
	State      string     `json:"state"`
	Error      string     `json:"error,omitempty"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type job struct {
	id   int64
	name string
	keys []string
	run  func(ctx context.Context) error
	done chan error
}

// Queue runs jobs on a fixed worker pool. Exclusive keys are held from
// enqueue until the job finishes.
type Queue struct {
	workers int

	mu       sync.Mutex
	held     map[string]int64
	statuses map[int64]*Status
	order    []int64
	nextID   int64

	subscribers map[int64]chan Status
	nextSubID   int64

	jobs chan job
	wg   sync.WaitGroup
}

// historyLimit bounds how many finished jobs stay visible in Snapshot.
const historyLimit = 100

func NewQueue(workers, capacity int) *Queue {
	if workers <= 0 {
		workers = 4
	}
	if capacity <= 0 {
		capacity = 32
	}
	return &Queue{
		workers:     workers,
		held:        make(map[string]int64),
		statuses:    make(map[int64]*Status),
		subscribers: make(map[int64]chan Status),
		jobs:        make(chan job, capacity),
	}
}

// Start launches the worker pool. Workers exit when ctx is cancelled;
// Wait blocks until in-flight jobs have finished.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
}

func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-q.jobs:
			q.transition(j.id, StateRunning, "")
			err := j.run(ctx)

			q.mu.Lock()
			for _, k := range j.keys {
				if q.held[k] == j.id {
					delete(q.held, k)
				}
			}
			q.mu.Unlock()

			if err != nil {
				log.Printf("[jobs] %s (#%d) failed: %v", j.name, j.id, err)
				q.transition(j.id, StateFailed, err.Error())
			} else {
				log.Printf("[jobs] %s (#%d) finished", j.name, j.id)
				q.transition(j.id, StateDone, "")
			}
			// Signalled after the key release above so a waiting caller
			// can immediately enqueue follow-up work on the same keys.
			if j.done != nil {
				j.done <- err
			}
		}
	}
}

// Enqueue adds a job holding the given exclusive keys. It never blocks:
// a key conflict or a full backlog is reported immediately.
func (q *Queue) Enqueue(name string, keys []string, run func(ctx context.Context) error) (int64, error) {
	return q.enqueue(name, keys, run, nil)
}

func (q *Queue) enqueue(name string, keys []string, run func(ctx context.Context) error, done chan error) (int64, error) {
	q.mu.Lock()

	for _, k := range keys {
		if holder, busy := q.held[k]; busy {
			q.mu.Unlock()
			return 0, errorWithHolder(k, holder)
		}
	}
	if len(q.jobs) == cap(q.jobs) {
		q.mu.Unlock()
		return 0, ErrQueueFull
	}

	q.nextID++
	id := q.nextID
	for _, k := range keys {
		q.held[k] = id
	}
	st := &Status{
		ID:         id,
		Name:       name,
		Keys:       keys,
		State:      StateQueued,
		EnqueuedAt: time.Now(),
	}
	q.statuses[id] = st
	q.order = append(q.order, id)
	q.trimHistoryLocked()
	// Send while still holding the lock: the capacity check above and
	// the send must be atomic against racing enqueues, and nothing else
	// sends on the channel, so a verified free slot cannot disappear.
	q.jobs <- job{id: id, name: name, keys: keys, run: run, done: done}
	q.mu.Unlock()

	q.notify(*st)
	log.Printf("[jobs] %s (#%d) queued, keys=%v", name, id, keys)
	return id, nil
}

// Run enqueues a job and blocks until it finishes, returning the job's
// error. Synchronous callers such as the scheduler use it so their work
// holds the same exclusive keys as operator-triggered jobs; a key
// conflict is reported as ErrConflict without running anything. The
// keys are released before Run returns.
func (q *Queue) Run(ctx context.Context, name string, keys []string, run func(ctx context.Context) error) error {
	done := make(chan error, 1)
	if _, err := q.enqueue(name, keys, run, done); err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func errorWithHolder(key string, holder int64) error {
	return &ConflictError{Key: key, JobID: holder}
}

// ConflictError carries which key and job blocked the enqueue.
type ConflictError struct {
	Key   string
	JobID int64
}

func (e *ConflictError) Error() string {
	return "conflicting job already queued or running: key " + e.Key
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

func (q *Queue) transition(id int64, state, errMsg string) {
	q.mu.Lock()
	st, ok := q.statuses[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	now := time.Now()
	st.State = state
	st.Error = errMsg
	switch state {
	case StateRunning:
		st.StartedAt = &now
	case StateDone, StateFailed:
		st.FinishedAt = &now
	}
	snapshot := *st
	q.mu.Unlock()

	q.notify(snapshot)
}

func (q *Queue) trimHistoryLocked() {
	for len(q.order) > historyLimit {
		id := q.order[0]
		if st := q.statuses[id]; st != nil && (st.State == StateQueued || st.State == StateRunning) {
			break
		}
		delete(q.statuses, id)
		q.order = q.order[1:]
	}
}

// Snapshot returns the visible jobs, oldest first.
func (q *Queue) Snapshot() []Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Status, 0, len(q.order))
	for _, id := range q.order {
		if st, ok := q.statuses[id]; ok {
			out = append(out, *st)
		}
	}
	return out
}

// Subscribe registers a status-event channel for the live job stream.
// The returned cancel func must be called to release it. Slow consumers
// drop events instead of blocking the queue.
func (q *Queue) Subscribe() (<-chan Status, func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextSubID++
	id := q.nextSubID
	ch := make(chan Status, 16)
	q.subscribers[id] = ch

	cancel := func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		if c, ok := q.subscribers[id]; ok {
			delete(q.subscribers, id)
			close(c)
		}
	}
	return ch, cancel
}

func (q *Queue) notify(st Status) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, ch := range q.subscribers {
		select {
		case ch <- st:
		default:
		}
	}
}
