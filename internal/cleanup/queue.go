// Package cleanup queues guest documents for deferred removal and flushes
// the queue on a cron schedule.
package cleanup

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/KartikLabhshetwar/FolioSign/internal/documents"
)

// Queue collects guest document ids for batch removal. Enqueueing is
// idempotent; a flush drains the queue and reports per-document results.
type Queue struct {
	system documents.System
	logger *slog.Logger

	mu      sync.Mutex
	pending map[uuid.UUID]struct{}
	order   []uuid.UUID
}

// NewQueue creates a cleanup queue over the document system.
func NewQueue(system documents.System, logger *slog.Logger) *Queue {
	return &Queue{
		system:  system,
		logger:  logger,
		pending: make(map[uuid.UUID]struct{}),
	}
}

// Enqueue marks a document for removal on the next flush. Duplicate ids
// collapse into a single entry.
func (q *Queue) Enqueue(ids ...uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, id := range ids {
		if _, ok := q.pending[id]; ok {
			continue
		}
		q.pending[id] = struct{}{}
		q.order = append(q.order, id)
	}
}

// Dequeue withdraws a document from the pending batch, typically because
// it gained an owner after being queued.
func (q *Queue) Dequeue(id uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.pending[id]; !ok {
		return
	}
	delete(q.pending, id)

	for i, queued := range q.order {
		if queued == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of queued documents.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// Flush drains the queue and removes queued guest documents. Owned
// documents pass through untouched; their results report the reason. Ids
// are processed in enqueue order.
func (q *Queue) Flush(ctx context.Context) ([]documents.CleanupResult, error) {
	q.mu.Lock()
	ids := q.order
	q.order = nil
	q.pending = make(map[uuid.UUID]struct{})
	q.mu.Unlock()

	if len(ids) == 0 {
		return nil, nil
	}

	results, err := q.system.Cleanup(ctx, ids)
	if err != nil {
		// Requeue so a transient failure does not drop the batch.
		q.Enqueue(ids...)
		return nil, err
	}

	deleted := 0
	for _, r := range results {
		if r.Deleted {
			deleted++
		}
	}
	q.logger.Info("cleanup flush complete", "requested", len(ids), "deleted", deleted)

	return results, nil
}

// Scheduler flushes the queue on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	queue  *Queue
	logger *slog.Logger
}

// NewScheduler wires the queue flush onto the given cron expression.
func NewScheduler(queue *Queue, schedule string, logger *slog.Logger) (*Scheduler, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		if _, err := queue.Flush(context.Background()); err != nil {
			logger.Error("scheduled cleanup failed", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}

	return &Scheduler{cron: c, queue: queue, logger: logger}, nil
}

// Start begins scheduled flushing.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for any running flush to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()

	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
