package queue

import (
	"context"
	"log"
	"sync"

	"adaptive-eval-service/internal/app"
)

// Handler processes one recommendation job.
type Handler func(ctx context.Context, job app.RecommendationJob) error

// MemoryQueue is the in-process job queue: a buffered channel drained by a
// single worker goroutine. Jobs enqueued after Close are dropped with a log
// line, mirroring the fire-and-forget contract.
type MemoryQueue struct {
	jobs    chan app.RecommendationJob
	handler Handler

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewMemoryQueue(handler Handler, buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = 64
	}
	q := &MemoryQueue{
		jobs:    make(chan app.RecommendationJob, buffer),
		handler: handler,
		done:    make(chan struct{}),
	}
	go q.work()
	return q
}

// Enqueue hands a job to the worker. It blocks only when the buffer is full,
// and gives up when ctx is done. The mutex is held across the send so Close
// cannot close the channel between the closed check and the send; producers
// serialize on it, which is fine for an in-process fallback.
func (q *MemoryQueue) Enqueue(ctx context.Context, job app.RecommendationJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		log.Printf("queue closed, dropping job for attempt %s", job.AttemptID)
		return nil
	}

	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs and waits for the worker to drain the buffer.
func (q *MemoryQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	<-q.done
}

func (q *MemoryQueue) work() {
	defer close(q.done)
	for job := range q.jobs {
		if err := q.handler(context.Background(), job); err != nil {
			log.Printf("recommendation job for attempt %s failed: %v", job.AttemptID, err)
		}
	}
}
