package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"adaptive-eval-service/internal/app"
)

func TestMemoryQueueDeliversJobs(t *testing.T) {
	var mu sync.Mutex
	var got []app.RecommendationJob
	handled := make(chan struct{}, 10)

	q := NewMemoryQueue(func(_ context.Context, job app.RecommendationJob) error {
		mu.Lock()
		got = append(got, job)
		mu.Unlock()
		handled <- struct{}{}
		return nil
	}, 4)
	defer q.Close()

	job := app.RecommendationJob{
		StudentID:    "student-1",
		EvaluationID: "eval-1",
		AttemptID:    "attempt-1",
	}
	if err := q.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatalf("job was not handled")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].AttemptID != "attempt-1" {
		t.Fatalf("unexpected handled jobs %+v", got)
	}
}

func TestMemoryQueueCloseDrainsBuffer(t *testing.T) {
	var mu sync.Mutex
	handled := 0

	q := NewMemoryQueue(func(_ context.Context, _ app.RecommendationJob) error {
		mu.Lock()
		handled++
		mu.Unlock()
		return nil
	}, 8)

	for i := 0; i < 5; i++ {
		if err := q.Enqueue(context.Background(), app.RecommendationJob{AttemptID: "a"}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	// Close waits for the worker, so every buffered job runs first.
	q.Close()

	mu.Lock()
	defer mu.Unlock()
	if handled != 5 {
		t.Fatalf("expected 5 handled jobs after close, got %d", handled)
	}
}

func TestMemoryQueueDropsAfterClose(t *testing.T) {
	q := NewMemoryQueue(func(_ context.Context, _ app.RecommendationJob) error {
		t.Errorf("handler must not run for dropped jobs")
		return nil
	}, 1)
	q.Close()

	if err := q.Enqueue(context.Background(), app.RecommendationJob{AttemptID: "late"}); err != nil {
		t.Fatalf("enqueue after close: %v", err)
	}
}

func TestMemoryQueueCloseDuringBlockedEnqueue(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan struct{}, 4)
	q := NewMemoryQueue(func(_ context.Context, _ app.RecommendationJob) error {
		started <- struct{}{}
		<-gate
		return nil
	}, 1)

	// First job occupies the stalled worker, second fills the buffer.
	_ = q.Enqueue(context.Background(), app.RecommendationJob{AttemptID: "working"})
	<-started
	_ = q.Enqueue(context.Background(), app.RecommendationJob{AttemptID: "buffered"})

	enqueued := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				enqueued <- errors.New("enqueue panicked")
			}
		}()
		enqueued <- q.Enqueue(context.Background(), app.RecommendationJob{AttemptID: "blocked"})
	}()

	closed := make(chan struct{})
	go func() {
		q.Close()
		close(closed)
	}()

	// Let both goroutines reach their blocking points, then unstall the
	// worker. Whatever order the race resolves in, the blocked enqueue must
	// either deliver or drop, never hit a closed channel.
	time.Sleep(20 * time.Millisecond)
	close(gate)

	select {
	case err := <-enqueued:
		if err != nil {
			t.Fatalf("enqueue during close: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("enqueue did not return")
	}
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("close did not return")
	}
}

func TestMemoryQueueHandlerErrorsDoNotStopWorker(t *testing.T) {
	handled := make(chan string, 2)

	q := NewMemoryQueue(func(_ context.Context, job app.RecommendationJob) error {
		handled <- job.AttemptID
		if job.AttemptID == "bad" {
			return errors.New("boom")
		}
		return nil
	}, 4)
	defer q.Close()

	_ = q.Enqueue(context.Background(), app.RecommendationJob{AttemptID: "bad"})
	_ = q.Enqueue(context.Background(), app.RecommendationJob{AttemptID: "good"})

	for _, want := range []string{"bad", "good"} {
		select {
		case got := <-handled:
			if got != want {
				t.Fatalf("expected %s, got %s", want, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("worker stopped before handling %s", want)
		}
	}
}
