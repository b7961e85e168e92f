package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"adaptive-eval-service/internal/domain"
)

func TestAttemptStoreNumbersPerStudent(t *testing.T) {
	store := NewAttemptStore()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		attempt, err := store.InsertAttempt(ctx, domain.EvaluationAttempt{
			EvaluationID: "eval-1",
			StudentID:    "student-1",
		}, 0)
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		if attempt.AttemptNumber != i {
			t.Fatalf("expected attempt number %d, got %d", i, attempt.AttemptNumber)
		}
		if attempt.ID == "" {
			t.Fatalf("expected a generated id")
		}
	}

	// Another student on the same evaluation starts at 1.
	attempt, err := store.InsertAttempt(ctx, domain.EvaluationAttempt{
		EvaluationID: "eval-1",
		StudentID:    "student-2",
	}, 0)
	if err != nil {
		t.Fatalf("insert for second student: %v", err)
	}
	if attempt.AttemptNumber != 1 {
		t.Fatalf("expected attempt number 1 for second student, got %d", attempt.AttemptNumber)
	}
}

func TestAttemptStoreEnforcesMaxAttempts(t *testing.T) {
	store := NewAttemptStore()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := store.InsertAttempt(ctx, domain.EvaluationAttempt{
			EvaluationID: "eval-1",
			StudentID:    "student-1",
		}, 2); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	_, err := store.InsertAttempt(ctx, domain.EvaluationAttempt{
		EvaluationID: "eval-1",
		StudentID:    "student-1",
	}, 2)
	if !errors.Is(err, domain.ErrMaxAttemptsReached) {
		t.Fatalf("expected ErrMaxAttemptsReached, got %v", err)
	}
}

func TestAttemptStoreConcurrentInsertsRespectLimit(t *testing.T) {
	store := NewAttemptStore()
	ctx := context.Background()

	const limit = 3
	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.InsertAttempt(ctx, domain.EvaluationAttempt{
				EvaluationID: "eval-1",
				StudentID:    "student-1",
			}, limit)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	accepted := 0
	for err := range errs {
		if err == nil {
			accepted++
		} else if !errors.Is(err, domain.ErrMaxAttemptsReached) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if accepted != limit {
		t.Fatalf("expected exactly %d accepted attempts, got %d", limit, accepted)
	}

	history, err := store.ListAttempts(ctx, "eval-1", "student-1")
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(history) != limit {
		t.Fatalf("expected %d stored attempts, got %d", limit, len(history))
	}
	for i, attempt := range history {
		if attempt.AttemptNumber != i+1 {
			t.Fatalf("expected dense attempt numbers, got %d at index %d", attempt.AttemptNumber, i)
		}
	}
}

func TestAttemptStoreGetAttempt(t *testing.T) {
	store := NewAttemptStore()
	ctx := context.Background()

	inserted, err := store.InsertAttempt(ctx, domain.EvaluationAttempt{
		EvaluationID: "eval-1",
		StudentID:    "student-1",
		Score:        2,
	}, 0)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.GetAttempt(ctx, inserted.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Score != 2 {
		t.Fatalf("expected score 2, got %d", got.Score)
	}

	if _, err := store.GetAttempt(ctx, "missing"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}
}
