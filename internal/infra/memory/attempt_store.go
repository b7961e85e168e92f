package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"adaptive-eval-service/internal/domain"
)

// AttemptStore is the in-memory implementation of app.AttemptStore. The
// attempt number is assigned and the max-attempts limit checked under one
// lock, so concurrent submissions cannot both slip past the limit.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]domain.EvaluationAttempt
	byKey    map[attemptKey][]domain.EvaluationAttempt
}

type attemptKey struct {
	evaluationID string
	studentID    string
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[string]domain.EvaluationAttempt),
		byKey:    make(map[attemptKey][]domain.EvaluationAttempt),
	}
}

func (s *AttemptStore) InsertAttempt(_ context.Context, attempt domain.EvaluationAttempt, maxAttempts int) (domain.EvaluationAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := attemptKey{evaluationID: attempt.EvaluationID, studentID: attempt.StudentID}
	prior := s.byKey[key]
	if maxAttempts > 0 && len(prior) >= maxAttempts {
		return domain.EvaluationAttempt{}, domain.ErrMaxAttemptsReached
	}

	attempt.ID = uuid.NewString()
	attempt.AttemptNumber = len(prior) + 1
	s.attempts[attempt.ID] = attempt
	s.byKey[key] = append(prior, attempt)
	return attempt, nil
}

func (s *AttemptStore) GetAttempt(_ context.Context, attemptID string) (domain.EvaluationAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.EvaluationAttempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *AttemptStore) ListAttempts(_ context.Context, evaluationID, studentID string) ([]domain.EvaluationAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.byKey[attemptKey{evaluationID: evaluationID, studentID: studentID}]
	out := make([]domain.EvaluationAttempt, len(history))
	copy(out, history)
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNumber < out[j].AttemptNumber })
	return out, nil
}
