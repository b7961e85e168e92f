package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"adaptive-eval-service/internal/domain"
)

// RecommendationStore is the in-memory implementation of
// app.RecommendationStore. The dedup key index makes replayed pipeline runs
// no-ops.
type RecommendationStore struct {
	mu      sync.RWMutex
	rows    []domain.Recommendation
	byDedup map[string]struct{}
}

func NewRecommendationStore() *RecommendationStore {
	return &RecommendationStore{byDedup: make(map[string]struct{})}
}

func (s *RecommendationStore) InsertRecommendation(_ context.Context, rec domain.Recommendation) (domain.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.DedupKey != "" {
		if _, exists := s.byDedup[rec.DedupKey]; exists {
			return domain.Recommendation{}, domain.ErrDuplicateRecommendation
		}
		s.byDedup[rec.DedupKey] = struct{}{}
	}

	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now()
	s.rows = append(s.rows, rec)
	return rec, nil
}

func (s *RecommendationStore) ListRecommendations(_ context.Context, studentID, courseID string) ([]domain.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Recommendation
	for _, rec := range s.rows {
		if rec.StudentID != studentID {
			continue
		}
		if courseID != "" && rec.CourseID != courseID {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
