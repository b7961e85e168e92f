package app

import (
	"context"
	"errors"
	"fmt"

	"adaptive-eval-service/internal/domain"
)

// RecommendationPersister writes resolved recommendations as durable records.
// Inserts carry a dedup key derived from the attempt and target, so replaying
// a job for the same attempt is a no-op instead of a duplicate row.
type RecommendationPersister struct {
	recommendations RecommendationStore
}

func NewRecommendationPersister(recommendations RecommendationStore) *RecommendationPersister {
	return &RecommendationPersister{recommendations: recommendations}
}

// Persist inserts one recommendation row for the resolved action. The
// returned bool reports whether a new row was created; false means the dedup
// key already existed.
func (p *RecommendationPersister) Persist(ctx context.Context, job RecommendationJob, resolved ResolvedRecommendation) (domain.Recommendation, bool, error) {
	rec := domain.Recommendation{
		StudentID:              job.StudentID,
		CourseID:               job.CourseID,
		Type:                   resolved.Type,
		Title:                  resolved.Title,
		Description:            resolved.Description,
		Priority:               resolved.Priority,
		RecommendedContentID:   resolved.ContentID,
		RecommendedContentType: resolved.ContentType,
		ActionURL:              resolved.ActionURL,
		DedupKey:               DedupKey(job, resolved.Target),
	}

	inserted, err := p.recommendations.InsertRecommendation(ctx, rec)
	if errors.Is(err, domain.ErrDuplicateRecommendation) {
		return domain.Recommendation{}, false, nil
	}
	if err != nil {
		return domain.Recommendation{}, false, fmt.Errorf("insert recommendation: %w", err)
	}
	return inserted, true, nil
}

// DedupKey identifies one (student, evaluation, attempt, target) combination.
func DedupKey(job RecommendationJob, target string) string {
	return job.StudentID + ":" + job.EvaluationID + ":" + job.AttemptID + ":" + target
}
