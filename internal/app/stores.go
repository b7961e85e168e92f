package app

import (
	"context"

	"adaptive-eval-service/internal/domain"
)

// EvaluationStore loads evaluation content (from cache/backing store).
type EvaluationStore interface {
	GetEvaluation(ctx context.Context, evaluationID string) (domain.Evaluation, error)
}

// AttemptStore persists and loads graded attempts. InsertAttempt assigns the
// id, timestamp and attempt number server-side, and enforces the max-attempts
// limit atomically with the insert so concurrent submissions cannot exceed it.
type AttemptStore interface {
	InsertAttempt(ctx context.Context, attempt domain.EvaluationAttempt, maxAttempts int) (domain.EvaluationAttempt, error)
	GetAttempt(ctx context.Context, attemptID string) (domain.EvaluationAttempt, error)
	ListAttempts(ctx context.Context, evaluationID, studentID string) ([]domain.EvaluationAttempt, error)
}

// ProgressUpdate carries the optional fields of a module-progress upsert.
type ProgressUpdate struct {
	Status          *domain.ModuleStatus
	DiagnosticLevel *domain.DiagnosticLevel
}

// ModuleProgressStore upserts per-student per-module status rows keyed by
// (student_id, module_id).
type ModuleProgressStore interface {
	UpsertProgress(ctx context.Context, studentID, moduleID string, update ProgressUpdate) error
	ListProgress(ctx context.Context, studentID string) ([]domain.ModuleProgress, error)
}

// LessonProgressStore tracks per-student lesson completion.
type LessonProgressStore interface {
	MarkLessonCompleted(ctx context.Context, studentID, lessonID string) error
	CountCompletedLessons(ctx context.Context, studentID string) (int, error)
}

// LessonStore resolves symbolic lesson slots to concrete lessons.
type LessonStore interface {
	// FirstLessonByLevel returns the lesson of the module at the given level
	// with the smallest order index, or domain.ErrLessonNotFound.
	FirstLessonByLevel(ctx context.Context, moduleID string, level domain.TargetLevel) (domain.Lesson, error)
}

// CourseResourceStore lists supplemental course material.
type CourseResourceStore interface {
	ListResources(ctx context.Context, courseID string) ([]domain.CourseResource, error)
}

// RecommendationStore persists resolved recommendations. InsertRecommendation
// returns domain.ErrDuplicateRecommendation when the dedup key already
// exists, which makes the pipeline safe under at-least-once job delivery.
type RecommendationStore interface {
	InsertRecommendation(ctx context.Context, rec domain.Recommendation) (domain.Recommendation, error)
	ListRecommendations(ctx context.Context, studentID, courseID string) ([]domain.Recommendation, error)
}

// RecommendationJob identifies one post-grading recommendation run.
type RecommendationJob struct {
	StudentID    string `json:"studentId"`
	CourseID     string `json:"courseId"`
	EvaluationID string `json:"evaluationId"`
	AttemptID    string `json:"attemptId"`
}

// JobQueue hands recommendation jobs to a background worker. Delivery is
// at-least-once; handlers must be idempotent.
type JobQueue interface {
	Enqueue(ctx context.Context, job RecommendationJob) error
}

// RecommendationNotifier receives recommendations as they are persisted, for
// live delivery to connected clients. Implementations must not block.
type RecommendationNotifier interface {
	NotifyRecommendation(rec domain.Recommendation)
}
