package domain

import "errors"

var (
	// ErrEvaluationNotFound indicates the evaluation content could not be loaded.
	ErrEvaluationNotFound = errors.New("evaluation not found")
	// ErrMaxAttemptsReached is returned when a student has exhausted their attempts for an evaluation.
	ErrMaxAttemptsReached = errors.New("max attempts reached")
	// ErrAttemptNotFound indicates a graded attempt could not be loaded.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrLessonNotFound indicates no lesson matched a module/level lookup.
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrDuplicateRecommendation indicates a recommendation with the same dedup key already exists.
	ErrDuplicateRecommendation = errors.New("recommendation already persisted")
)
