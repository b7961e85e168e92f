package app

import (
	"context"
	"log"

	"adaptive-eval-service/internal/domain"
)

// ContextBuilder assembles the data bundle the decision engine needs for one
// recommendation run.
type ContextBuilder struct {
	evaluations EvaluationStore
	attempts    AttemptStore
}

func NewContextBuilder(evaluations EvaluationStore, attempts AttemptStore) *ContextBuilder {
	return &ContextBuilder{evaluations: evaluations, attempts: attempts}
}

// Build loads the evaluation, the triggering attempt and the full attempt
// history. It returns nil (no error) when any lookup fails or the attempt does
// not belong to the student: the attempt is already graded, so a missing
// context only means no recommendations this time.
func (b *ContextBuilder) Build(ctx context.Context, studentID, courseID, evaluationID, attemptID string) *domain.EvaluationContext {
	evaluation, err := b.evaluations.GetEvaluation(ctx, evaluationID)
	if err != nil {
		log.Printf("context build: load evaluation %s: %v", evaluationID, err)
		return nil
	}

	attempt, err := b.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		log.Printf("context build: load attempt %s: %v", attemptID, err)
		return nil
	}
	if attempt.StudentID != studentID {
		log.Printf("context build: attempt %s does not belong to student %s", attemptID, studentID)
		return nil
	}

	history, err := b.attempts.ListAttempts(ctx, evaluationID, studentID)
	if err != nil {
		log.Printf("context build: load attempt history for evaluation %s student %s: %v", evaluationID, studentID, err)
		return nil
	}

	if courseID == "" {
		courseID = evaluation.CourseID
	}

	return &domain.EvaluationContext{
		StudentID:   studentID,
		CourseID:    courseID,
		Evaluation:  evaluation,
		Attempt:     attempt,
		AllAttempts: history,
	}
}
