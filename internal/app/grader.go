package app

import (
	"context"
	"log"
	"math"
	"time"

	"adaptive-eval-service/internal/domain"
)

// DefaultPassingScore applies when an evaluation does not set its own.
const DefaultPassingScore = 70

// GradeResult is the outcome of scoring a submission, before persistence.
type GradeResult struct {
	Score      int
	Percentage int
	Passed     bool
}

// Submission is one student's answer sheet for an evaluation.
type Submission struct {
	EvaluationID string
	StudentID    string
	CourseID     string
	Answers      domain.AnswerSet
	TimeSpent    int // seconds, optional
}

// AttemptGrader scores submissions, persists attempts, applies progress side
// effects and hands the recommendation run to the background queue.
type AttemptGrader struct {
	evaluations    EvaluationStore
	attempts       AttemptStore
	moduleProgress ModuleProgressStore
	lessonProgress LessonProgressStore
	queue          JobQueue
	now            func() time.Time
}

func NewAttemptGrader(evaluations EvaluationStore, attempts AttemptStore, moduleProgress ModuleProgressStore, lessonProgress LessonProgressStore, queue JobQueue) *AttemptGrader {
	return &AttemptGrader{
		evaluations:    evaluations,
		attempts:       attempts,
		moduleProgress: moduleProgress,
		lessonProgress: lessonProgress,
		queue:          queue,
		now:            time.Now,
	}
}

// Grade scores the answers against the evaluation's question bank. A question
// earns its points only when the submitted option set equals the correct set
// exactly; supersets and subsets score zero.
func Grade(evaluation domain.Evaluation, answers domain.AnswerSet) GradeResult {
	score := 0
	for _, q := range evaluation.Questions {
		if !sameOptionSet(answers[q.ID], q.CorrectOptions) {
			continue
		}
		points := q.Points
		if points == 0 {
			points = 1
		}
		score += points
	}

	percentage := 0
	if evaluation.MaxScore > 0 {
		percentage = int(math.Round(100 * float64(score) / float64(evaluation.MaxScore)))
	}

	passing := DefaultPassingScore
	if evaluation.PassingScore != nil {
		passing = *evaluation.PassingScore
	}

	return GradeResult{
		Score:      score,
		Percentage: percentage,
		Passed:     percentage >= passing,
	}
}

// Submit grades and persists one attempt. The response returns as soon as the
// attempt row is written; the recommendation pipeline runs afterwards in the
// background and its failures never surface here.
func (g *AttemptGrader) Submit(ctx context.Context, sub Submission) (domain.EvaluationAttempt, error) {
	evaluation, err := g.evaluations.GetEvaluation(ctx, sub.EvaluationID)
	if err != nil {
		return domain.EvaluationAttempt{}, err
	}

	result := Grade(evaluation, sub.Answers)

	attempt, err := g.attempts.InsertAttempt(ctx, domain.EvaluationAttempt{
		EvaluationID: evaluation.ID,
		StudentID:    sub.StudentID,
		Answers:      sub.Answers,
		Score:        result.Score,
		Percentage:   result.Percentage,
		Passed:       result.Passed,
		TimeSpent:    sub.TimeSpent,
		SubmittedAt:  g.now(),
	}, evaluation.MaxAttempts)
	if err != nil {
		return domain.EvaluationAttempt{}, err
	}

	g.applyProgress(ctx, evaluation, attempt)

	courseID := sub.CourseID
	if courseID == "" {
		courseID = evaluation.CourseID
	}
	if err := g.queue.Enqueue(ctx, RecommendationJob{
		StudentID:    sub.StudentID,
		CourseID:     courseID,
		EvaluationID: evaluation.ID,
		AttemptID:    attempt.ID,
	}); err != nil {
		log.Printf("enqueue recommendation job for attempt %s: %v", attempt.ID, err)
	}

	return attempt, nil
}

// applyProgress performs the grading side effects on progress records.
// Failures here are logged and do not fail the submission: the attempt row is
// already committed.
func (g *AttemptGrader) applyProgress(ctx context.Context, evaluation domain.Evaluation, attempt domain.EvaluationAttempt) {
	switch {
	case evaluation.Type == domain.EvaluationDiagnostic && evaluation.ModuleID != "":
		level := diagnosticBucket(attempt.Percentage)
		status := domain.ModuleInProgress
		if err := g.moduleProgress.UpsertProgress(ctx, attempt.StudentID, evaluation.ModuleID, ProgressUpdate{
			Status:          &status,
			DiagnosticLevel: &level,
		}); err != nil {
			log.Printf("upsert diagnostic progress for student %s module %s: %v", attempt.StudentID, evaluation.ModuleID, err)
		}
	case evaluation.ModuleID != "" && attempt.Passed:
		status := domain.ModuleCompleted
		if err := g.moduleProgress.UpsertProgress(ctx, attempt.StudentID, evaluation.ModuleID, ProgressUpdate{Status: &status}); err != nil {
			log.Printf("mark module %s completed for student %s: %v", evaluation.ModuleID, attempt.StudentID, err)
		}
	case evaluation.LessonID != "" && attempt.Passed:
		if err := g.lessonProgress.MarkLessonCompleted(ctx, attempt.StudentID, evaluation.LessonID); err != nil {
			log.Printf("mark lesson %s completed for student %s: %v", evaluation.LessonID, attempt.StudentID, err)
		}
	}
}

func diagnosticBucket(percentage int) domain.DiagnosticLevel {
	switch {
	case percentage < 70:
		return domain.DiagnosticLow
	case percentage < 90:
		return domain.DiagnosticAverage
	default:
		return domain.DiagnosticHigh
	}
}

// sameOptionSet reports whether the submitted indexes form exactly the
// correct set. Comparison is over the underlying sets: order is irrelevant
// and duplicated indexes collapse before the cardinality check.
func sameOptionSet(submitted, correct []int) bool {
	if len(correct) == 0 {
		return false // a question with no correct options is never satisfied
	}
	want := make(map[int]struct{}, len(correct))
	for _, idx := range correct {
		want[idx] = struct{}{}
	}
	got := make(map[int]struct{}, len(submitted))
	for _, idx := range submitted {
		if _, ok := want[idx]; !ok {
			return false
		}
		got[idx] = struct{}{}
	}
	return len(got) == len(want)
}
