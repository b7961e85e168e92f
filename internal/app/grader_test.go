package app_test

import (
	"context"
	"errors"
	"testing"

	"adaptive-eval-service/internal/app"
	"adaptive-eval-service/internal/domain"
	"adaptive-eval-service/internal/infra/memory"
)

func TestGradeExactSetEquality(t *testing.T) {
	evaluation := sampleEvaluation()

	cases := []struct {
		name    string
		answers domain.AnswerSet
		score   int
	}{
		{"all correct", domain.AnswerSet{"q1": {1}, "q2": {1, 3}}, 3},
		{"order independent", domain.AnswerSet{"q1": {1}, "q2": {3, 1}}, 3},
		{"subset scores zero", domain.AnswerSet{"q1": {1}, "q2": {1}}, 1},
		{"superset scores zero", domain.AnswerSet{"q1": {1}, "q2": {1, 2, 3}}, 1},
		{"unanswered question", domain.AnswerSet{"q1": {1}}, 1},
		{"all wrong", domain.AnswerSet{"q1": {0}, "q2": {0, 2}}, 0},
		{"duplicated index is not two answers", domain.AnswerSet{"q1": {1}, "q2": {1, 1}}, 1},
		{"duplicates collapse before comparison", domain.AnswerSet{"q1": {1}, "q2": {1, 3, 3}}, 3},
	}
	for _, tc := range cases {
		result := app.Grade(evaluation, tc.answers)
		if result.Score != tc.score {
			t.Fatalf("%s: expected score %d, got %d", tc.name, tc.score, result.Score)
		}
	}
}

func TestGradePercentageAndPass(t *testing.T) {
	evaluation := sampleEvaluation()

	result := app.Grade(evaluation, domain.AnswerSet{"q1": {1}, "q2": {1, 3}})
	if result.Percentage != 100 || !result.Passed {
		t.Fatalf("expected 100%% pass, got %+v", result)
	}

	// q2 alone is 2 of 3 points: round(100*2/3) = 67, below the default 70.
	result = app.Grade(evaluation, domain.AnswerSet{"q2": {1, 3}})
	if result.Percentage != 67 || result.Passed {
		t.Fatalf("expected 67%% fail, got %+v", result)
	}

	zeroMax := evaluation
	zeroMax.MaxScore = 0
	result = app.Grade(zeroMax, domain.AnswerSet{"q1": {1}})
	if result.Percentage != 0 || result.Passed {
		t.Fatalf("expected 0%% for zero max score, got %+v", result)
	}
}

func TestGradeCustomPassingScore(t *testing.T) {
	evaluation := sampleEvaluation()
	passing := 60
	evaluation.PassingScore = &passing

	// 67% clears a 60 bar.
	result := app.Grade(evaluation, domain.AnswerSet{"q2": {1, 3}})
	if !result.Passed {
		t.Fatalf("expected pass at 67%% with passing score 60, got %+v", result)
	}
}

func TestSubmitNumbersAttemptsAndEnforcesLimit(t *testing.T) {
	ctx := context.Background()
	env := newGraderEnv()

	first, err := env.grader.Submit(ctx, app.Submission{
		EvaluationID: "eval-1", StudentID: "s1", Answers: domain.AnswerSet{"q1": {1}},
	})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if first.AttemptNumber != 1 {
		t.Fatalf("expected attempt number 1, got %d", first.AttemptNumber)
	}

	second, err := env.grader.Submit(ctx, app.Submission{
		EvaluationID: "eval-1", StudentID: "s1", Answers: domain.AnswerSet{"q1": {1}},
	})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if second.AttemptNumber != 2 {
		t.Fatalf("expected attempt number 2, got %d", second.AttemptNumber)
	}

	_, err = env.grader.Submit(ctx, app.Submission{
		EvaluationID: "eval-1", StudentID: "s1", Answers: domain.AnswerSet{"q1": {1}},
	})
	if !errors.Is(err, domain.ErrMaxAttemptsReached) {
		t.Fatalf("expected max attempts error, got %v", err)
	}

	history, err := env.attempts.ListAttempts(ctx, "eval-1", "s1")
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("rejected submission must not create a row, got %d rows", len(history))
	}
}

func TestSubmitUnknownEvaluation(t *testing.T) {
	env := newGraderEnv()
	_, err := env.grader.Submit(context.Background(), app.Submission{
		EvaluationID: "missing", StudentID: "s1",
	})
	if !errors.Is(err, domain.ErrEvaluationNotFound) {
		t.Fatalf("expected evaluation not found, got %v", err)
	}
}

func TestSubmitDiagnosticBucketsProgress(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		answers domain.AnswerSet
		level   domain.DiagnosticLevel
	}{
		// q2 alone is 2 of 3 points = 67%; both questions are 100%.
		{"low below 70", domain.AnswerSet{"q2": {1, 3}}, domain.DiagnosticLow},
		{"high at 100", domain.AnswerSet{"q1": {1}, "q2": {1, 3}}, domain.DiagnosticHigh},
	}
	for _, tc := range cases {
		env := newGraderEnv()
		env.loader.evaluations["diag-1"] = diagnosticEvaluation()

		if _, err := env.grader.Submit(ctx, app.Submission{
			EvaluationID: "diag-1", StudentID: "s1", Answers: tc.answers,
		}); err != nil {
			t.Fatalf("%s: submit: %v", tc.name, err)
		}

		progress, err := env.moduleProgress.ListProgress(ctx, "s1")
		if err != nil {
			t.Fatalf("%s: list progress: %v", tc.name, err)
		}
		if len(progress) != 1 {
			t.Fatalf("%s: expected one progress row, got %d", tc.name, len(progress))
		}
		if progress[0].DiagnosticLevel != tc.level || progress[0].Status != domain.ModuleInProgress {
			t.Fatalf("%s: expected level %s in_progress, got %+v", tc.name, tc.level, progress[0])
		}
	}
}

func TestSubmitDiagnosticAverageBucket(t *testing.T) {
	ctx := context.Background()
	env := newGraderEnv()

	diag := diagnosticEvaluation()
	diag.MaxScore = 5
	diag.Questions = []domain.Question{
		{ID: "q1", CorrectOptions: []int{0}, Points: 4},
		{ID: "q2", CorrectOptions: []int{0}, Points: 1},
	}
	env.loader.evaluations["diag-1"] = diag

	// 4 of 5 points = 80%, the average band.
	if _, err := env.grader.Submit(ctx, app.Submission{
		EvaluationID: "diag-1", StudentID: "s1", Answers: domain.AnswerSet{"q1": {0}},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	progress, _ := env.moduleProgress.ListProgress(ctx, "s1")
	if len(progress) != 1 || progress[0].DiagnosticLevel != domain.DiagnosticAverage {
		t.Fatalf("expected average bucket, got %+v", progress)
	}
}

func TestSubmitModulePassCompletesModule(t *testing.T) {
	ctx := context.Background()
	env := newGraderEnv()

	if _, err := env.grader.Submit(ctx, app.Submission{
		EvaluationID: "eval-1", StudentID: "s1", Answers: domain.AnswerSet{"q1": {1}, "q2": {1, 3}},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	progress, _ := env.moduleProgress.ListProgress(ctx, "s1")
	if len(progress) != 1 || progress[0].Status != domain.ModuleCompleted {
		t.Fatalf("expected module completed, got %+v", progress)
	}
}

func TestSubmitLessonPassMarksLesson(t *testing.T) {
	ctx := context.Background()
	env := newGraderEnv()

	lessonEval := sampleEvaluation()
	lessonEval.ID = "lesson-eval"
	lessonEval.ModuleID = ""
	lessonEval.LessonID = "lesson-2"
	env.loader.evaluations["lesson-eval"] = lessonEval

	if _, err := env.grader.Submit(ctx, app.Submission{
		EvaluationID: "lesson-eval", StudentID: "s1", Answers: domain.AnswerSet{"q1": {1}, "q2": {1, 3}},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	n, _ := env.lessonProgress.CountCompletedLessons(ctx, "s1")
	if n != 1 {
		t.Fatalf("expected one completed lesson, got %d", n)
	}
}

func TestSubmitEnqueuesRecommendationJob(t *testing.T) {
	env := newGraderEnv()

	attempt, err := env.grader.Submit(context.Background(), app.Submission{
		EvaluationID: "eval-1", StudentID: "s1", CourseID: "course-1", Answers: domain.AnswerSet{"q1": {1}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if len(env.queue.jobs) != 1 {
		t.Fatalf("expected one enqueued job, got %d", len(env.queue.jobs))
	}
	job := env.queue.jobs[0]
	if job.AttemptID != attempt.ID || job.EvaluationID != "eval-1" || job.StudentID != "s1" {
		t.Fatalf("unexpected job %+v", job)
	}
}

type graderEnv struct {
	grader         *app.AttemptGrader
	loader         *mutableLoader
	attempts       *memory.AttemptStore
	moduleProgress *memory.ModuleProgressStore
	lessonProgress *memory.LessonProgressStore
	queue          *captureQueue
}

func newGraderEnv() *graderEnv {
	loader := &mutableLoader{evaluations: map[string]domain.Evaluation{
		"eval-1": sampleEvaluation(),
	}}
	attempts := memory.NewAttemptStore()
	moduleProgress := memory.NewModuleProgressStore()
	lessonProgress := memory.NewLessonProgressStore()
	q := &captureQueue{}
	return &graderEnv{
		grader:         app.NewAttemptGrader(loader, attempts, moduleProgress, lessonProgress, q),
		loader:         loader,
		attempts:       attempts,
		moduleProgress: moduleProgress,
		lessonProgress: lessonProgress,
		queue:          q,
	}
}

// mutableLoader serves evaluations straight from a map, no cache layer.
type mutableLoader struct {
	evaluations map[string]domain.Evaluation
}

func (l *mutableLoader) GetEvaluation(_ context.Context, id string) (domain.Evaluation, error) {
	if evaluation, ok := l.evaluations[id]; ok {
		return evaluation, nil
	}
	return domain.Evaluation{}, domain.ErrEvaluationNotFound
}

type captureQueue struct {
	jobs []app.RecommendationJob
}

func (q *captureQueue) Enqueue(_ context.Context, job app.RecommendationJob) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func sampleEvaluation() domain.Evaluation {
	return domain.Evaluation{
		ID:          "eval-1",
		CourseID:    "course-1",
		ModuleID:    "module-1",
		Type:        domain.EvaluationQuiz,
		MaxScore:    3,
		MaxAttempts: 2,
		Questions: []domain.Question{
			{ID: "q1", CorrectOptions: []int{1}, Points: 1},
			{ID: "q2", CorrectOptions: []int{1, 3}, Points: 2},
		},
	}
}

func diagnosticEvaluation() domain.Evaluation {
	evaluation := sampleEvaluation()
	evaluation.ID = "diag-1"
	evaluation.Type = domain.EvaluationDiagnostic
	return evaluation
}
