package app

import (
	"context"
	"log"

	"adaptive-eval-service/internal/domain"
)

// RecommendationPipeline runs the post-grading recommendation flow: build the
// context, walk both decision trees, resolve the actions and persist the
// results. It is invoked from the background queue, after the grading response
// has already returned, so every failure is logged and dropped.
type RecommendationPipeline struct {
	builder        *ContextBuilder
	engine         *DecisionEngine
	resolver       *ContentResolver
	persister      *RecommendationPersister
	moduleProgress ModuleProgressStore
	lessonProgress LessonProgressStore
	notifier       RecommendationNotifier // optional
}

func NewRecommendationPipeline(
	builder *ContextBuilder,
	engine *DecisionEngine,
	resolver *ContentResolver,
	persister *RecommendationPersister,
	moduleProgress ModuleProgressStore,
	lessonProgress LessonProgressStore,
	notifier RecommendationNotifier,
) *RecommendationPipeline {
	return &RecommendationPipeline{
		builder:        builder,
		engine:         engine,
		resolver:       resolver,
		persister:      persister,
		moduleProgress: moduleProgress,
		lessonProgress: lessonProgress,
		notifier:       notifier,
	}
}

// Run executes one recommendation job. The returned error is informational
// for the queue's logging; the job is never retried into user-visible failure.
func (p *RecommendationPipeline) Run(ctx context.Context, job RecommendationJob) error {
	ectx := p.builder.Build(ctx, job.StudentID, job.CourseID, job.EvaluationID, job.AttemptID)
	if ectx == nil {
		log.Printf("recommendation run skipped for attempt %s: no context", job.AttemptID)
		return nil
	}

	actions := p.engine.EvaluateAttempt(ectx)
	if perf := p.engine.EvaluatePerformance(p.snapshot(ctx, ectx)); perf != nil {
		actions = append(actions, *perf)
	}
	if len(actions) == 0 {
		return nil
	}

	for _, action := range actions {
		resolved := p.resolver.Resolve(ctx, action, ectx.Evaluation.ModuleID, ectx.CourseID)
		rec, created, err := p.persister.Persist(ctx, job, resolved)
		if err != nil {
			log.Printf("persist recommendation %s for attempt %s: %v", action.ID, job.AttemptID, err)
			continue
		}
		if created && p.notifier != nil {
			p.notifier.NotifyRecommendation(rec)
		}
	}
	return nil
}

// snapshot derives the numeric performance picture for the performance tree
// from the attempt history and the student's progress records. Store failures
// leave the affected fields at zero; the tree still walks.
func (p *RecommendationPipeline) snapshot(ctx context.Context, ectx *domain.EvaluationContext) domain.PerformanceSnapshot {
	var s domain.PerformanceSnapshot

	var totalPct, timeSpent float64
	for _, a := range ectx.AllAttempts {
		totalPct += float64(a.Percentage)
		timeSpent += float64(a.TimeSpent)
		if a.Passed {
			s.EvaluationsPassed++
		}
	}
	if n := len(ectx.AllAttempts); n > 0 {
		s.AverageScore = totalPct / float64(n)
	}
	s.TotalTimeSpent = timeSpent / 60 // minutes

	if progress, err := p.moduleProgress.ListProgress(ctx, ectx.StudentID); err != nil {
		log.Printf("snapshot: list module progress for student %s: %v", ectx.StudentID, err)
	} else if len(progress) > 0 {
		completed := 0
		for _, mp := range progress {
			if mp.Status == domain.ModuleCompleted {
				completed++
			}
		}
		s.OverallProgress = 100 * float64(completed) / float64(len(progress))
	}

	if lessons, err := p.lessonProgress.CountCompletedLessons(ctx, ectx.StudentID); err != nil {
		log.Printf("snapshot: count completed lessons for student %s: %v", ectx.StudentID, err)
	} else {
		s.LessonsCompleted = float64(lessons)
	}

	return s
}
