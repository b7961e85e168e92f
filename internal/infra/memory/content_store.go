package memory

import (
	"context"
	"sync"

	"adaptive-eval-service/internal/domain"
)

// LessonStore is an in-memory implementation of app.LessonStore over a fixed
// lesson set.
type LessonStore struct {
	mu      sync.RWMutex
	lessons []domain.Lesson
}

func NewLessonStore(lessons []domain.Lesson) *LessonStore {
	return &LessonStore{lessons: lessons}
}

func (s *LessonStore) FirstLessonByLevel(_ context.Context, moduleID string, level domain.TargetLevel) (domain.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.Lesson
	for i := range s.lessons {
		lesson := &s.lessons[i]
		if lesson.ModuleID != moduleID || lesson.TargetLevel != level {
			continue
		}
		if best == nil || lesson.OrderIndex < best.OrderIndex {
			best = lesson
		}
	}
	if best == nil {
		return domain.Lesson{}, domain.ErrLessonNotFound
	}
	return *best, nil
}

// CourseResourceStore is an in-memory implementation of
// app.CourseResourceStore.
type CourseResourceStore struct {
	mu        sync.RWMutex
	resources []domain.CourseResource
}

func NewCourseResourceStore(resources []domain.CourseResource) *CourseResourceStore {
	return &CourseResourceStore{resources: resources}
}

func (s *CourseResourceStore) ListResources(_ context.Context, courseID string) ([]domain.CourseResource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.CourseResource
	for _, res := range s.resources {
		if res.CourseID == courseID {
			out = append(out, res)
		}
	}
	return out, nil
}
