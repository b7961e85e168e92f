package memory

import (
	"context"
	"sync"
	"time"

	"adaptive-eval-service/internal/app"
	"adaptive-eval-service/internal/domain"
)

// ModuleProgressStore is the in-memory implementation of
// app.ModuleProgressStore, keyed by (student, module).
type ModuleProgressStore struct {
	mu   sync.RWMutex
	rows map[progressKey]domain.ModuleProgress
}

type progressKey struct {
	studentID string
	moduleID  string
}

func NewModuleProgressStore() *ModuleProgressStore {
	return &ModuleProgressStore{rows: make(map[progressKey]domain.ModuleProgress)}
}

func (s *ModuleProgressStore) UpsertProgress(_ context.Context, studentID, moduleID string, update app.ProgressUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := progressKey{studentID: studentID, moduleID: moduleID}
	row, ok := s.rows[key]
	if !ok {
		row = domain.ModuleProgress{StudentID: studentID, ModuleID: moduleID}
	}
	if update.Status != nil {
		row.Status = *update.Status
	}
	if update.DiagnosticLevel != nil {
		row.DiagnosticLevel = *update.DiagnosticLevel
	}
	row.UpdatedAt = time.Now()
	s.rows[key] = row
	return nil
}

func (s *ModuleProgressStore) ListProgress(_ context.Context, studentID string) ([]domain.ModuleProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ModuleProgress
	for key, row := range s.rows {
		if key.studentID == studentID {
			out = append(out, row)
		}
	}
	return out, nil
}

// LessonProgressStore is the in-memory implementation of
// app.LessonProgressStore.
type LessonProgressStore struct {
	mu        sync.RWMutex
	completed map[string]map[string]struct{} // studentID -> lessonID set
}

func NewLessonProgressStore() *LessonProgressStore {
	return &LessonProgressStore{completed: make(map[string]map[string]struct{})}
}

func (s *LessonProgressStore) MarkLessonCompleted(_ context.Context, studentID, lessonID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed[studentID] == nil {
		s.completed[studentID] = make(map[string]struct{})
	}
	s.completed[studentID][lessonID] = struct{}{}
	return nil
}

func (s *LessonProgressStore) CountCompletedLessons(_ context.Context, studentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.completed[studentID]), nil
}
