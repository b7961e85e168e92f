package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"adaptive-eval-service/internal/app"
	"adaptive-eval-service/internal/domain"
)

// ModuleProgressStore upserts per-student module status rows.
type ModuleProgressStore struct {
	pool *pgxpool.Pool
}

func NewModuleProgressStore(pool *pgxpool.Pool) *ModuleProgressStore {
	return &ModuleProgressStore{pool: pool}
}

func (s *ModuleProgressStore) UpsertProgress(ctx context.Context, studentID, moduleID string, update app.ProgressUpdate) error {
	var status, level interface{}
	if update.Status != nil {
		status = string(*update.Status)
	}
	if update.DiagnosticLevel != nil {
		level = string(*update.DiagnosticLevel)
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO module_progress (student_id, module_id, status, diagnostic_level, updated_at)
		 VALUES ($1, $2, COALESCE($3, 'in_progress'), $4, now())
		 ON CONFLICT (student_id, module_id) DO UPDATE SET
		   status = COALESCE($3, module_progress.status),
		   diagnostic_level = COALESCE($4, module_progress.diagnostic_level),
		   updated_at = now()`,
		studentID, moduleID, status, level)
	if err != nil {
		return fmt.Errorf("upsert module progress: %w", err)
	}
	return nil
}

func (s *ModuleProgressStore) ListProgress(ctx context.Context, studentID string) ([]domain.ModuleProgress, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT student_id, module_id, status, COALESCE(diagnostic_level, ''), updated_at
		 FROM module_progress WHERE student_id=$1`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list module progress: %w", err)
	}
	defer rows.Close()

	var out []domain.ModuleProgress
	for rows.Next() {
		var mp domain.ModuleProgress
		if err := rows.Scan(&mp.StudentID, &mp.ModuleID, &mp.Status, &mp.DiagnosticLevel, &mp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan module progress: %w", err)
		}
		out = append(out, mp)
	}
	return out, rows.Err()
}

// LessonProgressStore tracks per-student lesson completion.
type LessonProgressStore struct {
	pool *pgxpool.Pool
}

func NewLessonProgressStore(pool *pgxpool.Pool) *LessonProgressStore {
	return &LessonProgressStore{pool: pool}
}

func (s *LessonProgressStore) MarkLessonCompleted(ctx context.Context, studentID, lessonID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO lesson_progress (student_id, lesson_id, completed_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (student_id, lesson_id) DO NOTHING`,
		studentID, lessonID)
	if err != nil {
		return fmt.Errorf("mark lesson completed: %w", err)
	}
	return nil
}

func (s *LessonProgressStore) CountCompletedLessons(ctx context.Context, studentID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM lesson_progress WHERE student_id=$1`, studentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completed lessons: %w", err)
	}
	return n, nil
}
