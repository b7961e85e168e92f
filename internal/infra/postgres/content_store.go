package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"adaptive-eval-service/internal/domain"
)

// LessonStore resolves lesson slots against the lessons table.
type LessonStore struct {
	pool *pgxpool.Pool
}

func NewLessonStore(pool *pgxpool.Pool) *LessonStore {
	return &LessonStore{pool: pool}
}

func (s *LessonStore) FirstLessonByLevel(ctx context.Context, moduleID string, level domain.TargetLevel) (domain.Lesson, error) {
	var lesson domain.Lesson
	err := s.pool.QueryRow(ctx,
		`SELECT id, module_id, title, target_level, order_index
		 FROM lessons
		 WHERE module_id=$1 AND target_level=$2
		 ORDER BY order_index ASC
		 LIMIT 1`, moduleID, string(level)).
		Scan(&lesson.ID, &lesson.ModuleID, &lesson.Title, &lesson.TargetLevel, &lesson.OrderIndex)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lesson{}, domain.ErrLessonNotFound
	}
	if err != nil {
		return domain.Lesson{}, fmt.Errorf("load lesson by level: %w", err)
	}
	return lesson, nil
}

// CourseResourceStore lists supplemental course material.
type CourseResourceStore struct {
	pool *pgxpool.Pool
}

func NewCourseResourceStore(pool *pgxpool.Pool) *CourseResourceStore {
	return &CourseResourceStore{pool: pool}
}

func (s *CourseResourceStore) ListResources(ctx context.Context, courseID string) ([]domain.CourseResource, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, course_id, title, resource_type, url
		 FROM course_resources WHERE course_id=$1
		 ORDER BY title ASC`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list course resources: %w", err)
	}
	defer rows.Close()

	var out []domain.CourseResource
	for rows.Next() {
		var res domain.CourseResource
		if err := rows.Scan(&res.ID, &res.CourseID, &res.Title, &res.ResourceType, &res.URL); err != nil {
			return nil, fmt.Errorf("scan course resource: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
