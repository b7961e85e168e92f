package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"adaptive-eval-service/internal/domain"
)

// RecommendationStore persists resolved recommendations. The unique index on
// dedup_key turns replayed inserts into ErrDuplicateRecommendation.
type RecommendationStore struct {
	pool *pgxpool.Pool
}

func NewRecommendationStore(pool *pgxpool.Pool) *RecommendationStore {
	return &RecommendationStore{pool: pool}
}

func (s *RecommendationStore) InsertRecommendation(ctx context.Context, rec domain.Recommendation) (domain.Recommendation, error) {
	rec.ID = uuid.NewString()

	err := s.pool.QueryRow(ctx,
		`INSERT INTO recommendations
		 (id, student_id, course_id, type, title, description, priority,
		  recommended_content_id, recommended_content_type, action_url, dedup_key, is_read, is_applied, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,false,false,now())
		 ON CONFLICT (dedup_key) DO NOTHING
		 RETURNING created_at`,
		rec.ID, rec.StudentID, rec.CourseID, rec.Type, rec.Title, rec.Description, string(rec.Priority),
		rec.RecommendedContentID, rec.RecommendedContentType, rec.ActionURL, rec.DedupKey,
	).Scan(&rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Recommendation{}, domain.ErrDuplicateRecommendation
	}
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("insert recommendation: %w", err)
	}
	return rec, nil
}

func (s *RecommendationStore) ListRecommendations(ctx context.Context, studentID, courseID string) ([]domain.Recommendation, error) {
	query := `SELECT id, student_id, course_id, type, title, description, priority,
	          COALESCE(recommended_content_id, ''), COALESCE(recommended_content_type, ''),
	          COALESCE(action_url, ''), is_read, is_applied, created_at
	          FROM recommendations WHERE student_id=$1`
	args := []interface{}{studentID}
	if courseID != "" {
		query += ` AND course_id=$2`
		args = append(args, courseID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	defer rows.Close()

	var out []domain.Recommendation
	for rows.Next() {
		var rec domain.Recommendation
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.CourseID, &rec.Type, &rec.Title, &rec.Description,
			&rec.Priority, &rec.RecommendedContentID, &rec.RecommendedContentType, &rec.ActionURL,
			&rec.IsRead, &rec.IsApplied, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
