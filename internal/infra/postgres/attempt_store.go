package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"adaptive-eval-service/internal/domain"
)

// AttemptStore persists graded attempts. The insert takes a per-(evaluation,
// student) advisory lock inside a transaction before counting prior attempts,
// closing the check-then-insert race; the unique index on (evaluation_id,
// student_id, attempt_number) is the backstop.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) InsertAttempt(ctx context.Context, attempt domain.EvaluationAttempt, maxAttempts int) (domain.EvaluationAttempt, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.EvaluationAttempt{}, fmt.Errorf("begin insert attempt: %w", err)
	}
	defer tx.Rollback(ctx)

	lockKey := attempt.EvaluationID + ":" + attempt.StudentID
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		return domain.EvaluationAttempt{}, fmt.Errorf("acquire attempt lock: %w", err)
	}

	var prior int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM evaluation_attempts WHERE evaluation_id=$1 AND student_id=$2`,
		attempt.EvaluationID, attempt.StudentID,
	).Scan(&prior)
	if err != nil {
		return domain.EvaluationAttempt{}, fmt.Errorf("count prior attempts: %w", err)
	}
	if maxAttempts > 0 && prior >= maxAttempts {
		return domain.EvaluationAttempt{}, domain.ErrMaxAttemptsReached
	}

	attempt.ID = uuid.NewString()
	attempt.AttemptNumber = prior + 1

	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return domain.EvaluationAttempt{}, fmt.Errorf("marshal answers: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO evaluation_attempts
		 (id, evaluation_id, student_id, attempt_number, answers, score, percentage, passed, time_spent, submitted_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		attempt.ID, attempt.EvaluationID, attempt.StudentID, attempt.AttemptNumber,
		answers, attempt.Score, attempt.Percentage, attempt.Passed, attempt.TimeSpent, attempt.SubmittedAt,
	)
	if err != nil {
		return domain.EvaluationAttempt{}, fmt.Errorf("insert attempt: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.EvaluationAttempt{}, fmt.Errorf("commit insert attempt: %w", err)
	}
	return attempt, nil
}

func (s *AttemptStore) GetAttempt(ctx context.Context, attemptID string) (domain.EvaluationAttempt, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, evaluation_id, student_id, attempt_number, answers, score, percentage, passed, time_spent, submitted_at
		 FROM evaluation_attempts WHERE id=$1`, attemptID)
	attempt, err := scanAttempt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.EvaluationAttempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.EvaluationAttempt{}, fmt.Errorf("load attempt: %w", err)
	}
	return attempt, nil
}

func (s *AttemptStore) ListAttempts(ctx context.Context, evaluationID, studentID string) ([]domain.EvaluationAttempt, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, evaluation_id, student_id, attempt_number, answers, score, percentage, passed, time_spent, submitted_at
		 FROM evaluation_attempts
		 WHERE evaluation_id=$1 AND student_id=$2
		 ORDER BY attempt_number ASC`, evaluationID, studentID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.EvaluationAttempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, attempt)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAttempt(row rowScanner) (domain.EvaluationAttempt, error) {
	var attempt domain.EvaluationAttempt
	var answers []byte
	err := row.Scan(&attempt.ID, &attempt.EvaluationID, &attempt.StudentID, &attempt.AttemptNumber,
		&answers, &attempt.Score, &attempt.Percentage, &attempt.Passed, &attempt.TimeSpent, &attempt.SubmittedAt)
	if err != nil {
		return domain.EvaluationAttempt{}, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &attempt.Answers); err != nil {
			return domain.EvaluationAttempt{}, err
		}
	}
	return attempt, nil
}
