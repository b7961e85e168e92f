package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"adaptive-eval-service/internal/domain"
)

// EvaluationLoader loads evaluation JSONB from Postgres. Evaluations are
// authored externally and read-only here, so the whole document lives in one
// jsonb column.
type EvaluationLoader struct {
	pool *pgxpool.Pool
}

func NewEvaluationLoader(pool *pgxpool.Pool) *EvaluationLoader {
	return &EvaluationLoader{pool: pool}
}

func (l *EvaluationLoader) LoadEvaluation(ctx context.Context, evaluationID string) (domain.Evaluation, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM evaluations WHERE id=$1`, evaluationID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Evaluation{}, domain.ErrEvaluationNotFound
	}
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("load evaluation: %w", err)
	}
	var evaluation domain.Evaluation
	if err := json.Unmarshal(raw, &evaluation); err != nil {
		return domain.Evaluation{}, fmt.Errorf("unmarshal evaluation: %w", err)
	}
	return evaluation, nil
}
