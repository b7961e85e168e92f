package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"adaptive-eval-service/internal/domain"
)

// EvaluationLoader fetches evaluation content from a backing store.
type EvaluationLoader interface {
	LoadEvaluation(ctx context.Context, evaluationID string) (domain.Evaluation, error)
}

// EvaluationCache caches evaluation JSON in Redis and falls back to a loader
// on cache miss. Evaluations are immutable at grading time, so a TTL'd cache
// is safe; jitter spreads expirations, singleflight collapses concurrent
// misses for the same evaluation.
type EvaluationCache struct {
	client *redis.Client
	loader EvaluationLoader
	ttl    time.Duration
	sf     singleflight.Group
}

func NewEvaluationCache(client *redis.Client, loader EvaluationLoader, ttl time.Duration) *EvaluationCache {
	return &EvaluationCache{
		client: client,
		loader: loader,
		ttl:    ttl,
	}
}

func (c *EvaluationCache) GetEvaluation(ctx context.Context, evaluationID string) (domain.Evaluation, error) {
	key := c.key(evaluationID)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var evaluation domain.Evaluation
		if err := json.Unmarshal(raw, &evaluation); err == nil {
			return evaluation, nil
		}
		// Corrupt cache entry, fall through to the loader.
		_ = c.client.Del(ctx, key).Err()
	}

	result, err, _ := c.sf.Do(evaluationID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var evaluation domain.Evaluation
			if err := json.Unmarshal(raw, &evaluation); err == nil {
				return evaluation, nil
			}
		}

		evaluation, err := c.loader.LoadEvaluation(ctx, evaluationID)
		if err != nil {
			return domain.Evaluation{}, err
		}

		if raw, err := json.Marshal(evaluation); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return evaluation, nil
	})
	if err != nil {
		return domain.Evaluation{}, err
	}
	return result.(domain.Evaluation), nil
}

func (c *EvaluationCache) key(evaluationID string) string {
	return "evaluation:" + evaluationID
}

// ttlWithJitter spreads expirations by up to 10%. The package-level rand
// source is used because singleflight callbacks for different keys run
// concurrently.
func (c *EvaluationCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	return c.ttl + time.Duration(rand.Int63n(int64(c.ttl)/10+1))
}
