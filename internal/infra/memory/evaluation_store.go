package memory

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"adaptive-eval-service/internal/domain"
)

// EvaluationLoader fetches evaluation content from a backing store.
type EvaluationLoader interface {
	LoadEvaluation(ctx context.Context, evaluationID string) (domain.Evaluation, error)
}

// notFoundTTL bounds how long a missing evaluation id is remembered. Misses
// are cached too: a client retrying a bad id would otherwise hit the backing
// store on every submission.
const notFoundTTL = 30 * time.Second

// EvaluationCache decorates an EvaluationLoader with an in-process cache.
// Evaluation content is immutable while attempts are open, so hits are served
// for a jittered TTL, ErrEvaluationNotFound is remembered as a short-lived
// negative entry, and concurrent misses for the same id collapse into one
// load. Other loader errors are returned without being cached.
type EvaluationCache struct {
	loader EvaluationLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	evaluation domain.Evaluation
	missing    bool
	expiresAt  time.Time
}

func NewEvaluationCache(loader EvaluationLoader, ttl time.Duration) *EvaluationCache {
	return &EvaluationCache{
		loader:  loader,
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[string]*cacheEntry),
	}
}

func (c *EvaluationCache) GetEvaluation(ctx context.Context, evaluationID string) (domain.Evaluation, error) {
	if entry, ok := c.lookup(evaluationID); ok {
		return entry.result()
	}

	result, err, _ := c.sf.Do(evaluationID, func() (interface{}, error) {
		// A concurrent caller may have filled the entry while this one
		// waited its turn.
		if entry, ok := c.lookup(evaluationID); ok {
			evaluation, err := entry.result()
			if err != nil {
				return nil, err
			}
			return evaluation, nil
		}

		evaluation, err := c.loader.LoadEvaluation(ctx, evaluationID)
		switch {
		case errors.Is(err, domain.ErrEvaluationNotFound):
			c.remember(evaluationID, &cacheEntry{missing: true, expiresAt: c.clock().Add(notFoundTTL)})
			return nil, err
		case err != nil:
			return nil, err
		}
		c.remember(evaluationID, &cacheEntry{evaluation: evaluation, expiresAt: c.clock().Add(jitteredTTL(c.ttl))})
		return evaluation, nil
	})
	if err != nil {
		return domain.Evaluation{}, err
	}
	return result.(domain.Evaluation), nil
}

func (c *EvaluationCache) lookup(evaluationID string) (*cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[evaluationID]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	return entry, true
}

func (c *EvaluationCache) remember(evaluationID string, entry *cacheEntry) {
	c.mu.Lock()
	c.entries[evaluationID] = entry
	c.mu.Unlock()
}

func (e *cacheEntry) result() (domain.Evaluation, error) {
	if e.missing {
		return domain.Evaluation{}, domain.ErrEvaluationNotFound
	}
	return e.evaluation, nil
}

// jitteredTTL spreads expirations by up to 10% so entries filled in a burst
// do not all expire in the same instant.
func jitteredTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	return ttl + time.Duration(rand.Int63n(int64(ttl)/10+1))
}

// StaticEvaluationLoader is a loader backed by an in-memory map (useful for
// tests/demos and for running without Postgres).
type StaticEvaluationLoader struct {
	evaluations map[string]domain.Evaluation
}

func NewStaticEvaluationLoader(evaluations map[string]domain.Evaluation) *StaticEvaluationLoader {
	return &StaticEvaluationLoader{evaluations: evaluations}
}

func (l *StaticEvaluationLoader) LoadEvaluation(_ context.Context, evaluationID string) (domain.Evaluation, error) {
	if evaluation, ok := l.evaluations[evaluationID]; ok {
		return evaluation, nil
	}
	return domain.Evaluation{}, domain.ErrEvaluationNotFound
}
