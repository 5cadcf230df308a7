// internal/cache/questionpool.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vikt-quiz/vikt/internal/models"
)

// DefaultPoolPrefix namespaces the per-section pool keys.
var DefaultPoolPrefix = "vikt:pool:"

// QuestionPool holds each section's not-yet-asked questions in a Redis
// set. SPOP gives uniform sampling without replacement and is atomic,
// so two concurrent advances can never serve the same question twice.
type QuestionPool struct {
	rdb    *redis.Client
	prefix string
}

// NewQuestionPool wraps the given client. Pass cache.Rdb in production.
func NewQuestionPool(rdb *redis.Client) *QuestionPool {
	return &QuestionPool{
		rdb:    rdb,
		prefix: getEnv("POOL_KEY_PREFIX", DefaultPoolPrefix),
	}
}

func (p *QuestionPool) key(section string) string {
	return p.prefix + section
}

// Load adds the given records to the section's pool. Records already in
// the set are deduplicated by Redis.
func (p *QuestionPool) Load(ctx context.Context, section string, records []models.QuestionRecord) error {
	if len(records) == 0 {
		return nil
	}
	members := make([]interface{}, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal question for pool: %w", err)
		}
		members = append(members, data)
	}
	if err := p.rdb.SAdd(ctx, p.key(section), members...).Err(); err != nil {
		return fmt.Errorf("failed to SADD to pool '%s': %w", section, err)
	}
	return nil
}

// PopRandom atomically removes and returns one random question from the
// section's pool. Returns (nil, nil) when the pool is empty; exhaustion
// is a driving condition for section transitions, not an error.
func (p *QuestionPool) PopRandom(ctx context.Context, section string) (*models.QuestionRecord, error) {
	data, err := p.rdb.SPop(ctx, p.key(section)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to SPOP from pool '%s': %w", section, err)
	}
	var rec models.QuestionRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("corrupt pool member in '%s': %w", section, err)
	}
	return &rec, nil
}

// HasAny reports whether the section's pool still holds questions.
func (p *QuestionPool) HasAny(ctx context.Context, section string) (bool, error) {
	n, err := p.rdb.SCard(ctx, p.key(section)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to SCARD pool '%s': %w", section, err)
	}
	return n > 0, nil
}

// Clear drops the section's pool entirely.
func (p *QuestionPool) Clear(ctx context.Context, section string) error {
	if err := p.rdb.Del(ctx, p.key(section)).Err(); err != nil {
		return fmt.Errorf("failed to DEL pool '%s': %w", section, err)
	}
	return nil
}

// FlushAll removes every pool key under the prefix.
func (p *QuestionPool) FlushAll(ctx context.Context) error {
	iter := p.rdb.Scan(ctx, 0, p.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := p.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to DEL pool key '%s': %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan pool keys: %w", err)
	}
	return nil
}
