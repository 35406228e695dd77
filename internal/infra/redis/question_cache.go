package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"forklift-training-service/internal/app"
	"forklift-training-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	questionsKey        = "quiz:questions"
	questionsVersionKey = "quiz:questions:ver"
)

// fillIfCurrent sets KEYS[1] only while KEYS[2] still holds the version read
// before the backend load.
var fillIfCurrent = redis.NewScript(`
if (redis.call("GET", KEYS[2]) or "") == ARGV[1] then
	return redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
end
return false
`)

// QuestionCache caches the questions collection in Redis and falls back to the
// backing store on a miss. Writes go to the backend, bump the version and drop
// the cached copy. A non-positive ttl disables caching.
type QuestionCache struct {
	client  *redis.Client
	backend app.QuestionStore
	ttl     time.Duration
	log     *zap.Logger
	sf      singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionCache(client *redis.Client, backend app.QuestionStore, ttl time.Duration, log *zap.Logger) *QuestionCache {
	return &QuestionCache{
		client:  client,
		backend: backend,
		ttl:     ttl,
		log:     log,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	if c.ttl <= 0 {
		return c.backend.LoadQuestions(ctx)
	}
	if qs, ok := c.cached(ctx); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(questionsKey, func() (interface{}, error) {
		// another caller may have filled it meanwhile
		if qs, ok := c.cached(ctx); ok {
			return qs, nil
		}

		version, err := c.client.Get(ctx, questionsVersionKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			c.log.Warn("question cache version read failed", zap.Error(err))
			return c.backend.LoadQuestions(ctx)
		}

		questions, err := c.backend.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(questions)
		if err == nil {
			ttl := c.ttlWithJitter().Milliseconds()
			err = fillIfCurrent.Run(ctx, c.client, []string{questionsKey, questionsVersionKey}, version, raw, ttl).Err()
			if errors.Is(err, redis.Nil) {
				c.log.Debug("question cache fill skipped, questions changed during load")
				err = nil
			}
		}
		if err != nil {
			c.log.Warn("question cache fill failed", zap.Error(err))
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Question(nil), result.([]domain.Question)...), nil
}

func (c *QuestionCache) UpdateQuestions(ctx context.Context, fn func([]domain.Question) ([]domain.Question, error)) error {
	defer c.invalidate(ctx)
	return c.backend.UpdateQuestions(ctx, fn)
}

func (c *QuestionCache) invalidate(ctx context.Context) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, questionsVersionKey)
		pipe.Del(ctx, questionsKey)
		return nil
	})
	if err != nil {
		c.log.Warn("question cache invalidation failed", zap.Error(err))
	}
}

func (c *QuestionCache) cached(ctx context.Context) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, questionsKey).Bytes()
	if err != nil {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
