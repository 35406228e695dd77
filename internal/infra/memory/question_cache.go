package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"forklift-training-service/internal/app"
	"forklift-training-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionCache caches the questions collection with a TTL to avoid
// re-reading the backing store on every attempt start.
type QuestionCache struct {
	backend app.QuestionStore
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand

	mu        sync.RWMutex
	questions []domain.Question
	expiresAt time.Time
	valid     bool
	gen       uint64 // bumped on every write
}

func NewQuestionCache(backend app.QuestionStore, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		backend: backend,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	if qs, ok := c.cached(c.clock()); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do("questions", func() (interface{}, error) {
		now := c.clock()
		if qs, ok := c.cached(now); ok {
			return qs, nil
		}

		c.mu.RLock()
		gen := c.gen
		c.mu.RUnlock()

		questions, err := c.backend.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.questions = questions
			c.expiresAt = now.Add(c.ttlWithJitter())
			c.valid = true
		}
		c.mu.Unlock()
		return copyQuestions(questions), nil
	})
	if err != nil {
		return nil, err
	}
	return copyQuestions(result.([]domain.Question)), nil
}

// UpdateQuestions writes through to the backend and drops the cached copy.
func (c *QuestionCache) UpdateQuestions(ctx context.Context, fn func([]domain.Question) ([]domain.Question, error)) error {
	defer c.invalidate()
	return c.backend.UpdateQuestions(ctx, fn)
}

func (c *QuestionCache) cached(now time.Time) ([]domain.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.valid && c.expiresAt.After(now) {
		return copyQuestions(c.questions), true
	}
	return nil, false
}

func (c *QuestionCache) invalidate() {
	c.mu.Lock()
	c.valid = false
	c.questions = nil
	c.gen++
	c.mu.Unlock()
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
