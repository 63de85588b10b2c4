package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuizCache is a read-through TTL cache over quiz lookups. Quizzes are
// immutable once created, so a stale positive entry can never be wrong;
// misses are not cached because the id may be allocated right after.
type QuizCache struct {
	source app.QuizReader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[uint64]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.QuizSet
	expiresAt time.Time
}

func NewQuizCache(source app.QuizReader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[uint64]cachedQuiz),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID uint64) (domain.QuizSet, bool, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.quiz, true, nil
	}
	c.mu.RUnlock()

	type loaded struct {
		quiz domain.QuizSet
		ok   bool
	}
	result, err, _ := c.sf.Do(cacheKey(quizID), func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return loaded{quiz: entry.quiz, ok: true}, nil
		}
		c.mu.RUnlock()

		quiz, ok, err := c.source.GetQuiz(ctx, quizID)
		if err != nil || !ok {
			return loaded{ok: ok}, err
		}

		c.mu.Lock()
		c.cache[quizID] = cachedQuiz{
			quiz:      quiz,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return loaded{quiz: quiz, ok: true}, nil
	})
	if err != nil {
		return domain.QuizSet{}, false, err
	}
	l := result.(loaded)
	return l.quiz, l.ok, nil
}

func cacheKey(quizID uint64) string {
	return strconv.FormatUint(quizID, 10)
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
