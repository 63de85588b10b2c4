package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuizCache caches full quiz documents in Redis with a TTL and falls back to
// the source reader on a miss. Stored as: SET quizhub:quiz:{id} {json}.
// Quizzes are immutable, so cached entries never go stale in content.
type QuizCache struct {
	client *redis.Client
	source app.QuizReader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizCache(client *redis.Client, source app.QuizReader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID uint64) (domain.QuizSet, bool, error) {
	key := c.quizKey(quizID)

	if quiz, ok := c.readCached(ctx, key); ok {
		return quiz, true, nil
	}

	type loaded struct {
		quiz domain.QuizSet
		ok   bool
	}
	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := c.readCached(ctx, key); ok {
			return loaded{quiz: quiz, ok: true}, nil
		}

		quiz, ok, err := c.source.GetQuiz(ctx, quizID)
		if err != nil || !ok {
			return loaded{ok: ok}, err
		}

		if data, err := json.Marshal(quiz); err == nil {
			// best-effort fill; a failed SET only costs a future reload
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return loaded{quiz: quiz, ok: true}, nil
	})
	if err != nil {
		return domain.QuizSet{}, false, err
	}
	l := result.(loaded)
	return l.quiz, l.ok, nil
}

func (c *QuizCache) readCached(ctx context.Context, key string) (domain.QuizSet, bool) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		// a cache failure is just a miss; the source is authoritative
		return domain.QuizSet{}, false
	}
	var quiz domain.QuizSet
	if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
		return domain.QuizSet{}, false
	}
	return quiz, true
}

func (c *QuizCache) quizKey(quizID uint64) string {
	return "quizhub:quiz:" + strconv.FormatUint(quizID, 10)
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
