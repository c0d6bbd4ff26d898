package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// IdempotencyRepository remembers recently used idempotency keys so a
// retried submit/merge returns the original result instead of repeating
// the write. Keys expire on their own; callers that send no key skip the
// store entirely.
type IdempotencyRepository struct {
	cache *cache.Cache
}

func NewIdempotencyRepository() *IdempotencyRepository {
	// 15 minutes covers the retry-with-backoff window the API documents;
	// expired entries are purged every 5 minutes.
	c := cache.New(15*time.Minute, 5*time.Minute)
	return &IdempotencyRepository{
		cache: c,
	}
}

// Remember stores the result produced for a key. First writer wins.
func (r *IdempotencyRepository) Remember(key string, result interface{}) {
	_ = r.cache.Add(key, result, cache.DefaultExpiration)
}

func (r *IdempotencyRepository) Get(key string) (interface{}, bool) {
	return r.cache.Get(key)
}
