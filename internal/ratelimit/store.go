package ratelimit

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CacheStore backs the limiter with an in-process go-cache instance. The
// cache janitor evicts expired windows, bounding memory.
type CacheStore struct {
	c *gocache.Cache
}

func NewCacheStore() *CacheStore {
	return &CacheStore{c: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

func (s *CacheStore) Get(key string) (*Entry, bool) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false
	}
	e, ok := v.(*Entry)
	return e, ok
}

func (s *CacheStore) Set(key string, e *Entry, ttl time.Duration) {
	s.c.Set(key, e, ttl)
}

func (s *CacheStore) Delete(key string) {
	s.c.Delete(key)
}
