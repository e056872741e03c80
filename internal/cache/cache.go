package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/prometheus/client_golang/prometheus"

	"blogapi/internal/domain"
)

// entryOverhead approximates the fixed per-user cost beyond its string fields.
const entryOverhead = 64

type UserCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

// New sizes the cache at 2^maxSizePow2 bytes. Entries expire after ttl; zero
// keeps them until evicted.
func New(maxSizePow2 int, ttl time.Duration) (*UserCache, error) {
	maxCost := max(1, int64(1)<<maxSizePow2)
	numCounters := max(1, maxCost/20) // ~200 bytes per user, 10x counters

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}
	return &UserCache{cache: cache, ttl: ttl}, nil
}

func (c *UserCache) Get(id string) (domain.User, bool) {
	val, found := c.cache.Get(id)
	if !found {
		return domain.User{}, false
	}
	return val.(domain.User), true
}

func (c *UserCache) Set(u domain.User) {
	cost := int64(entryOverhead + len(u.ID) + len(u.Username) + len(u.Name) + len(u.Email) + len(u.Password))
	c.cache.SetWithTTL(u.ID, u, cost, c.ttl)
}

func (c *UserCache) Delete(id string) {
	c.cache.Del(id)
}

func (c *UserCache) Close() {
	c.cache.Close()
}

func (c *UserCache) Stats() (hits, misses uint64, ratio float64) {
	metrics := c.cache.Metrics
	hits = metrics.Hits()
	misses = metrics.Misses()
	ratio = metrics.Ratio()
	return
}

// Collectors exposes the cache hit and miss counters for scraping.
func (c *UserCache) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "user_cache_hits_total",
			Help: "Number of user cache lookups that found an entry",
		}, func() float64 {
			hits, _, _ := c.Stats()
			return float64(hits)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "user_cache_misses_total",
			Help: "Number of user cache lookups that found nothing",
		}, func() float64 {
			_, misses, _ := c.Stats()
			return float64(misses)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "user_cache_hit_ratio",
			Help: "Ratio of user cache hits to lookups",
		}, func() float64 {
			_, _, ratio := c.Stats()
			return ratio
		}),
	}
}
