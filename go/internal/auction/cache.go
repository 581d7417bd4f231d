package auction

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// MarketCache holds short-lived market snapshots per league. Only reads go
// through it; bids always commit against the store.
type MarketCache struct {
	cache    *gocache.Cache
	duration time.Duration
}

// NewMarketCache creates a cache whose snapshots live for duration. A zero
// duration disables caching.
func NewMarketCache(duration time.Duration) *MarketCache {
	return &MarketCache{
		cache:    gocache.New(duration, duration*2),
		duration: duration,
	}
}

func (c *MarketCache) Get(leagueID uuid.UUID) (*Market, bool) {
	if c == nil || c.duration <= 0 {
		return nil, false
	}
	if v, found := c.cache.Get(leagueID.String()); found {
		return v.(*Market), true
	}
	return nil, false
}

func (c *MarketCache) Set(m *Market) {
	if c == nil || c.duration <= 0 {
		return
	}
	c.cache.Set(m.LeagueID.String(), m, c.duration)
}

// Invalidate drops the league's snapshot after a local commit.
func (c *MarketCache) Invalidate(leagueID uuid.UUID) {
	if c == nil {
		return
	}
	c.cache.Delete(leagueID.String())
}

func (c *MarketCache) Flush() {
	if c == nil {
		return
	}
	c.cache.Flush()
}
