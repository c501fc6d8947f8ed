package contentsync

import (
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type statsEntry struct {
	stats   DashboardStats
	fetched time.Time
}

// StatsCache is an in-memory, per-user cache of dashboard counters with TTL.
// Loads run outside the lock; concurrent misses for one user share a load.
type StatsCache struct {
	mu       sync.RWMutex
	entries  map[string]statsEntry
	versions map[string]uint64
	ttl      time.Duration
	store    *Store
	loader   func(userID string) (DashboardStats, error)
	group    singleflight.Group
}

// NewStatsCache creates a StatsCache backed by the given Store.
func NewStatsCache(s *Store, ttl time.Duration) *StatsCache {
	c := &StatsCache{
		store:    s,
		ttl:      ttl,
		entries:  make(map[string]statsEntry),
		versions: make(map[string]uint64),
	}
	c.loader = c.load
	return c
}

func (c *StatsCache) valid(e statsEntry, ok bool) bool {
	return ok && time.Since(e.fetched) < c.ttl
}

// Invalidate drops the cached stats of one user so the next read reloads
// them. A load already in flight for that user is not cached.
func (c *StatsCache) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.versions[userID]++
	c.mu.Unlock()
}

// Stats returns the user's dashboard counters, loading them if the cached
// copy is missing or stale.
func (c *StatsCache) Stats(userID string) (DashboardStats, error) {
	c.mu.RLock()
	e, ok := c.entries[userID]
	version := c.versions[userID]
	c.mu.RUnlock()
	if c.valid(e, ok) {
		return e.stats, nil
	}

	key := userID + "#" + strconv.FormatUint(version, 10)
	v, err, _ := c.group.Do(key, func() (any, error) {
		stats, err := c.loader(userID)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.versions[userID] == version {
			c.entries[userID] = statsEntry{stats: stats, fetched: time.Now()}
		}
		c.mu.Unlock()
		return stats, nil
	})
	if err != nil {
		return DashboardStats{}, err
	}
	return v.(DashboardStats), nil
}

func (c *StatsCache) load(userID string) (DashboardStats, error) {
	platforms, err := c.store.ListPlatforms(userID)
	if err != nil {
		return DashboardStats{}, err
	}
	pending, err := c.store.CountRepurposed(userID, ReviewPending)
	if err != nil {
		return DashboardStats{}, err
	}
	stats := ComputeStats(platforms)
	stats.PendingReviews = pending
	return stats, nil
}

// ComputeStats aggregates the dashboard counters over a user's platforms.
func ComputeStats(platforms []Platform) DashboardStats {
	stats := DashboardStats{TotalPlatforms: len(platforms)}
	for _, p := range platforms {
		if p.Status == StatusConnected {
			stats.ConnectedPlatforms++
		}
		stats.TotalContent += p.ContentCount
		stats.TotalGaps += p.GapCount
	}
	return stats
}
