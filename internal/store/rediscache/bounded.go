package rediscache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"adaptive-engine/internal/clock"
	"adaptive-engine/internal/models"
	"adaptive-engine/internal/ports"
)

// maxEntries and ttl are the spec §5 bounds: "bounded (<= 50 entries)
// with a 5-minute TTL and a clock-based eviction".
const (
	maxEntries = 50
	ttl        = 5 * time.Minute
)

type entry struct {
	key     string
	rows    []models.TagMastery
	expires time.Time
	elem    *list.Element
}

// FocusAnalyticsCache decorates a ports.TagMasteryStore with a bounded,
// TTL'd in-memory cache over ListByUser — the focus-area analytics read
// spec §5 calls out as a pure optimization over tag mastery, never an
// authoritative source. Grounded on shared/cache/go/cache_manager.go's
// CacheManager, scaled down to the single bounded read path this engine
// needs rather than the teacher's full warm/invalidate/metrics apparatus.
type FocusAnalyticsCache struct {
	underlying ports.TagMasteryStore
	clock      clock.Clock

	mu      sync.Mutex
	entries map[string]*entry
	order   *list.List // front = most recently used
}

func NewFocusAnalyticsCache(underlying ports.TagMasteryStore, clk clock.Clock) *FocusAnalyticsCache {
	return &FocusAnalyticsCache{
		underlying: underlying,
		clock:      clk,
		entries:    make(map[string]*entry),
		order:      list.New(),
	}
}

func (c *FocusAnalyticsCache) Get(ctx context.Context, userID, tag string) (*models.TagMastery, error) {
	return c.underlying.Get(ctx, userID, tag)
}

// ListByUser serves from cache when a fresh entry exists, else loads from
// the underlying store and caches the result, evicting the
// least-recently-used entry if the cache is at capacity.
func (c *FocusAnalyticsCache) ListByUser(ctx context.Context, userID string) ([]models.TagMastery, error) {
	now := c.clock.Now()

	c.mu.Lock()
	if e, ok := c.entries[userID]; ok {
		if now.Before(e.expires) {
			c.order.MoveToFront(e.elem)
			rows := append([]models.TagMastery(nil), e.rows...)
			c.mu.Unlock()
			return rows, nil
		}
		c.removeLocked(e)
	}
	c.mu.Unlock()

	rows, err := c.underlying.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.putLocked(userID, rows, now)
	c.mu.Unlock()

	return rows, nil
}

// Replace invalidates userID's cached entry and delegates to the
// underlying store — cache is never authoritative, so a write always
// passes through.
func (c *FocusAnalyticsCache) Replace(ctx context.Context, userID string, rows []models.TagMastery) error {
	c.mu.Lock()
	if e, ok := c.entries[userID]; ok {
		c.removeLocked(e)
	}
	c.mu.Unlock()
	return c.underlying.Replace(ctx, userID, rows)
}

func (c *FocusAnalyticsCache) putLocked(userID string, rows []models.TagMastery, now time.Time) {
	if e, ok := c.entries[userID]; ok {
		c.removeLocked(e)
	}
	for len(c.entries) >= maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest.Value.(*entry))
	}
	e := &entry{key: userID, rows: rows, expires: now.Add(ttl)}
	e.elem = c.order.PushFront(e)
	c.entries[userID] = e
}

func (c *FocusAnalyticsCache) removeLocked(e *entry) {
	delete(c.entries, e.key)
	c.order.Remove(e.elem)
}
