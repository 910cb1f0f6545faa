package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryReportCache is the single-instance fallback when Redis is not configured.
// Values are stored JSON encoded so callers never share pointers with the cache.
type InMemoryReportCache struct {
	entries         sync.Map // map[string]*cacheEntry
	logger          *zap.Logger
	cleanupInterval time.Duration
	stopCh          chan struct{}
	stopped         int32

	hits   int64
	misses int64
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e *cacheEntry) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemoryReportCacheOption is a functional option for configuring the cache
type InMemoryReportCacheOption func(*InMemoryReportCache)

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryReportCacheOption {
	return func(c *InMemoryReportCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCleanupInterval sets how often expired entries are swept
func WithCleanupInterval(d time.Duration) InMemoryReportCacheOption {
	return func(c *InMemoryReportCache) {
		if d > 0 {
			c.cleanupInterval = d
		}
	}
}

// NewInMemoryReportCache creates the cache and starts its cleanup goroutine
func NewInMemoryReportCache(opts ...InMemoryReportCacheOption) *InMemoryReportCache {
	c := &InMemoryReportCache{
		logger:          zap.NewNop(),
		cleanupInterval: defaultCleanupInterval,
		stopCh:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupExpired()
	return c
}

// Get decodes the cached value into dest
func (c *InMemoryReportCache) Get(_ context.Context, key string, dest any) (bool, error) {
	if value, ok := c.entries.Load(key); ok {
		entry := value.(*cacheEntry)
		if !entry.isExpired(time.Now()) {
			atomic.AddInt64(&c.hits, 1)
			if err := json.Unmarshal(entry.data, dest); err != nil {
				return false, fmt.Errorf("failed to decode %s: %w", key, err)
			}
			return true, nil
		}
		c.entries.Delete(key)
	}
	atomic.AddInt64(&c.misses, 1)
	return false, nil
}

// Set stores value until ttl elapses
func (c *InMemoryReportCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	c.entries.Store(key, &cacheEntry{data: data, expiresAt: time.Now().Add(ttl)})
	return nil
}

// DeletePrefix evicts every key that starts with prefix
func (c *InMemoryReportCache) DeletePrefix(_ context.Context, prefix string) error {
	deleted := 0
	c.entries.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			c.entries.Delete(key)
			deleted++
		}
		return true
	})
	c.logger.Debug("Invalidated cache prefix",
		zap.String("prefix", prefix),
		zap.Int("deleted", deleted))
	return nil
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *InMemoryReportCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns hit and miss counters
func (c *InMemoryReportCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of stored entries, expired ones included
func (c *InMemoryReportCache) Count() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *InMemoryReportCache) cleanupExpired() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						c.logger.Error("Panic in report cache cleanup", zap.Any("panic", r))
					}
				}()
				c.doCleanup()
			}()
		case <-c.stopCh:
			return
		}
	}
}

func (c *InMemoryReportCache) doCleanup() {
	now := time.Now()
	removed := 0
	c.entries.Range(func(key, value any) bool {
		if value.(*cacheEntry).isExpired(now) {
			c.entries.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("Removed expired report cache entries", zap.Int("count", removed))
	}
}
