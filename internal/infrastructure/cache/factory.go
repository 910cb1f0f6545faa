package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/buildledger/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ReportCache is what both cache implementations provide
type ReportCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

var (
	_ ReportCache = (*RedisReportCache)(nil)
	_ ReportCache = (*InMemoryReportCache)(nil)
)

// ReportCacheFactory picks a cache implementation from configuration
type ReportCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ReportCacheFactoryOption is a functional option for configuring the factory
type ReportCacheFactoryOption func(*ReportCacheFactory)

// WithLogger sets the logger for the factory and the caches it creates
func WithLogger(logger *zap.Logger) ReportCacheFactoryOption {
	return func(f *ReportCacheFactory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to the
// in-memory cache. Default is true.
func WithInMemoryFallback(allow bool) ReportCacheFactoryOption {
	return func(f *ReportCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewReportCacheFactory creates a new factory
func NewReportCacheFactory(cfg config.RedisConfig, opts ...ReportCacheFactoryOption) *ReportCacheFactory {
	f := &ReportCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache connects to the configured Redis
func (f *ReportCacheFactory) CreateRedisCache() (*RedisReportCache, error) {
	c, err := NewRedisReportCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, WithRedisLogger(f.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis report cache: %w", err)
	}
	return c, nil
}

// CreateInMemoryCache creates a process-local cache.
// Instances behind a load balancer will not see each other's invalidations.
func (f *ReportCacheFactory) CreateInMemoryCache() *InMemoryReportCache {
	return NewInMemoryReportCache(WithInMemoryLogger(f.logger))
}

// CreateCache returns Redis when it is enabled and reachable, otherwise the
// in-memory cache if fallback is allowed
func (f *ReportCacheFactory) CreateCache() (ReportCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory report cache")
		return f.CreateInMemoryCache(), nil
	}

	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("Using Redis report cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for report cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory report cache", zap.Error(err))
	return f.CreateInMemoryCache(), nil
}
