package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/internal/traces"
	"github.com/huangsam/snowdash/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// Session loads dashboard data through a TTL cache in front of the warehouse.
// A Session is created once per process or request scope and is safe for concurrent use
// when its store is.
type Session struct {
	warehouse contract.Warehouse
	store     contract.CacheStore
	observer  contract.CacheObserver
	ttl       time.Duration
	now       func() time.Time
	identity  string
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithTTL sets how long cached results stay fresh.
func WithTTL(ttl time.Duration) SessionOption {
	return func(s *Session) { s.ttl = ttl }
}

// WithClock replaces the wall clock used for staleness checks.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithObserver reports cache hits and misses.
func WithObserver(observer contract.CacheObserver) SessionOption {
	return func(s *Session) { s.observer = observer }
}

// WithIdentity scopes cache keys to one warehouse so shared stores never mix results.
func WithIdentity(backend schema.WarehouseBackend, dsn string) SessionOption {
	return func(s *Session) {
		sum := sha256.Sum256([]byte(string(backend) + "|" + dsn))
		s.identity = fmt.Sprintf("%x", sum[:8])
	}
}

// NewSession creates a session over the given warehouse and cache store.
// A nil store disables caching.
func NewSession(wh contract.Warehouse, store contract.CacheStore, opts ...SessionOption) *Session {
	s := &Session{
		warehouse: wh,
		store:     store,
		ttl:       contract.DefaultCacheTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadTrends returns the week-over-week trend rows.
func (s *Session) LoadTrends(ctx context.Context) ([]schema.TrendMetric, error) {
	return cachedQuery(ctx, s, "trends", nil, s.warehouse.Trends)
}

// LoadEfficiency returns per-warehouse efficiency scores.
func (s *Session) LoadEfficiency(ctx context.Context, lookbackDays int) ([]schema.EfficiencyRecord, error) {
	return cachedQuery(ctx, s, "efficiency", []any{lookbackDays}, func(ctx context.Context) ([]schema.EfficiencyRecord, error) {
		return s.warehouse.Efficiency(ctx, lookbackDays)
	})
}

// LoadAnomalies returns the anomalous days for the window and threshold.
func (s *Session) LoadAnomalies(ctx context.Context, lookbackDays int, threshold float64) ([]schema.AnomalyRecord, error) {
	return cachedQuery(ctx, s, "anomalies", []any{lookbackDays, threshold}, func(ctx context.Context) ([]schema.AnomalyRecord, error) {
		return s.warehouse.Anomalies(ctx, lookbackDays, threshold)
	})
}

// LoadDailyCredits returns the daily credit series.
func (s *Session) LoadDailyCredits(ctx context.Context, lookbackDays int) ([]schema.DailyMetricPoint, error) {
	return cachedQuery(ctx, s, "daily_credits", []any{lookbackDays}, func(ctx context.Context) ([]schema.DailyMetricPoint, error) {
		return s.warehouse.DailyCredits(ctx, lookbackDays)
	})
}

// LoadDailyQueries returns the daily query count series.
func (s *Session) LoadDailyQueries(ctx context.Context, lookbackDays int) ([]schema.DailyMetricPoint, error) {
	return cachedQuery(ctx, s, "daily_queries", []any{lookbackDays}, func(ctx context.Context) ([]schema.DailyMetricPoint, error) {
		return s.warehouse.DailyQueries(ctx, lookbackDays)
	})
}

// cachedQuery serves a fresh cached result or fetches and stores a new one.
func cachedQuery[T any](ctx context.Context, s *Session, operation string, params []any, fetch func(context.Context) (T, error)) (T, error) {
	ctx, span := traces.StartSpan(ctx, "session."+operation, traces.Operation(operation))
	defer span.End()

	if s.store == nil {
		span.SetAttributes(traces.CacheHit(false))
		return fetch(ctx)
	}

	key := generateCacheKey(s.identity, operation, params)
	var result T
	if checkCacheHit(s, key, &result) {
		span.SetAttributes(traces.CacheHit(true))
		if s.observer != nil {
			s.observer.CacheHit(operation)
		}
		return result, nil
	}
	span.SetAttributes(traces.CacheHit(false))
	if s.observer != nil {
		s.observer.CacheMiss(operation)
	}

	// Cache miss: fetch and store
	result, err := fetch(ctx)
	if err != nil {
		traces.Fail(span, err)
		return result, err
	}
	data, err := json.Marshal(result)
	if err != nil {
		contract.LogWarn("Failed to encode "+operation+" for cache", err)
		return result, nil
	}
	if err := s.store.Set(key, data, currentCacheVersion, s.now().Unix()); err != nil {
		contract.LogWarn("Failed to cache "+operation+" result", err)
	}
	return result, nil
}

// checkCacheHit decodes a cached entry into dst when it is current and fresh.
func checkCacheHit[T any](s *Session, key string, dst *T) bool {
	data, version, ts, err := s.store.Get(key)
	if err != nil {
		return false // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion {
		return false
	}
	if s.now().Sub(time.Unix(ts, 0)) > s.ttl {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// generateCacheKey creates a unique key from the warehouse identity, operation and parameters.
func generateCacheKey(identity, operation string, params []any) string {
	key := fmt.Sprintf("%s:%s:%v", identity, operation, params)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
