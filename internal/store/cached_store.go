package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"heli-training/logbook/internal/common"
	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/logging"
	"heli-training/logbook/internal/metrics"
	"heli-training/logbook/internal/models"
)

const listCacheKey = string(constants.CachePrefixFlightLogs) + "list"

// CachedStore serves List from a cache and drops the cached copy on every write.
type CachedStore struct {
	inner   RecordStore
	cache   common.CacheInterface
	ttl     time.Duration
	metrics *metrics.MetricsRegistry
	log     *zap.SugaredLogger

	// generation moves on every write so a List that raced a write never
	// caches what it read before the write landed.
	mu         sync.Mutex
	generation uint64
}

var _ RecordStore = (*CachedStore)(nil)

// NewCachedStore wraps inner. metricsReg may be nil.
func NewCachedStore(inner RecordStore, cache common.CacheInterface, ttl time.Duration, metricsReg *metrics.MetricsRegistry) *CachedStore {
	return &CachedStore{
		inner:   inner,
		cache:   cache,
		ttl:     ttl,
		metrics: metricsReg,
		log:     logging.Named("cached_store"),
	}
}

func (s *CachedStore) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *CachedStore) invalidate() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
	s.cache.Delete(listCacheKey)
}

// Values are cached as a JSON string so the in-process and Redis caches
// hand back the same type.
func (s *CachedStore) cached() ([]models.FlightLog, bool) {
	val, found := s.cache.Get(listCacheKey)
	if !found {
		return nil, false
	}
	raw, ok := val.(string)
	if !ok {
		return nil, false
	}
	var records []models.FlightLog
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.log.Warnw("discarding undecodable cached flight logs", "error", err)
		return nil, false
	}
	return records, true
}

func (s *CachedStore) List(ctx context.Context) []models.FlightLog {
	if records, ok := s.cached(); ok {
		if s.metrics != nil {
			s.metrics.CacheHitsTotal.WithLabelValues(listCacheKey).Inc()
		}
		return records
	}
	if s.metrics != nil {
		s.metrics.CacheMissesTotal.WithLabelValues(listCacheKey).Inc()
	}

	gen := s.currentGeneration()
	records := s.inner.List(ctx)

	raw, err := json.Marshal(records)
	if err != nil {
		return records
	}
	s.mu.Lock()
	if gen == s.generation {
		s.cache.Set(listCacheKey, string(raw), s.ttl)
	}
	s.mu.Unlock()
	return records
}

func (s *CachedStore) Get(ctx context.Context, id string) (models.FlightLog, bool) {
	for _, r := range s.List(ctx) {
		if r.ID == id {
			return r, true
		}
	}
	return models.FlightLog{}, false
}

func (s *CachedStore) Put(ctx context.Context, record models.FlightLog) error {
	defer s.invalidate()
	return s.inner.Put(ctx, record)
}

func (s *CachedStore) Delete(ctx context.Context, id string) error {
	defer s.invalidate()
	return s.inner.Delete(ctx, id)
}

func (s *CachedStore) Replace(ctx context.Context, records []models.FlightLog) error {
	defer s.invalidate()
	return s.inner.Replace(ctx, records)
}

func (s *CachedStore) Clear(ctx context.Context) error {
	defer s.invalidate()
	return s.inner.Clear(ctx)
}

func (s *CachedStore) Aggregate(ctx context.Context, pred models.RecordPredicate) []models.FlightLog {
	return Filter(s.List(ctx), pred)
}
