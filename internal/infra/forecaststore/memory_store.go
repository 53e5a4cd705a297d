package forecaststore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/packing-advisor/internal/domain/forecast"
)

type entry struct {
	payload   forecast.Forecast
	expiresAt time.Time
}

// MemoryStore is an in-memory forecast cache for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get implements forecast.Cache.
func (s *MemoryStore) Get(_ context.Context, key string) (forecast.Forecast, bool, error) {
	s.mu.RLock()
	rec, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return forecast.Forecast{}, false, nil
	}
	if s.expired(rec.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return forecast.Forecast{}, false, nil
	}
	return cloneForecast(rec.payload), true, nil
}

// Save caches the forecast with optional TTL.
func (s *MemoryStore) Save(_ context.Context, key string, f forecast.Forecast, ttl time.Duration) error {
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{payload: cloneForecast(f), expiresAt: exp}
	return nil
}

func (s *MemoryStore) expired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(s.now())
}

// cloneForecast copies the day slice so callers cannot mutate cached state.
func cloneForecast(f forecast.Forecast) forecast.Forecast {
	days := make([]forecast.Day, len(f.Days))
	copy(days, f.Days)
	f.Days = days
	return f
}

var _ forecast.Cache = (*MemoryStore)(nil)
