package cache

import (
	"context"
	"sync"
	"time"

	"admission-analytics/internal/analytics"
)

// SnapshotSource reads the stored analytics snapshot
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*analytics.AdmissionAnalytics, error)
}

// CachedSnapshot represents an in-memory cached snapshot with expiry
type CachedSnapshot struct {
	Snapshot  *analytics.AdmissionAnalytics
	ExpiresAt time.Time
}

// IsExpired checks if the cached snapshot has expired at now
func (c *CachedSnapshot) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// CacheStats holds cache statistics
type CacheStats struct {
	Disabled bool
	TTL      time.Duration
	Cached   bool
	Hits     uint64
	Misses   uint64
}

// Manager keeps the last snapshot read from the store in memory for ttl.
// Errors are never cached.
type Manager struct {
	source   SnapshotSource
	disabled bool
	ttl      time.Duration
	now      func() time.Time

	mu     sync.Mutex
	entry  *CachedSnapshot
	hits   uint64
	misses uint64
}

// NewManager creates a new cache manager. A ttl <= 0 disables caching and
// every call goes to source.
func NewManager(source SnapshotSource, ttl time.Duration) *Manager {
	return &Manager{
		source:   source,
		disabled: ttl <= 0,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Snapshot returns a copy of the cached snapshot, reading through to the
// source on a miss
func (m *Manager) Snapshot(ctx context.Context) (*analytics.AdmissionAnalytics, error) {
	if m.disabled {
		return m.source.Snapshot(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.entry != nil && !m.entry.IsExpired(now) {
		m.hits++
		return m.entry.Snapshot.Clone(), nil
	}

	m.misses++
	m.entry = nil

	snapshot, err := m.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	m.entry = &CachedSnapshot{
		Snapshot:  snapshot.Clone(),
		ExpiresAt: now.Add(m.ttl),
	}
	return snapshot, nil
}

// GetStats returns cache statistics
func (m *Manager) GetStats() CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return CacheStats{
		Disabled: m.disabled,
		TTL:      m.ttl,
		Cached:   m.entry != nil && !m.entry.IsExpired(m.now()),
		Hits:     m.hits,
		Misses:   m.misses,
	}
}
