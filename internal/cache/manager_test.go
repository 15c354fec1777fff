package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"admission-analytics/internal/analytics"
	"admission-analytics/internal/database"
)

// MockSource is a mock implementation of SnapshotSource
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Snapshot(ctx context.Context) (*analytics.AdmissionAnalytics, error) {
	args := m.Called(ctx)
	var snapshot *analytics.AdmissionAnalytics
	if v := args.Get(0); v != nil {
		snapshot = v.(*analytics.AdmissionAnalytics)
	}
	return snapshot, args.Error(1)
}

func TestCacheManager(t *testing.T) {
	ctx := context.Background()

	t.Run("EnabledCache", func(t *testing.T) {
		source := &MockSource{}
		source.On("Snapshot", mock.Anything).Return(analytics.SampleData(), nil).Once()

		manager := NewManager(source, 5*time.Minute)

		first, err := manager.Snapshot(ctx)
		require.NoError(t, err)
		second, err := manager.Snapshot(ctx)
		require.NoError(t, err)

		assert.Equal(t, analytics.SampleData(), first)
		assert.Equal(t, first, second)

		stats := manager.GetStats()
		assert.False(t, stats.Disabled)
		assert.Equal(t, 5*time.Minute, stats.TTL)
		assert.True(t, stats.Cached)
		assert.Equal(t, uint64(1), stats.Hits)
		assert.Equal(t, uint64(1), stats.Misses)
		source.AssertExpectations(t)
	})

	t.Run("DisabledCache", func(t *testing.T) {
		source := &MockSource{}
		source.On("Snapshot", mock.Anything).Return(analytics.SampleData(), nil).Twice()

		manager := NewManager(source, 0)

		manager.Snapshot(ctx)
		manager.Snapshot(ctx)

		stats := manager.GetStats()
		assert.True(t, stats.Disabled)
		assert.False(t, stats.Cached)
		source.AssertExpectations(t)
	})

	t.Run("Expiry", func(t *testing.T) {
		source := &MockSource{}
		source.On("Snapshot", mock.Anything).Return(analytics.SampleData(), nil).Twice()

		now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
		manager := NewManager(source, time.Minute)
		manager.now = func() time.Time { return now }

		manager.Snapshot(ctx)
		now = now.Add(30 * time.Second)
		manager.Snapshot(ctx)
		now = now.Add(31 * time.Second)
		assert.False(t, manager.GetStats().Cached)
		manager.Snapshot(ctx)

		stats := manager.GetStats()
		assert.Equal(t, uint64(1), stats.Hits)
		assert.Equal(t, uint64(2), stats.Misses)
		source.AssertExpectations(t)
	})

	t.Run("ErrorsNotCached", func(t *testing.T) {
		source := &MockSource{}
		source.On("Snapshot", mock.Anything).Return(nil, database.ErrNoSnapshot).Once()
		source.On("Snapshot", mock.Anything).Return(analytics.SampleData(), nil).Once()

		manager := NewManager(source, time.Minute)

		_, err := manager.Snapshot(ctx)
		assert.ErrorIs(t, err, database.ErrNoSnapshot)

		snapshot, err := manager.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1200, snapshot.TotalApplicants)
		source.AssertExpectations(t)
	})

	t.Run("StoreErrorAfterExpiry", func(t *testing.T) {
		storeErr := errors.New("database is locked")
		source := &MockSource{}
		source.On("Snapshot", mock.Anything).Return(analytics.SampleData(), nil).Once()
		source.On("Snapshot", mock.Anything).Return(nil, storeErr).Once()
		source.On("Snapshot", mock.Anything).Return(analytics.SampleData(), nil).Once()

		now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
		manager := NewManager(source, time.Minute)
		manager.now = func() time.Time { return now }

		_, err := manager.Snapshot(ctx)
		require.NoError(t, err)

		// an expired entry is not served when the store fails
		now = now.Add(2 * time.Minute)
		snapshot, err := manager.Snapshot(ctx)
		assert.True(t, errors.Is(err, storeErr))
		assert.Nil(t, snapshot)
		assert.False(t, manager.GetStats().Cached)

		snapshot, err = manager.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1200, snapshot.TotalApplicants)
		assert.True(t, manager.GetStats().Cached)
		source.AssertExpectations(t)
	})

	t.Run("CallersCannotMutateCache", func(t *testing.T) {
		source := &MockSource{}
		source.On("Snapshot", mock.Anything).Return(analytics.SampleData(), nil).Once()

		manager := NewManager(source, time.Minute)
		first, _ := manager.Snapshot(ctx)
		first.ApplicationTrends[0].Applicants = 0

		second, _ := manager.Snapshot(ctx)
		assert.Equal(t, 100, second.ApplicationTrends[0].Applicants)
	})
}

func TestCacheManager_WithStore(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Analytics.Seed(ctx, analytics.SampleData()))

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	manager := NewManager(db.Analytics, time.Minute)
	manager.now = func() time.Time { return now }
	_, err = manager.Snapshot(ctx)
	require.NoError(t, err)

	replacement := &analytics.AdmissionAnalytics{TotalApplicants: 7, ApplicationsPerProgram: []analytics.ProgramCount{}, ApplicationTrends: []analytics.TrendPoint{}}
	require.NoError(t, db.Analytics.Seed(ctx, replacement))

	cached, err := manager.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1200, cached.TotalApplicants, "served from cache until expiry")

	now = now.Add(2 * time.Minute)
	fresh, err := manager.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, replacement, fresh)
}
