package perf

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanscope/lanscope/internal/testutil"
	"github.com/lanscope/lanscope/pkg/models"
)

func newTestSampleStore(t *testing.T) *sampleStore {
	t.Helper()
	db := testutil.NewStore(t)
	require.NoError(t, db.Migrate(context.Background(), "perf", migrations))
	return newSampleStore(db)
}

func sampleAt(ts time.Time, bandwidth, latency float64) models.PerformanceSample {
	return models.PerformanceSample{
		BandwidthMbps: bandwidth,
		LatencyMs:     latency,
		CreatedAt:     ts,
	}
}

func TestSampleStoreInsertAndList(t *testing.T) {
	s := newTestSampleStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	first, err := s.Insert(ctx, sampleAt(base, 90, 20))
	require.NoError(t, err)
	assert.Greater(t, first.ID, int64(0))

	second, err := s.Insert(ctx, sampleAt(base.Add(time.Minute), 85, 30))
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	samples, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	// Newest first.
	assert.Equal(t, second.ID, samples[0].ID)
	assert.Equal(t, 85.0, samples[0].BandwidthMbps)
	assert.Equal(t, 30.0, samples[0].LatencyMs)
	assert.Equal(t, first.ID, samples[1].ID)
}

func TestSampleStoreListLimit(t *testing.T) {
	s := newTestSampleStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := s.Insert(ctx, sampleAt(base.Add(time.Duration(i)*time.Minute), 50, 25))
		require.NoError(t, err)
	}

	samples, err := s.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, samples, 3)
}

func TestSampleStorePrune(t *testing.T) {
	s := newTestSampleStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	var last models.PerformanceSample
	for i := 0; i < 6; i++ {
		var err error
		last, err = s.Insert(ctx, sampleAt(base.Add(time.Duration(i)*time.Minute), float64(i), 25))
		require.NoError(t, err)
	}

	require.NoError(t, s.Prune(ctx, 4))

	samples, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, samples, 4)

	// The newest samples survive the prune.
	assert.Equal(t, last.ID, samples[0].ID)
	assert.Equal(t, 5.0, samples[0].BandwidthMbps)
	assert.Equal(t, 2.0, samples[3].BandwidthMbps)
}

func TestSampleStoreEmptyList(t *testing.T) {
	s := newTestSampleStore(t)

	samples, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, samples)
}
