package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatsRepo struct {
	stats FleetStats
	err   error
	calls int
}

func (f *fakeStatsRepo) FleetStats(_ context.Context) (FleetStats, error) {
	f.calls++
	return f.stats, f.err
}

// fakeStatsCache is an in-memory stand-in storing JSON like the real cache.
type fakeStatsCache struct {
	entries map[string][]byte
	sets    int
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{entries: map[string][]byte{}}
}

func (f *fakeStatsCache) Get(_ context.Context, key string, out any) (bool, error) {
	raw, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (f *fakeStatsCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	f.sets++
	return nil
}

func TestFleetStats_ReadThrough(t *testing.T) {
	t.Parallel()

	repo := &fakeStatsRepo{stats: FleetStats{
		TotalVehicles:       12,
		AvailableVehicles:   9,
		PendingReservations: 3,
		ActiveReservations:  5,
	}}
	c := newFakeStatsCache()
	svc := NewStatsService(repo, c, time.Minute)

	first, err := svc.FleetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repo.stats, first)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, 1, c.sets)

	second, err := svc.FleetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repo.stats, second)
	assert.Equal(t, 1, repo.calls, "second read must come from the cache")
}

func TestFleetStats_NilCache(t *testing.T) {
	t.Parallel()

	repo := &fakeStatsRepo{stats: FleetStats{TotalVehicles: 1}}
	svc := NewStatsService(repo, nil, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := svc.FleetStats(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, repo.calls)
}

func TestFleetStats_RepoError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("query failed")
	svc := NewStatsService(&fakeStatsRepo{err: wantErr}, newFakeStatsCache(), time.Minute)

	_, err := svc.FleetStats(context.Background())
	assert.ErrorIs(t, err, wantErr)
}
