package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportCache_GetOrBuild(t *testing.T) {
	cache := NewReportCache(time.Minute)
	defer cache.Stop()

	builds := 0
	build := func() (*Report, error) {
		builds++
		return &Report{CompanyID: "c1", GreenScore: 42}, nil
	}

	first, err := cache.GetOrBuild("c1", build)
	require.NoError(t, err)
	second, err := cache.GetOrBuild("c1", build)
	require.NoError(t, err)

	assert.Equal(t, 1, builds)
	assert.Same(t, first, second)

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 0.5, stats.HitRate)
}

func TestReportCache_Invalidate(t *testing.T) {
	cache := NewReportCache(time.Minute)
	defer cache.Stop()

	cache.Set("c1", &Report{CompanyID: "c1"})
	cache.Set("c2", &Report{CompanyID: "c2"})
	cache.Invalidate("c1")

	_, ok := cache.Get("c1")
	assert.False(t, ok)
	report, ok := cache.Get("c2")
	assert.True(t, ok)
	assert.Equal(t, "c2", report.CompanyID)
}

func TestReportCache_Expiration(t *testing.T) {
	cache := NewReportCache(time.Minute)
	defer cache.Stop()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Set("c1", &Report{CompanyID: "c1"})
	_, ok := cache.Get("c1")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get("c1")
	assert.False(t, ok)

	cache.removeExpired()
	assert.Equal(t, 0, cache.Stats().Size)
}

func TestReportCache_BuildErrorNotCached(t *testing.T) {
	cache := NewReportCache(time.Minute)
	defer cache.Stop()

	_, err := cache.GetOrBuild("c1", func() (*Report, error) {
		return nil, errors.New("boom")
	})
	assert.EqualError(t, err, "boom")

	_, ok := cache.Get("c1")
	assert.False(t, ok)
}
