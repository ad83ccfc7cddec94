package quiz

import (
	"context"
	"errors"
	"testing"
	"time"

	"jeopardy-trainer-go/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecencyOffset(t *testing.T) {
	cases := []struct {
		u     float64
		total int
		want  int
	}{
		{0, 100, 0},
		{0.5, 100, 19},
		{0.9, 100, 65},
		{0.999, 100, 99},
		{0.99999999, 100, 99},
		{0.3, 1, 0},
		{0.3, 0, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RecencyOffset(tc.u, tc.total), "u=%v total=%d", tc.u, tc.total)
	}
}

func TestRecencyOffsetFavoursRecent(t *testing.T) {
	const total = 1000
	recent := 0
	for i := 0; i < 10000; i++ {
		u := (float64(i) + 0.5) / 10000
		off := RecencyOffset(u, total)
		require.GreaterOrEqual(t, off, 0)
		require.Less(t, off, total)
		if off < total/5 {
			recent++
		}
	}
	// P(x < 0.2) = 1 - e^-0.7, about 50%
	assert.InDelta(t, 0.503, float64(recent)/10000, 0.01)
}

func TestMemoryCountCacheExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewMemoryCountCache(5*time.Minute, func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", 42))
	got, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, got)

	now = now.Add(5 * time.Minute)
	_, ok, _ = cache.Get(ctx, "k")
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "k", 1))
	require.NoError(t, cache.Purge(ctx))
	_, ok, _ = cache.Get(ctx, "k")
	assert.False(t, ok)
}

func TestFilter(t *testing.T) {
	f := NewFilter(" all ", []string{"Teen", "kids", "teen"})
	assert.Equal(t, "", f.Category)
	assert.Equal(t, []string{"kids", "teen"}, f.GameTypes)
	assert.Equal(t, "cat=|types=kids,teen", f.Key())
	assert.NotEqual(t, f.Key(), NewFilter("SCIENCE", nil).Key())

	tags, err := ParseGameTypes("college, kids")
	require.NoError(t, err)
	assert.Equal(t, []string{"college", "kids"}, tags)

	tags, err = ParseGameTypes("")
	require.NoError(t, err)
	assert.Empty(t, tags)

	_, err = ParseGameTypes("kids,seniors")
	assert.True(t, errors.Is(err, services.Validation))
}

func newSelector(src *memStore, u float64) *Selector {
	cache := NewMemoryCountCache(5*time.Minute, nil)
	return NewSelector(src, cache, func() float64 { return u }, discardLogger())
}

func TestPickZeroMatchesIsNotFound(t *testing.T) {
	src := newMemStore()
	src.addQuestion(1, "SCIENCE", "", time.Now())
	sel := newSelector(src, 0.2)

	_, err := sel.Pick(context.Background(), NewFilter("HISTORY", nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.NotFound))
	assert.Equal(t, "No questions found", err.Error())
}

func TestPickUsesCachedCount(t *testing.T) {
	src := newMemStore()
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 10; i++ {
		src.addQuestion(i, "SCIENCE", "", base.AddDate(0, 0, int(i)))
	}
	sel := newSelector(src, 0)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		q, err := sel.Pick(ctx, NewFilter("all", nil))
		require.NoError(t, err)
		assert.Equal(t, int64(10), q.ID, "u=0 picks the newest clue")
	}
	assert.Equal(t, 1, src.counts)
}

func TestPickRecountsWhenCacheIsStale(t *testing.T) {
	src := newMemStore()
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 10; i++ {
		src.addQuestion(i, "SCIENCE", "", base.AddDate(0, 0, int(i)))
	}
	sel := newSelector(src, 0.999)
	ctx := context.Background()
	_, err := sel.Pick(ctx, NewFilter("", nil))
	require.NoError(t, err)

	// Shrink the set behind the cache's back.
	for i := int64(1); i <= 7; i++ {
		src.questions[i].Archived = true
	}
	q, err := sel.Pick(ctx, NewFilter("", nil))
	require.NoError(t, err)
	assert.Equal(t, int64(8), q.ID)
	assert.Equal(t, 2, src.counts)
}

func TestPickGameTypeFilter(t *testing.T) {
	src := newMemStore()
	now := time.Now()
	src.addQuestion(1, "SCIENCE", "", now)
	src.addQuestion(2, "SCIENCE", "kids", now.Add(-time.Hour))
	sel := newSelector(src, 0.5)
	q, err := sel.Pick(context.Background(), NewFilter("", []string{"kids"}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), q.ID)
}

func TestArchiveRoundTripRestoresVisibility(t *testing.T) {
	src := newMemStore()
	src.addQuestion(42, "SCIENCE", "", time.Now())
	sel := newSelector(src, 0.1)
	catalog := NewCatalog(src, sel)
	ctx := context.Background()
	filter := NewFilter("SCIENCE", nil)

	q, err := sel.Pick(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(42), q.ID)

	require.NoError(t, catalog.Archive(ctx, 42, ""))
	archived, err := catalog.Question(ctx, 42)
	require.NoError(t, err)
	assert.True(t, archived.Archived)
	require.NotNil(t, archived.ArchivedReason)
	assert.Equal(t, DefaultArchiveReason, *archived.ArchivedReason)
	assert.NotNil(t, archived.ArchivedAt)

	_, err = sel.Pick(ctx, filter)
	assert.True(t, errors.Is(err, services.NotFound))

	list, err := catalog.Archived(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, catalog.Unarchive(ctx, 42))
	restored, err := catalog.Question(ctx, 42)
	require.NoError(t, err)
	assert.False(t, restored.Archived)
	assert.Nil(t, restored.ArchivedReason)
	assert.Nil(t, restored.ArchivedAt)

	q, err = sel.Pick(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(42), q.ID)
}

func TestCatalogUnknownQuestion(t *testing.T) {
	src := newMemStore()
	catalog := NewCatalog(src, newSelector(src, 0))
	err := catalog.Archive(context.Background(), 7, "bad audio")
	assert.True(t, errors.Is(err, services.NotFound))
	_, err = catalog.Question(context.Background(), 7)
	assert.True(t, errors.Is(err, services.NotFound))
	err = catalog.Unarchive(context.Background(), 0)
	assert.True(t, errors.Is(err, services.Validation))
}
