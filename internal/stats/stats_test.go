package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jeopardy-trainer-go/internal/models"
	"jeopardy-trainer-go/internal/services"
)

type fakeStore struct {
	since     time.Time
	failDaily bool
}

func (f *fakeStore) OverallTally(_ context.Context, _ string, includeReviewed bool) (models.AttemptTally, error) {
	if includeReviewed {
		return models.AttemptTally{Total: 12, Correct: 9}, nil
	}
	return models.AttemptTally{Total: 3, Correct: 2}, nil
}

func (f *fakeStore) CategoryTallies(context.Context, string, bool) ([]models.CategoryTally, error) {
	history := "HISTORY"
	return []models.CategoryTally{
		{Category: &history, AttemptTally: models.AttemptTally{Total: 4, Correct: 1}},
		{Category: nil, AttemptTally: models.AttemptTally{Total: 2, Correct: 2}},
	}, nil
}

func (f *fakeStore) RecentSessionTallies(_ context.Context, _ string, _ bool, limit int) ([]models.SessionTally, error) {
	return []models.SessionTally{{ID: "s1", AttemptTally: models.AttemptTally{Total: 0}}}, nil
}

func (f *fakeStore) DailyTallies(_ context.Context, _ string, _ bool, since time.Time) ([]models.DailyTally, error) {
	f.since = since
	if f.failDaily {
		return nil, errors.New("db down")
	}
	return []models.DailyTally{
		{Day: since.AddDate(0, 0, 1), AttemptTally: models.AttemptTally{Total: 3, Correct: 1}},
	}, nil
}

func fixedService(st Store) *Service {
	svc := NewService(st)
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC) }
	return svc
}

func TestDashboard(t *testing.T) {
	st := &fakeStore{}
	d, err := fixedService(st).Dashboard(context.Background(), "u1", Query{Days: 3})
	require.NoError(t, err)

	assert.Equal(t, Totals{Total: 3, Correct: 2, Accuracy: 67}, d.Overall)
	require.Len(t, d.CategoryBreakdown, 2)
	assert.Equal(t, "HISTORY", d.CategoryBreakdown[0].Category)
	assert.Equal(t, 25, d.CategoryBreakdown[0].Accuracy)
	assert.Equal(t, "Uncategorized", d.CategoryBreakdown[1].Category)
	assert.Equal(t, 0, d.RecentSessions[0].Accuracy)

	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), st.since)
	require.Len(t, d.DailyTrend, 3)
	assert.Equal(t, "2024-03-08", d.DailyTrend[0].Date)
	assert.Equal(t, 0, d.DailyTrend[0].Total)
	assert.Equal(t, "2024-03-09", d.DailyTrend[1].Date)
	assert.Equal(t, 3, d.DailyTrend[1].Total)
	assert.Equal(t, "2024-03-10", d.DailyTrend[2].Date)
}

func TestDashboardIncludesReviewed(t *testing.T) {
	d, err := fixedService(&fakeStore{}).Dashboard(context.Background(), "u1", Query{IncludeReviewed: true})
	require.NoError(t, err)
	assert.Equal(t, 12, d.Overall.Total)
	assert.Len(t, d.DailyTrend, DefaultTrendDays)
}

func TestDashboardRejectsBadDays(t *testing.T) {
	_, err := fixedService(&fakeStore{}).Dashboard(context.Background(), "u1", Query{Days: -1})
	assert.ErrorIs(t, err, services.Validation)
	_, err = fixedService(&fakeStore{}).Dashboard(context.Background(), "u1", Query{Days: MaxTrendDays + 1})
	assert.ErrorIs(t, err, services.Validation)
}

func TestDashboardPropagatesStoreError(t *testing.T) {
	_, err := fixedService(&fakeStore{failDaily: true}).Dashboard(context.Background(), "u1", Query{})
	assert.Error(t, err)
}
