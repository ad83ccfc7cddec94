// Package stats builds the practice dashboard from recorded attempts.
package stats

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"jeopardy-trainer-go/internal/models"
	"jeopardy-trainer-go/internal/quiz"
	"jeopardy-trainer-go/internal/services"
)

const (
	DefaultTrendDays = 14
	MaxTrendDays     = 90
	RecentSessions   = 10
)

// Store aggregates attempts. includeReviewed=false drops attempts made in review sessions.
type Store interface {
	OverallTally(ctx context.Context, userID string, includeReviewed bool) (models.AttemptTally, error)
	CategoryTallies(ctx context.Context, userID string, includeReviewed bool) ([]models.CategoryTally, error)
	RecentSessionTallies(ctx context.Context, userID string, includeReviewed bool, limit int) ([]models.SessionTally, error)
	DailyTallies(ctx context.Context, userID string, includeReviewed bool, since time.Time) ([]models.DailyTally, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(st Store) *Service {
	return &Service{store: st, now: func() time.Time { return time.Now().UTC() }}
}

type Query struct {
	IncludeReviewed bool
	Days            int
}

type Totals struct {
	Total    int `json:"total"`
	Correct  int `json:"correct"`
	Accuracy int `json:"accuracy"`
}

type CategoryStats struct {
	Category string `json:"category"`
	Totals
}

type SessionStats struct {
	ID              string     `json:"id"`
	IsReviewSession bool       `json:"is_review_session"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	Totals
}

type DayStats struct {
	Date string `json:"date"`
	Totals
}

type Dashboard struct {
	Overall           Totals          `json:"overall"`
	CategoryBreakdown []CategoryStats `json:"categoryBreakdown"`
	RecentSessions    []SessionStats  `json:"recentSessions"`
	DailyTrend        []DayStats      `json:"dailyTrend"`
}

func (s *Service) Dashboard(ctx context.Context, userID string, q Query) (Dashboard, error) {
	if q.Days == 0 {
		q.Days = DefaultTrendDays
	}
	if q.Days < 1 || q.Days > MaxTrendDays {
		return Dashboard{}, services.ErrBadRequest("Invalid days parameter")
	}

	today := s.now().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(q.Days - 1))

	var (
		overall    models.AttemptTally
		categories []models.CategoryTally
		sessions   []models.SessionTally
		daily      []models.DailyTally
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		overall, err = s.store.OverallTally(gctx, userID, q.IncludeReviewed)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.store.CategoryTallies(gctx, userID, q.IncludeReviewed)
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = s.store.RecentSessionTallies(gctx, userID, q.IncludeReviewed, RecentSessions)
		return err
	})
	g.Go(func() error {
		var err error
		daily, err = s.store.DailyTallies(gctx, userID, q.IncludeReviewed, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	out := Dashboard{
		Overall:           totals(overall),
		CategoryBreakdown: make([]CategoryStats, 0, len(categories)),
		RecentSessions:    make([]SessionStats, 0, len(sessions)),
		DailyTrend:        Trend(daily, since, q.Days),
	}
	for _, c := range categories {
		name := "Uncategorized"
		if c.Category != nil && *c.Category != "" {
			name = *c.Category
		}
		out.CategoryBreakdown = append(out.CategoryBreakdown, CategoryStats{Category: name, Totals: totals(c.AttemptTally)})
	}
	for _, sess := range sessions {
		out.RecentSessions = append(out.RecentSessions, SessionStats{
			ID:              sess.ID,
			IsReviewSession: sess.IsReviewSession,
			StartedAt:       sess.StartedAt,
			CompletedAt:     sess.CompletedAt,
			Totals:          totals(sess.AttemptTally),
		})
	}
	return out, nil
}

// Trend lays the tallies onto one entry per UTC day starting at since; missing days are zero.
func Trend(rows []models.DailyTally, since time.Time, days int) []DayStats {
	byDay := make(map[string]models.AttemptTally, len(rows))
	for _, r := range rows {
		byDay[r.Day.UTC().Format(time.DateOnly)] = r.AttemptTally
	}
	out := make([]DayStats, 0, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format(time.DateOnly)
		out = append(out, DayStats{Date: day, Totals: totals(byDay[day])})
	}
	return out
}

func totals(t models.AttemptTally) Totals {
	return Totals{Total: t.Total, Correct: t.Correct, Accuracy: quiz.Accuracy(t.Correct, t.Total)}
}
