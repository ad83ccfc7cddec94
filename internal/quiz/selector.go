package quiz

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"

	"jeopardy-trainer-go/internal/models"
	"jeopardy-trainer-go/internal/services"
	"jeopardy-trainer-go/internal/store"

	"golang.org/x/sync/singleflight"
)

// Lambda is the decay rate of the recency bias; about 70% of picks land in the newest 30%.
const Lambda = 3.5

var ErrNoQuestions = services.ErrNotFound("No questions found")

// RecencyOffset maps a uniform draw u in [0,1) to a row offset in [0,total).
func RecencyOffset(u float64, total int) int {
	if total <= 0 {
		return 0
	}
	x := -math.Log(1-u) / Lambda
	if x > 1 || math.IsNaN(x) {
		x = 1
	}
	offset := int(math.Floor(x * float64(total)))
	if offset >= total {
		offset = total - 1
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// QuestionSource reads the selectable set: non-archived, dated, classified clues
// with both texts, ordered newest air date first.
type QuestionSource interface {
	CountSelectable(ctx context.Context, category string, gameTypes []string) (int, error)
	SelectableAt(ctx context.Context, category string, gameTypes []string, offset int) (models.Question, error)
}

type Selector struct {
	source QuestionSource
	cache  CountCache
	group  singleflight.Group
	draw   func() float64
	logger *slog.Logger
}

func NewSelector(source QuestionSource, cache CountCache, draw func() float64, logger *slog.Logger) *Selector {
	if draw == nil {
		draw = rand.Float64
	}
	return &Selector{source: source, cache: cache, draw: draw, logger: logger}
}

// Pick returns one question biased toward recent air dates. A cached count that has
// gone stale is refreshed once before giving up.
func (s *Selector) Pick(ctx context.Context, f Filter) (models.Question, error) {
	total, err := s.count(ctx, f, false)
	if err != nil {
		return models.Question{}, err
	}
	if total == 0 {
		return models.Question{}, ErrNoQuestions
	}
	u := s.draw()
	q, err := s.source.SelectableAt(ctx, f.Category, f.GameTypes, RecencyOffset(u, total))
	if err == nil {
		return q, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.Question{}, services.WrapError(err, "select question")
	}

	total, err = s.count(ctx, f, true)
	if err != nil {
		return models.Question{}, err
	}
	if total == 0 {
		return models.Question{}, ErrNoQuestions
	}
	q, err = s.source.SelectableAt(ctx, f.Category, f.GameTypes, RecencyOffset(u, total))
	if errors.Is(err, store.ErrNotFound) {
		return models.Question{}, ErrNoQuestions
	}
	if err != nil {
		return models.Question{}, services.WrapError(err, "select question")
	}
	return q, nil
}

// Invalidate drops cached counts so archive changes show up immediately.
func (s *Selector) Invalidate(ctx context.Context) {
	if err := s.cache.Purge(ctx); err != nil {
		s.logger.Warn("count cache purge failed", "error", err)
	}
}

func (s *Selector) count(ctx context.Context, f Filter, fresh bool) (int, error) {
	key := f.Key()
	if !fresh {
		if cached, ok, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn("count cache read failed", "key", key, "error", err)
		} else if ok {
			return cached, nil
		}
	}
	flightKey := key
	if fresh {
		flightKey = "fresh|" + key
	}
	v, err, _ := s.group.Do(flightKey, func() (interface{}, error) {
		n, err := s.source.CountSelectable(ctx, f.Category, f.GameTypes)
		if err != nil {
			return 0, err
		}
		if err := s.cache.Set(ctx, key, n); err != nil {
			s.logger.Warn("count cache write failed", "key", key, "count", n, "error", err)
		}
		return n, nil
	})
	if err != nil {
		return 0, services.WrapError(err, "count questions")
	}
	return v.(int), nil
}
