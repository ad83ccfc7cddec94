package study

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"jeopardy-trainer-go/internal/models"
	"jeopardy-trainer-go/internal/services"
	"jeopardy-trainer-go/internal/store"

	"github.com/google/uuid"
)

const MaxDays = 365

type Store interface {
	IncorrectAttempts(ctx context.Context, userID string, from, to time.Time) ([]models.MissedClue, error)
	CreateStudyRecommendation(ctx context.Context, rec models.StudyRecommendation) error
	StudyRecommendations(ctx context.Context, userID string) ([]models.StudyRecommendation, error)
	LatestStudyRecommendation(ctx context.Context, userID string) (models.StudyRecommendation, error)
}

type Service struct {
	store    Store
	analyzer Analyzer
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the generator. A nil analyzer disables generation.
func NewService(st Store, analyzer Analyzer, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		store:    st,
		analyzer: analyzer,
		timeout:  timeout,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type Recommendation struct {
	models.StudyRecommendation
	Result Result
}

// Generate analyzes the incorrect attempts of the last days and stores the plan.
// Nothing is stored when the model call fails or its output does not validate.
func (s *Service) Generate(ctx context.Context, userID string, days int) (Recommendation, error) {
	if days <= 0 || days > MaxDays {
		return Recommendation{}, services.ErrBadRequest("Invalid days parameter")
	}
	if s.analyzer == nil {
		return Recommendation{}, services.ErrUnavailable("Study recommendations are not configured")
	}
	end := s.now()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)
	missed, err := s.store.IncorrectAttempts(ctx, userID, start, end)
	if err != nil {
		return Recommendation{}, services.WrapError(err, "incorrect attempts")
	}
	if len(missed) == 0 {
		return Recommendation{}, services.ErrNotFound("No incorrect answers found in the specified time period")
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	started := time.Now()
	raw, err := s.analyzer.Analyze(callCtx, BuildPrompt(missed, days))
	if err != nil {
		return Recommendation{}, err
	}
	result, err := ParseResult(raw)
	if err != nil {
		s.logger.Warn("study output rejected", "user_id", userID, "error", err, "bytes", len(raw))
		return Recommendation{}, err
	}
	topics, err := json.Marshal(result.Topics)
	if err != nil {
		return Recommendation{}, err
	}
	rec := models.StudyRecommendation{
		ID:              uuid.NewString(),
		UserID:          userID,
		DaysAnalyzed:    days,
		Analysis:        result.Analysis,
		Topics:          topics,
		RawResponse:     raw,
		Model:           s.analyzer.Model(),
		QuestionCount:   len(missed),
		TimePeriodStart: start,
		TimePeriodEnd:   end,
		GeneratedAt:     end,
	}
	if err := s.store.CreateStudyRecommendation(ctx, rec); err != nil {
		return Recommendation{}, services.WrapError(err, "store recommendation")
	}
	s.logger.Info("study recommendation generated",
		"user_id", userID,
		"days", days,
		"missed", len(missed),
		"topics", len(result.Topics),
		"llm_ms", time.Since(started).Milliseconds())
	return Recommendation{StudyRecommendation: rec, Result: result}, nil
}

func (s *Service) History(ctx context.Context, userID string) ([]Recommendation, error) {
	rows, err := s.store.StudyRecommendations(ctx, userID)
	if err != nil {
		return nil, services.WrapError(err, "study history")
	}
	out := make([]Recommendation, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.decode(row))
	}
	return out, nil
}

// Latest returns nil when the user has no recommendations yet.
func (s *Service) Latest(ctx context.Context, userID string) (*models.StudyRecommendation, error) {
	row, err := s.store.LatestStudyRecommendation(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, services.WrapError(err, "latest recommendation")
	}
	return &row, nil
}

// decode keeps a row with unreadable topics visible with its analysis only.
func (s *Service) decode(row models.StudyRecommendation) Recommendation {
	rec := Recommendation{StudyRecommendation: row, Result: Result{Analysis: row.Analysis, Topics: []Topic{}}}
	if len(row.Topics) == 0 {
		return rec
	}
	var topics []Topic
	if err := json.Unmarshal(row.Topics, &topics); err != nil {
		s.logger.Warn("stored study topics unreadable", "recommendation_id", row.ID, "user_id", row.UserID, "error", err)
		return rec
	}
	if topics != nil {
		rec.Result.Topics = topics
	}
	return rec
}
