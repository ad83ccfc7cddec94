package quiz

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"jeopardy-trainer-go/internal/mastery"
	"jeopardy-trainer-go/internal/models"
	"jeopardy-trainer-go/internal/services"
	"jeopardy-trainer-go/internal/store"

	"github.com/google/uuid"
)

// ProgressStore persists sessions, attempts and streaks.
type ProgressStore interface {
	Question(ctx context.Context, id int64) (models.Question, error)
	QuizSession(ctx context.Context, userID, sessionID string) (models.QuizSession, error)
	CreateQuizSession(ctx context.Context, session models.QuizSession) error
	// RecordAttempt inserts the attempt and rewrites the streak row in one transaction,
	// holding a lock on the row while next computes the new state. prev is nil for a first attempt.
	RecordAttempt(ctx context.Context, attempt models.QuestionAttempt, next func(prev *models.QuestionMastery) models.QuestionMastery) (models.QuestionAttempt, models.QuestionMastery, error)
	// CompleteQuizSession stamps an open session; ErrStale when it is already closed.
	CompleteQuizSession(ctx context.Context, userID, sessionID string, at time.Time) error
	SessionTotals(ctx context.Context, sessionID string) (total, correct int, err error)
	// ResetMastery zeroes the streak row; ErrNotFound when none exists.
	ResetMastery(ctx context.Context, userID string, questionID int64, at time.Time) error
	ReviewQuestions(ctx context.Context, userID, category string) ([]models.ReviewQuestion, error)
	CountMastered(ctx context.Context, userID, category string) (int, error)
	MasteredAt(ctx context.Context, userID, category string, offset int) (models.MasteredQuestion, error)
}

type Service struct {
	store  ProgressStore
	logger *slog.Logger
	now    func() time.Time
	intn   func(int) int
}

func NewService(progress ProgressStore, logger *slog.Logger, intn func(int) int) *Service {
	if intn == nil {
		intn = rand.Intn
	}
	return &Service{
		store:  progress,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		intn:   intn,
	}
}

type SubmitInput struct {
	QuestionID      int64
	Correct         bool
	SessionID       string
	IsReviewSession bool
}

type SubmitResult struct {
	Success   bool             `json:"success"`
	AttemptID int64            `json:"attemptId"`
	SessionID string           `json:"sessionId"`
	Mastery   MasteryView      `json:"mastery"`
	Progress  mastery.Progress `json:"masteryProgress"`
}

type MasteryView struct {
	ConsecutiveCorrect int        `json:"consecutive_correct"`
	Mastered           bool       `json:"mastered"`
	MasteredAt         *time.Time `json:"mastered_at"`
}

// Submit records one answer. A session is opened when the caller has none.
func (s *Service) Submit(ctx context.Context, userID string, in SubmitInput) (SubmitResult, error) {
	if in.QuestionID <= 0 {
		return SubmitResult{}, services.ErrBadRequest("Question ID is required")
	}
	if _, err := s.store.Question(ctx, in.QuestionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SubmitResult{}, services.ErrNotFound("Question not found")
		}
		return SubmitResult{}, services.WrapError(err, "load question")
	}

	sessionID, err := s.ensureSession(ctx, userID, in)
	if err != nil {
		return SubmitResult{}, err
	}

	now := s.now()
	attempt := models.QuestionAttempt{
		UserID:     userID,
		QuestionID: in.QuestionID,
		SessionID:  &sessionID,
		Correct:    in.Correct,
		AnsweredAt: now,
	}
	saved, row, err := s.store.RecordAttempt(ctx, attempt, func(prev *models.QuestionMastery) models.QuestionMastery {
		state := mastery.State{}
		if prev != nil {
			state = toState(*prev)
		}
		return fromState(userID, in.QuestionID, mastery.Apply(state, in.Correct, now))
	})
	if err != nil {
		return SubmitResult{}, services.WrapError(err, "record attempt")
	}
	if row.Mastered && row.MasteredAt != nil && row.MasteredAt.Equal(now) {
		s.logger.Info("question mastered", "user_id", userID, "question_id", in.QuestionID)
	}
	return SubmitResult{
		Success:   true,
		AttemptID: saved.ID,
		SessionID: sessionID,
		Mastery: MasteryView{
			ConsecutiveCorrect: row.ConsecutiveCorrect,
			Mastered:           row.Mastered,
			MasteredAt:         row.MasteredAt,
		},
		Progress: mastery.ProgressOf(row.ConsecutiveCorrect),
	}, nil
}

func (s *Service) ensureSession(ctx context.Context, userID string, in SubmitInput) (string, error) {
	if in.SessionID != "" {
		session, err := s.session(ctx, userID, in.SessionID)
		if err != nil {
			return "", err
		}
		if session.CompletedAt != nil {
			return "", services.ErrConflict("Session already completed")
		}
		return session.ID, nil
	}
	session := models.QuizSession{
		ID:              uuid.NewString(),
		UserID:          userID,
		IsReviewSession: in.IsReviewSession,
		StartedAt:       s.now(),
	}
	if err := s.store.CreateQuizSession(ctx, session); err != nil {
		return "", services.WrapError(err, "create session")
	}
	return session.ID, nil
}

func (s *Service) session(ctx context.Context, userID, sessionID string) (models.QuizSession, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return models.QuizSession{}, services.ErrBadRequest("Invalid session ID")
	}
	session, err := s.store.QuizSession(ctx, userID, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return models.QuizSession{}, services.ErrNotFound("Session not found")
	}
	if err != nil {
		return models.QuizSession{}, services.WrapError(err, "load session")
	}
	return session, nil
}

type SessionSummary struct {
	Total       int        `json:"total"`
	Correct     int        `json:"correct"`
	Incorrect   int        `json:"incorrect"`
	Accuracy    int        `json:"accuracy"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// Complete closes a session and summarizes it. Closing twice is rejected.
func (s *Service) Complete(ctx context.Context, userID, sessionID string) (SessionSummary, error) {
	if sessionID == "" {
		return SessionSummary{}, services.ErrBadRequest("Session ID is required")
	}
	session, err := s.session(ctx, userID, sessionID)
	if err != nil {
		return SessionSummary{}, err
	}
	if session.CompletedAt != nil {
		return SessionSummary{}, services.ErrConflict("Session already completed")
	}
	now := s.now()
	if err := s.store.CompleteQuizSession(ctx, userID, sessionID, now); err != nil {
		if errors.Is(err, store.ErrStale) {
			return SessionSummary{}, services.ErrConflict("Session already completed")
		}
		return SessionSummary{}, services.WrapError(err, "complete session")
	}
	total, correct, err := s.store.SessionTotals(ctx, sessionID)
	if err != nil {
		return SessionSummary{}, services.WrapError(err, "session totals")
	}
	return SessionSummary{
		Total:       total,
		Correct:     correct,
		Incorrect:   total - correct,
		Accuracy:    Accuracy(correct, total),
		StartedAt:   session.StartedAt,
		CompletedAt: &now,
	}, nil
}

// Accuracy is the rounded percentage of correct answers.
func Accuracy(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) * 100 / float64(total)))
}

type ReviewItem struct {
	Question        models.Question
	MasteryProgress mastery.Progress
}

// Review lists questions missed at least once and not mastered, closest to mastery first.
func (s *Service) Review(ctx context.Context, userID, category string) ([]ReviewItem, error) {
	filter := NewFilter(category, nil)
	rows, err := s.store.ReviewQuestions(ctx, userID, filter.Category)
	if err != nil {
		return nil, services.WrapError(err, "review questions")
	}
	items := make([]ReviewItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, ReviewItem{Question: row.Question, MasteryProgress: mastery.ProgressOf(row.ConsecutiveCorrect)})
	}
	return items, nil
}

type MasteredPick struct {
	Question      models.Question
	MasteredAt    *time.Time
	TotalMastered int
}

// RandomMastered picks one mastered question uniformly for a refresher.
func (s *Service) RandomMastered(ctx context.Context, userID, category string) (MasteredPick, error) {
	filter := NewFilter(category, nil)
	total, err := s.store.CountMastered(ctx, userID, filter.Category)
	if err != nil {
		return MasteredPick{}, services.WrapError(err, "count mastered")
	}
	if total == 0 {
		return MasteredPick{}, services.ErrNotFound("No mastered questions found")
	}
	row, err := s.store.MasteredAt(ctx, userID, filter.Category, s.intn(total))
	if errors.Is(err, store.ErrNotFound) {
		return MasteredPick{}, services.ErrNotFound("No mastered questions found")
	}
	if err != nil {
		return MasteredPick{}, services.WrapError(err, "mastered question")
	}
	return MasteredPick{Question: row.Question, MasteredAt: row.MasteredAt, TotalMastered: total}, nil
}

// ResetMastery returns a question to the review pool.
func (s *Service) ResetMastery(ctx context.Context, userID string, questionID int64) error {
	if questionID <= 0 {
		return services.ErrBadRequest("Question ID is required")
	}
	err := s.store.ResetMastery(ctx, userID, questionID, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return services.ErrNotFound("Mastery record not found")
	}
	if err != nil {
		return services.WrapError(err, "reset mastery")
	}
	return nil
}

func toState(row models.QuestionMastery) mastery.State {
	return mastery.State{
		ConsecutiveCorrect: row.ConsecutiveCorrect,
		Mastered:           row.Mastered,
		MasteredAt:         row.MasteredAt,
		LastAttemptAt:      row.LastAttemptAt,
	}
}

func fromState(userID string, questionID int64, state mastery.State) models.QuestionMastery {
	return models.QuestionMastery{
		UserID:             userID,
		QuestionID:         questionID,
		ConsecutiveCorrect: state.ConsecutiveCorrect,
		Mastered:           state.Mastered,
		MasteredAt:         state.MasteredAt,
		LastAttemptAt:      state.LastAttemptAt,
	}
}
