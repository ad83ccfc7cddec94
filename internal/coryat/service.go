package coryat

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"jeopardy-trainer-go/internal/models"
	"jeopardy-trainer-go/internal/services"
	"jeopardy-trainer-go/internal/store"

	"github.com/google/uuid"
)

// GameStore persists games. Writes are guarded: SaveCoryatBoard and CompleteCoryatGame
// only match an open game at the expected version and report store.ErrStale otherwise.
type GameStore interface {
	CreateCoryatGame(ctx context.Context, game models.CoryatGame) error
	CoryatGame(ctx context.Context, userID, gameID string) (models.CoryatGame, error)
	SaveCoryatBoard(ctx context.Context, game models.CoryatGame, expectedVersion int) error
	CompleteCoryatGame(ctx context.Context, userID, gameID string, finalScore int, at time.Time, expectedVersion int) error
	CompletedCoryatGames(ctx context.Context, userID string) ([]models.CoryatGame, error)
	IncompleteCoryatGame(ctx context.Context, userID string) (models.CoryatGame, error)
}

type Service struct {
	games     GameStore
	generator *Generator
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(games GameStore, generator *Generator, logger *slog.Logger) *Service {
	return &Service{
		games:     games,
		generator: generator,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Game is a stored game with its decoded board.
type Game struct {
	models.CoryatGame
	Board Board
}

func (s *Service) Create(ctx context.Context, userID string) (Game, error) {
	board, err := s.generator.Generate(ctx)
	if err != nil {
		return Game{}, services.WrapError(err, "generate board")
	}
	raw, err := board.Marshal()
	if err != nil {
		return Game{}, err
	}
	game := models.CoryatGame{
		ID:           uuid.NewString(),
		UserID:       userID,
		GameBoard:    raw,
		Version:      1,
		CurrentRound: 1,
		StartedAt:    s.now(),
	}
	if err := s.games.CreateCoryatGame(ctx, game); err != nil {
		return Game{}, services.WrapError(err, "create game")
	}
	s.logger.Info("coryat game created",
		"game_id", game.ID,
		"user_id", userID,
		"jeopardy_cells", board.Rounds.Jeopardy.Available(),
		"double_jeopardy_cells", board.Rounds.DoubleJeopardy.Available())
	return Game{CoryatGame: game, Board: board}, nil
}

func (s *Service) Get(ctx context.Context, userID, gameID string) (Game, error) {
	game, err := s.load(ctx, userID, gameID)
	if err != nil {
		return Game{}, err
	}
	board, err := ParseBoard(game.GameBoard)
	if err != nil {
		return Game{}, services.WrapError(err, "game "+gameID)
	}
	return Game{CoryatGame: game, Board: board}, nil
}

type AnswerInput struct {
	Round    string
	Col      int
	Row      int
	Response Response
}

type AnswerResult struct {
	ScoreChange        int  `json:"scoreChange"`
	CurrentRoundScore  int  `json:"currentRoundScore"`
	TotalScore         int  `json:"totalScore"`
	QuestionsRemaining int  `json:"questionsRemaining"`
	TotalRemaining     int  `json:"totalRemaining"`
	QuestionsAnswered  int  `json:"questionsAnswered"`
	CurrentRound       int  `json:"currentRound"`
	RoundComplete      bool `json:"roundComplete"`
}

func (s *Service) Answer(ctx context.Context, userID, gameID string, in AnswerInput) (AnswerResult, error) {
	switch in.Round {
	case RoundJeopardy, RoundDoubleJeopardy, RoundFinalJeopardy:
	default:
		return AnswerResult{}, services.ErrBadRequest("Invalid round")
	}
	if !in.Response.Valid() {
		return AnswerResult{}, services.ErrBadRequest("Invalid response")
	}
	game, err := s.Get(ctx, userID, gameID)
	if err != nil {
		return AnswerResult{}, err
	}
	if game.CompletedAt != nil {
		return AnswerResult{}, services.ErrConflict("Game already completed")
	}

	board := game.Board
	outcome, err := board.Answer(in.Round, in.Col, in.Row, in.Response)
	if err != nil {
		return AnswerResult{}, mapBoardError(err)
	}
	raw, err := board.Marshal()
	if err != nil {
		return AnswerResult{}, err
	}

	expected := game.Version
	updated := game.CoryatGame
	updated.GameBoard = raw
	updated.Version = expected + 1
	updated.JeopardyScore = board.JeopardyScore()
	updated.DoubleJScore = board.DoubleJeopardyScore()
	updated.QuestionsAnswered = board.AnsweredCount()
	updated.CurrentRound = board.CurrentRound()
	if err := s.games.SaveCoryatBoard(ctx, updated, expected); err != nil {
		if errors.Is(err, store.ErrStale) {
			return AnswerResult{}, services.ErrConflict("Game was modified concurrently")
		}
		return AnswerResult{}, services.WrapError(err, "save board")
	}

	roundScore := updated.DoubleJScore
	if in.Round == RoundJeopardy {
		roundScore = updated.JeopardyScore
	}
	remaining := board.Remaining(in.Round)
	return AnswerResult{
		ScoreChange:        outcome.ScoreChange,
		CurrentRoundScore:  roundScore,
		TotalScore:         updated.JeopardyScore + updated.DoubleJScore,
		QuestionsRemaining: remaining,
		TotalRemaining:     board.TotalRemaining(),
		QuestionsAnswered:  updated.QuestionsAnswered,
		CurrentRound:       updated.CurrentRound,
		RoundComplete:      remaining == 0,
	}, nil
}

type Summary struct {
	FinalScore        int       `json:"final_score"`
	JeopardyScore     int       `json:"jeopardy_score"`
	DoubleJScore      int       `json:"double_j_score"`
	QuestionsAnswered int       `json:"questions_answered"`
	CompletedAt       time.Time `json:"completed_at"`
	Tally
}

// Complete freezes the final score. A second call is rejected and changes nothing.
func (s *Service) Complete(ctx context.Context, userID, gameID string) (Summary, error) {
	game, err := s.Get(ctx, userID, gameID)
	if err != nil {
		return Summary{}, err
	}
	if game.CompletedAt != nil {
		return Summary{}, services.ErrConflict("Game already completed")
	}
	jeopardy := game.Board.JeopardyScore()
	double := game.Board.DoubleJeopardyScore()
	final := jeopardy + double
	now := s.now()
	if err := s.games.CompleteCoryatGame(ctx, userID, gameID, final, now, game.Version); err != nil {
		if errors.Is(err, store.ErrStale) {
			return Summary{}, s.staleCompletion(ctx, userID, gameID)
		}
		return Summary{}, services.WrapError(err, "complete game")
	}
	tally := game.Board.Tally()
	return Summary{
		FinalScore:        final,
		JeopardyScore:     jeopardy,
		DoubleJScore:      double,
		QuestionsAnswered: tally.Correct + tally.Incorrect + tally.Passed,
		CompletedAt:       now,
		Tally:             tally,
	}, nil
}

// staleCompletion tells a finished game apart from one that took an answer mid-completion.
func (s *Service) staleCompletion(ctx context.Context, userID, gameID string) error {
	current, err := s.load(ctx, userID, gameID)
	if err == nil && current.CompletedAt != nil {
		return services.ErrConflict("Game already completed")
	}
	return services.ErrConflict("Game was modified concurrently")
}

const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

type Statistics struct {
	TotalGames   int    `json:"total_games"`
	AverageScore int    `json:"average_score"`
	BestScore    int    `json:"best_score"`
	WorstScore   int    `json:"worst_score"`
	Trend        string `json:"trend"`
}

type History struct {
	Games          []models.CoryatGame
	Statistics     Statistics
	IncompleteGame *models.CoryatGame
}

func (s *Service) History(ctx context.Context, userID string) (History, error) {
	games, err := s.games.CompletedCoryatGames(ctx, userID)
	if err != nil {
		return History{}, services.WrapError(err, "completed games")
	}
	history := History{Games: games, Statistics: Summarize(finalScores(games))}
	open, err := s.games.IncompleteCoryatGame(ctx, userID)
	switch {
	case err == nil:
		history.IncompleteGame = &open
	case errors.Is(err, store.ErrNotFound):
	default:
		return History{}, services.WrapError(err, "incomplete game")
	}
	return history, nil
}

func finalScores(games []models.CoryatGame) []int {
	scores := make([]int, 0, len(games))
	for _, game := range games {
		score := 0
		if game.FinalScore != nil {
			score = *game.FinalScore
		}
		scores = append(scores, score)
	}
	return scores
}

// Summarize computes history statistics from final scores ordered newest first.
// The trend compares the three newest games with the three oldest.
func Summarize(scores []int) Statistics {
	stats := Statistics{TotalGames: len(scores), Trend: TrendStable}
	if len(scores) == 0 {
		return stats
	}
	sum := 0
	stats.BestScore, stats.WorstScore = scores[0], scores[0]
	for _, score := range scores {
		sum += score
		stats.BestScore = max(stats.BestScore, score)
		stats.WorstScore = min(stats.WorstScore, score)
	}
	stats.AverageScore = int(math.Round(float64(sum) / float64(len(scores))))
	if len(scores) >= 3 {
		recent := mean(scores[:3])
		older := mean(scores[len(scores)-3:])
		switch {
		case recent > older*1.1:
			stats.Trend = TrendImproving
		case recent < older*0.9:
			stats.Trend = TrendDeclining
		}
	}
	return stats
}

func mean(values []int) float64 {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func (s *Service) load(ctx context.Context, userID, gameID string) (models.CoryatGame, error) {
	if _, err := uuid.Parse(gameID); err != nil {
		return models.CoryatGame{}, services.ErrBadRequest("Invalid game ID")
	}
	game, err := s.games.CoryatGame(ctx, userID, gameID)
	if errors.Is(err, store.ErrNotFound) {
		return models.CoryatGame{}, services.ErrNotFound("Game not found")
	}
	if err != nil {
		return models.CoryatGame{}, services.WrapError(err, "load game")
	}
	return game, nil
}

func mapBoardError(err error) error {
	switch {
	case errors.Is(err, ErrCellNotFound):
		return services.ErrNotFound("Question not found")
	case errors.Is(err, ErrAlreadyAnswered):
		return services.ErrConflict("Question already answered")
	case errors.Is(err, ErrCellUnavailable), errors.Is(err, ErrFinalUnavailable):
		return services.ErrBadRequest("Question not available")
	case errors.Is(err, ErrInvalidRound):
		return services.ErrBadRequest("Invalid round")
	case errors.Is(err, ErrInvalidResponse):
		return services.ErrBadRequest("Invalid response")
	}
	return err
}
