package store

import (
	"context"
	"time"

	"jeopardy-trainer-go/internal/models"
)

const gameColumns = `id, user_id, game_board, version, current_round, questions_answered,
       jeopardy_score, double_j_score, final_score, started_at, completed_at`

func (s *Store) CreateCoryatGame(ctx context.Context, game models.CoryatGame) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO coryat_games (id, user_id, game_board, version, current_round, questions_answered,
                          jeopardy_score, double_j_score, started_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, game.ID, game.UserID, []byte(game.GameBoard), game.Version, game.CurrentRound, game.QuestionsAnswered,
		game.JeopardyScore, game.DoubleJScore, game.StartedAt)
	return err
}

func (s *Store) CoryatGame(ctx context.Context, userID, gameID string) (models.CoryatGame, error) {
	var game models.CoryatGame
	err := s.db.GetContext(ctx, &game, `
SELECT `+gameColumns+` FROM coryat_games WHERE id = $1 AND user_id = $2
`, gameID, userID)
	return game, notFound(err)
}

// SaveCoryatBoard writes the board only if nobody saved since expectedVersion was read.
func (s *Store) SaveCoryatBoard(ctx context.Context, game models.CoryatGame, expectedVersion int) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE coryat_games
SET game_board = $1, version = $2, current_round = $3, questions_answered = $4,
    jeopardy_score = $5, double_j_score = $6
WHERE id = $7 AND user_id = $8 AND version = $9 AND completed_at IS NULL
`, []byte(game.GameBoard), game.Version, game.CurrentRound, game.QuestionsAnswered,
		game.JeopardyScore, game.DoubleJScore, game.ID, game.UserID, expectedVersion)
	return affected(res, err, ErrStale)
}

func (s *Store) CompleteCoryatGame(ctx context.Context, userID, gameID string, finalScore int, at time.Time, expectedVersion int) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE coryat_games
SET final_score = $1, completed_at = $2, version = version + 1
WHERE id = $3 AND user_id = $4 AND completed_at IS NULL AND version = $5
`, finalScore, at, gameID, userID, expectedVersion)
	return affected(res, err, ErrStale)
}

func (s *Store) CompletedCoryatGames(ctx context.Context, userID string) ([]models.CoryatGame, error) {
	games := []models.CoryatGame{}
	err := s.db.SelectContext(ctx, &games, `
SELECT `+gameColumns+`
FROM coryat_games
WHERE user_id = $1 AND completed_at IS NOT NULL
ORDER BY completed_at DESC
`, userID)
	return games, err
}

func (s *Store) IncompleteCoryatGame(ctx context.Context, userID string) (models.CoryatGame, error) {
	var game models.CoryatGame
	err := s.db.GetContext(ctx, &game, `
SELECT `+gameColumns+`
FROM coryat_games
WHERE user_id = $1 AND completed_at IS NULL
ORDER BY started_at DESC
LIMIT 1
`, userID)
	return game, notFound(err)
}
