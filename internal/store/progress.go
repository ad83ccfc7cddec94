package store

import (
	"context"
	"time"

	"jeopardy-trainer-go/internal/models"
)

const masteryColumns = `user_id, question_id, consecutive_correct, mastered, mastered_at, last_attempt_at`

func (s *Store) QuizSession(ctx context.Context, userID, sessionID string) (models.QuizSession, error) {
	var session models.QuizSession
	err := s.db.GetContext(ctx, &session, `
SELECT id, user_id, is_review_session, started_at, completed_at
FROM quiz_sessions
WHERE id = $1 AND user_id = $2
`, sessionID, userID)
	return session, notFound(err)
}

func (s *Store) CreateQuizSession(ctx context.Context, session models.QuizSession) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO quiz_sessions (id, user_id, is_review_session, started_at)
VALUES ($1,$2,$3,$4)
`, session.ID, session.UserID, session.IsReviewSession, session.StartedAt)
	return err
}

// RecordAttempt appends the attempt and rewrites the streak row while holding
// its lock, so concurrent answers to one question serialize.
func (s *Store) RecordAttempt(ctx context.Context, attempt models.QuestionAttempt, next func(prev *models.QuestionMastery) models.QuestionMastery) (models.QuestionAttempt, models.QuestionMastery, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.QuestionAttempt{}, models.QuestionMastery{}, err
	}
	defer tx.Rollback()

	if err := tx.GetContext(ctx, &attempt.ID, `
INSERT INTO question_attempts (user_id, question_id, session_id, correct, answered_at)
VALUES ($1,$2,$3,$4,$5)
RETURNING id
`, attempt.UserID, attempt.QuestionID, attempt.SessionID, attempt.Correct, attempt.AnsweredAt); err != nil {
		return models.QuestionAttempt{}, models.QuestionMastery{}, err
	}

	// Make sure there is a row to lock; a fresh row means no previous state.
	res, err := tx.ExecContext(ctx, `
INSERT INTO question_mastery (user_id, question_id, consecutive_correct, mastered, last_attempt_at)
VALUES ($1,$2,0,FALSE,$3)
ON CONFLICT (user_id, question_id) DO NOTHING
`, attempt.UserID, attempt.QuestionID, attempt.AnsweredAt)
	if err != nil {
		return models.QuestionAttempt{}, models.QuestionMastery{}, err
	}
	created, err := res.RowsAffected()
	if err != nil {
		return models.QuestionAttempt{}, models.QuestionMastery{}, err
	}

	var current models.QuestionMastery
	if err := tx.GetContext(ctx, &current, `
SELECT `+masteryColumns+`
FROM question_mastery
WHERE user_id = $1 AND question_id = $2
FOR UPDATE
`, attempt.UserID, attempt.QuestionID); err != nil {
		return models.QuestionAttempt{}, models.QuestionMastery{}, err
	}
	var prev *models.QuestionMastery
	if created == 0 {
		prev = &current
	}
	row := next(prev)

	if _, err := tx.ExecContext(ctx, `
UPDATE question_mastery
SET consecutive_correct = $1, mastered = $2, mastered_at = $3, last_attempt_at = $4
WHERE user_id = $5 AND question_id = $6
`, row.ConsecutiveCorrect, row.Mastered, row.MasteredAt, row.LastAttemptAt, row.UserID, row.QuestionID); err != nil {
		return models.QuestionAttempt{}, models.QuestionMastery{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.QuestionAttempt{}, models.QuestionMastery{}, err
	}
	return attempt, row, nil
}

func (s *Store) CompleteQuizSession(ctx context.Context, userID, sessionID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE quiz_sessions SET completed_at = $1
WHERE id = $2 AND user_id = $3 AND completed_at IS NULL
`, at, sessionID, userID)
	return affected(res, err, ErrStale)
}

func (s *Store) SessionTotals(ctx context.Context, sessionID string) (int, int, error) {
	var t models.AttemptTally
	err := s.db.GetContext(ctx, &t, `
SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE correct) AS correct
FROM question_attempts
WHERE session_id = $1
`, sessionID)
	return t.Total, t.Correct, err
}

func (s *Store) ResetMastery(ctx context.Context, userID string, questionID int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE question_mastery
SET consecutive_correct = 0, mastered = FALSE, mastered_at = NULL, last_attempt_at = $1
WHERE user_id = $2 AND question_id = $3
`, at, userID, questionID)
	return affected(res, err, ErrNotFound)
}

func (s *Store) ReviewQuestions(ctx context.Context, userID, category string) ([]models.ReviewQuestion, error) {
	rows := []models.ReviewQuestion{}
	err := s.db.SelectContext(ctx, &rows, `
SELECT `+qualified("q")+`, COALESCE(m.consecutive_correct, 0) AS consecutive_correct
FROM questions q
LEFT JOIN question_mastery m ON m.user_id = $1 AND m.question_id = q.id
WHERE q.archived = FALSE
  AND EXISTS (
    SELECT 1 FROM question_attempts a
    WHERE a.user_id = $1 AND a.question_id = q.id AND a.correct = FALSE
  )
  AND COALESCE(m.mastered, FALSE) = FALSE
  AND ($2::text = '' OR q.classifier_category = $2)
ORDER BY consecutive_correct DESC, q.id
`, userID, category)
	return rows, err
}

func (s *Store) CountMastered(ctx context.Context, userID, category string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `
SELECT COUNT(*)
FROM question_mastery m
JOIN questions q ON q.id = m.question_id
WHERE m.user_id = $1 AND m.mastered = TRUE AND q.archived = FALSE
  AND ($2::text = '' OR q.classifier_category = $2)
`, userID, category)
	return n, err
}

func (s *Store) MasteredAt(ctx context.Context, userID, category string, offset int) (models.MasteredQuestion, error) {
	var row models.MasteredQuestion
	err := s.db.GetContext(ctx, &row, `
SELECT `+qualified("q")+`, m.mastered_at
FROM question_mastery m
JOIN questions q ON q.id = m.question_id
WHERE m.user_id = $1 AND m.mastered = TRUE AND q.archived = FALSE
  AND ($2::text = '' OR q.classifier_category = $2)
ORDER BY q.id
OFFSET $3 LIMIT 1
`, userID, category, offset)
	return row, notFound(err)
}

// IncorrectAttempts lists misses in [from, to], newest first.
func (s *Store) IncorrectAttempts(ctx context.Context, userID string, from, to time.Time) ([]models.MissedClue, error) {
	rows := []models.MissedClue{}
	err := s.db.SelectContext(ctx, &rows, `
SELECT q.clue, q.response, q.category, q.classifier_category, a.answered_at
FROM question_attempts a
JOIN questions q ON q.id = a.question_id
WHERE a.user_id = $1 AND a.correct = FALSE
  AND a.answered_at >= $2 AND a.answered_at <= $3
ORDER BY a.answered_at DESC
`, userID, from, to)
	return rows, err
}
