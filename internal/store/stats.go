package store

import (
	"context"
	"time"

	"jeopardy-trainer-go/internal/models"
)

// Attempts outside any session always count; review-session attempts only when asked.
const attemptScope = `
FROM question_attempts a
LEFT JOIN quiz_sessions s ON s.id = a.session_id
WHERE a.user_id = $1 AND ($2 OR s.is_review_session IS NOT TRUE)`

func (s *Store) OverallTally(ctx context.Context, userID string, includeReviewed bool) (models.AttemptTally, error) {
	var t models.AttemptTally
	err := s.db.GetContext(ctx, &t, `
SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE a.correct) AS correct`+attemptScope, userID, includeReviewed)
	return t, err
}

func (s *Store) CategoryTallies(ctx context.Context, userID string, includeReviewed bool) ([]models.CategoryTally, error) {
	rows := []models.CategoryTally{}
	err := s.db.SelectContext(ctx, &rows, `
SELECT q.classifier_category AS category, COUNT(*) AS total, COUNT(*) FILTER (WHERE a.correct) AS correct
FROM question_attempts a
JOIN questions q ON q.id = a.question_id
LEFT JOIN quiz_sessions s ON s.id = a.session_id
WHERE a.user_id = $1 AND ($2 OR s.is_review_session IS NOT TRUE)
  AND q.archived = FALSE
GROUP BY q.classifier_category
ORDER BY q.classifier_category NULLS LAST
`, userID, includeReviewed)
	return rows, err
}

func (s *Store) RecentSessionTallies(ctx context.Context, userID string, includeReviewed bool, limit int) ([]models.SessionTally, error) {
	rows := []models.SessionTally{}
	err := s.db.SelectContext(ctx, &rows, `
SELECT s.id, s.is_review_session, s.started_at, s.completed_at,
       COUNT(a.id) AS total, COUNT(a.id) FILTER (WHERE a.correct) AS correct
FROM quiz_sessions s
LEFT JOIN question_attempts a ON a.session_id = s.id
WHERE s.user_id = $1 AND ($2 OR s.is_review_session = FALSE)
GROUP BY s.id
ORDER BY s.started_at DESC
LIMIT $3
`, userID, includeReviewed, limit)
	return rows, err
}

func (s *Store) DailyTallies(ctx context.Context, userID string, includeReviewed bool, since time.Time) ([]models.DailyTally, error) {
	rows := []models.DailyTally{}
	err := s.db.SelectContext(ctx, &rows, `
SELECT (a.answered_at AT TIME ZONE 'UTC')::date AS day,
       COUNT(*) AS total, COUNT(*) FILTER (WHERE a.correct) AS correct`+attemptScope+`
  AND a.answered_at >= $3
GROUP BY day
ORDER BY day
`, userID, includeReviewed, since)
	return rows, err
}
