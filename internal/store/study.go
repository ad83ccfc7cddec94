package store

import (
	"context"

	"jeopardy-trainer-go/internal/models"
)

const recommendationColumns = `id, user_id, days_analyzed, analysis, topics, raw_response, model,
       question_count, time_period_start, time_period_end, generated_at`

func (s *Store) CreateStudyRecommendation(ctx context.Context, rec models.StudyRecommendation) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO study_recommendations (id, user_id, days_analyzed, analysis, topics, raw_response, model,
                                   question_count, time_period_start, time_period_end, generated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`, rec.ID, rec.UserID, rec.DaysAnalyzed, rec.Analysis, []byte(rec.Topics), rec.RawResponse, rec.Model,
		rec.QuestionCount, rec.TimePeriodStart, rec.TimePeriodEnd, rec.GeneratedAt)
	return err
}

func (s *Store) StudyRecommendations(ctx context.Context, userID string) ([]models.StudyRecommendation, error) {
	rows := []models.StudyRecommendation{}
	err := s.db.SelectContext(ctx, &rows, `
SELECT `+recommendationColumns+`
FROM study_recommendations
WHERE user_id = $1
ORDER BY generated_at DESC
`, userID)
	return rows, err
}

func (s *Store) LatestStudyRecommendation(ctx context.Context, userID string) (models.StudyRecommendation, error) {
	var rec models.StudyRecommendation
	err := s.db.GetContext(ctx, &rec, `
SELECT `+recommendationColumns+`
FROM study_recommendations
WHERE user_id = $1
ORDER BY generated_at DESC
LIMIT 1
`, userID)
	return rec, notFound(err)
}
