package httpapi

import (
	"net/http"
	"time"

	"jeopardy-trainer-go/internal/study"
)

type StudyRequest struct {
	Days int `json:"days"`
}

type RecommendationDTO struct {
	ID              string        `json:"id"`
	DaysAnalyzed    int           `json:"days_analyzed"`
	Analysis        string        `json:"analysis"`
	Topics          []study.Topic `json:"topics"`
	QuestionCount   int           `json:"question_count"`
	Model           string        `json:"model"`
	TimePeriodStart time.Time     `json:"time_period_start"`
	TimePeriodEnd   time.Time     `json:"time_period_end"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

type LatestStudyDTO struct {
	GeneratedAt   time.Time `json:"generated_at"`
	DaysAnalyzed  int       `json:"days_analyzed"`
	QuestionCount int       `json:"question_count"`
}

func toRecommendationDTO(rec study.Recommendation) RecommendationDTO {
	return RecommendationDTO{
		ID:              rec.ID,
		DaysAnalyzed:    rec.DaysAnalyzed,
		Analysis:        rec.Result.Analysis,
		Topics:          rec.Result.Topics,
		QuestionCount:   rec.QuestionCount,
		Model:           rec.Model,
		TimePeriodStart: rec.TimePeriodStart,
		TimePeriodEnd:   rec.TimePeriodEnd,
		GeneratedAt:     rec.GeneratedAt,
	}
}

func (s *Server) GenerateStudy(w http.ResponseWriter, r *http.Request) {
	var req StudyRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	rec, err := s.Study.Generate(r.Context(), CurrentUserID(r), req.Days)
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to generate study recommendations")
		return
	}
	WriteJSON(w, http.StatusOK, toRecommendationDTO(rec))
}

func (s *Server) StudyHistory(w http.ResponseWriter, r *http.Request) {
	recs, err := s.Study.History(r.Context(), CurrentUserID(r))
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to fetch study history")
		return
	}
	out := make([]RecommendationDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRecommendationDTO(rec))
	}
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) LatestStudy(w http.ResponseWriter, r *http.Request) {
	row, err := s.Study.Latest(r.Context(), CurrentUserID(r))
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to fetch latest recommendation")
		return
	}
	if row == nil {
		WriteJSON(w, http.StatusOK, nil)
		return
	}
	WriteJSON(w, http.StatusOK, LatestStudyDTO{
		GeneratedAt:   row.GeneratedAt,
		DaysAnalyzed:  row.DaysAnalyzed,
		QuestionCount: row.QuestionCount,
	})
}
