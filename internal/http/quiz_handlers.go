package httpapi

import (
	"net/http"
	"time"

	"jeopardy-trainer-go/internal/mastery"
	"jeopardy-trainer-go/internal/quiz"
)

type SubmitRequest struct {
	QuestionID      int64  `json:"questionId"`
	Correct         *bool  `json:"correct"`
	SessionID       string `json:"sessionId"`
	IsReviewSession bool   `json:"isReviewSession"`
}

type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

type QuestionRequest struct {
	QuestionID int64   `json:"questionId"`
	Reason     *string `json:"reason,omitempty"`
}

type ReviewItemDTO struct {
	QuestionDTO
	MasteryProgress mastery.Progress `json:"masteryProgress"`
}

type MasteredDTO struct {
	QuestionDTO
	MasteredAt    *time.Time `json:"mastered_at"`
	TotalMastered int        `json:"total_mastered"`
}

// RandomQuestion serves one recency-weighted question. Without a gameTypes
// parameter the user's saved filter applies; an empty parameter means any audience.
func (s *Server) RandomQuestion(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var (
		tags []string
		err  error
	)
	if query.Has("gameTypes") {
		tags, err = quiz.ParseGameTypes(query.Get("gameTypes"))
	} else {
		tags, err = s.savedGameTypes(r)
	}
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to fetch question")
		return
	}
	q, err := s.Selector.Pick(r.Context(), quiz.NewFilter(query.Get("category"), tags))
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to fetch question")
		return
	}
	WriteJSON(w, http.StatusOK, toQuestionDTO(q))
}

func (s *Server) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.Correct == nil {
		WriteError(w, http.StatusBadRequest, "correct must be a boolean")
		return
	}
	result, err := s.Quiz.Submit(r.Context(), CurrentUserID(r), quiz.SubmitInput{
		QuestionID:      req.QuestionID,
		Correct:         *req.Correct,
		SessionID:       req.SessionID,
		IsReviewSession: req.IsReviewSession,
	})
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to submit answer")
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (s *Server) CompleteSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	summary, err := s.Quiz.Complete(r.Context(), CurrentUserID(r), req.SessionID)
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to complete session")
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) ReviewQuestions(w http.ResponseWriter, r *http.Request) {
	items, err := s.Quiz.Review(r.Context(), CurrentUserID(r), r.URL.Query().Get("category"))
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to fetch review questions")
		return
	}
	out := make([]ReviewItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, ReviewItemDTO{QuestionDTO: toQuestionDTO(item.Question), MasteryProgress: item.MasteryProgress})
	}
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) MasteredQuestion(w http.ResponseWriter, r *http.Request) {
	pick, err := s.Quiz.RandomMastered(r.Context(), CurrentUserID(r), r.URL.Query().Get("category"))
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to fetch mastered question")
		return
	}
	WriteJSON(w, http.StatusOK, MasteredDTO{
		QuestionDTO:   toQuestionDTO(pick.Question),
		MasteredAt:    pick.MasteredAt,
		TotalMastered: pick.TotalMastered,
	})
}

func (s *Server) ResetMastery(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := s.Quiz.ResetMastery(r.Context(), CurrentUserID(r), req.QuestionID); err != nil {
		s.mapServiceError(w, r, err, "Failed to reset mastery")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
