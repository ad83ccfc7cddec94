package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"jeopardy-trainer-go/internal/coryat"
	"jeopardy-trainer-go/internal/models"
)

type AnswerRequest struct {
	Round    string          `json:"round"`
	Col      *int            `json:"col"`
	Row      *int            `json:"row"`
	Response coryat.Response `json:"response"`
}

type GameDTO struct {
	ID                string          `json:"id"`
	StartedAt         time.Time       `json:"started_at"`
	CompletedAt       *time.Time      `json:"completed_at"`
	GameBoard         json.RawMessage `json:"gameBoard"`
	JeopardyScore     int             `json:"jeopardy_score"`
	DoubleJScore      int             `json:"double_j_score"`
	FinalScore        *int            `json:"final_score"`
	CurrentRound      int             `json:"current_round"`
	QuestionsAnswered int             `json:"questions_answered"`
}

type GameHistoryDTO struct {
	Games          []GameDTO         `json:"games"`
	Statistics     coryat.Statistics `json:"statistics"`
	IncompleteGame *GameDTO          `json:"incompleteGame"`
}

func toGameDTO(g models.CoryatGame) GameDTO {
	return GameDTO{
		ID:                g.ID,
		StartedAt:         g.StartedAt,
		CompletedAt:       g.CompletedAt,
		GameBoard:         g.GameBoard,
		JeopardyScore:     g.JeopardyScore,
		DoubleJScore:      g.DoubleJScore,
		FinalScore:        g.FinalScore,
		CurrentRound:      g.CurrentRound,
		QuestionsAnswered: g.QuestionsAnswered,
	}
}

func (s *Server) CreateGame(w http.ResponseWriter, r *http.Request) {
	game, err := s.Coryat.Create(r.Context(), CurrentUserID(r))
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to create game")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"gameId":    game.ID,
		"gameBoard": game.GameBoard,
	})
}

func (s *Server) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := s.Coryat.Get(r.Context(), CurrentUserID(r), chi.URLParam(r, "gameId"))
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to fetch game")
		return
	}
	WriteJSON(w, http.StatusOK, toGameDTO(game.CoryatGame))
}

func (s *Server) AnswerCell(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	in := coryat.AnswerInput{Round: req.Round, Response: req.Response}
	if req.Col != nil && req.Row != nil {
		in.Col, in.Row = *req.Col, *req.Row
	} else if req.Round == coryat.RoundJeopardy || req.Round == coryat.RoundDoubleJeopardy {
		// scored rounds address a cell; a missing coordinate names no question
		WriteError(w, http.StatusNotFound, "Question not found")
		return
	}
	result, err := s.Coryat.Answer(r.Context(), CurrentUserID(r), chi.URLParam(r, "gameId"), in)
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to submit answer")
		return
	}
	WriteJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		coryat.AnswerResult
	}{true, result})
}

func (s *Server) CompleteGame(w http.ResponseWriter, r *http.Request) {
	summary, err := s.Coryat.Complete(r.Context(), CurrentUserID(r), chi.URLParam(r, "gameId"))
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to complete game")
		return
	}
	WriteJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		coryat.Summary
	}{true, summary})
}

func (s *Server) GameHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.Coryat.History(r.Context(), CurrentUserID(r))
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to fetch history")
		return
	}
	out := GameHistoryDTO{Games: make([]GameDTO, 0, len(history.Games)), Statistics: history.Statistics}
	for _, g := range history.Games {
		out.Games = append(out.Games, toGameDTO(g))
	}
	if history.IncompleteGame != nil {
		open := toGameDTO(*history.IncompleteGame)
		out.IncompleteGame = &open
	}
	WriteJSON(w, http.StatusOK, out)
}
