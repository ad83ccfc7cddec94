package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.Catalog.Categories(r.Context())
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to fetch categories")
		return
	}
	WriteJSON(w, http.StatusOK, cats)
}

func (s *Server) QuestionByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "questionId"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "Invalid question ID")
		return
	}
	q, err := s.Catalog.Question(r.Context(), id)
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to fetch question")
		return
	}
	WriteJSON(w, http.StatusOK, toQuestionDTO(q))
}

func (s *Server) ArchiveQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	reason := ""
	if req.Reason != nil {
		reason = *req.Reason
	}
	if err := s.Catalog.Archive(r.Context(), req.QuestionID, reason); err != nil {
		s.mapServiceError(w, r, err, "Failed to archive question")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) UnarchiveQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := s.Catalog.Unarchive(r.Context(), req.QuestionID); err != nil {
		s.mapServiceError(w, r, err, "Failed to unarchive question")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) ArchivedQuestions(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Catalog.Archived(r.Context())
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to fetch archived questions")
		return
	}
	WriteJSON(w, http.StatusOK, toQuestionDTOs(rows))
}
