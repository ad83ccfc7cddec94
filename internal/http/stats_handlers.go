package httpapi

import (
	"net/http"
	"strconv"

	"jeopardy-trainer-go/internal/stats"
)

func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := stats.Query{IncludeReviewed: parseBool(query.Get("includeReviewed"), false)}
	if raw := query.Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 {
			WriteError(w, http.StatusBadRequest, "Invalid days parameter")
			return
		}
		q.Days = days
	}
	dash, err := s.Stats.Dashboard(r.Context(), CurrentUserID(r), q)
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to fetch statistics")
		return
	}
	WriteJSON(w, http.StatusOK, dash)
}
