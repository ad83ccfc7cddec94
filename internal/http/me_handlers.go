package httpapi

import (
	"net/http"

	"jeopardy-trainer-go/internal/quiz"
)

type PreferencesRequest struct {
	GameTypeFilters []string `json:"gameTypeFilters"`
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	user, err := s.Accounts.User(r.Context(), CurrentUserID(r))
	if err != nil {
		s.mapServiceError(w, r, err, "")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]UserDTO{"user": toUserDTO(user)})
}

func (s *Server) Preferences(w http.ResponseWriter, r *http.Request) {
	user, err := s.Accounts.User(r.Context(), CurrentUserID(r))
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to fetch preferences")
		return
	}
	WriteJSON(w, http.StatusOK, PreferencesRequest{GameTypeFilters: user.GameTypes()})
}

func (s *Server) SavePreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	tags, err := quiz.ValidateGameTypes(req.GameTypeFilters)
	if err != nil {
		s.mapServiceError(w, r, err, "")
		return
	}
	if err := s.Accounts.SetGameTypes(r.Context(), CurrentUserID(r), tags); err != nil {
		s.mapServiceError(w, r, err, "Failed to update preferences")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "gameTypeFilters": tags})
}

// savedGameTypes reads the stored audience filter; stale tags are dropped.
func (s *Server) savedGameTypes(r *http.Request) ([]string, error) {
	user, err := s.Accounts.User(r.Context(), CurrentUserID(r))
	if err != nil {
		return nil, err
	}
	tags := []string{}
	for _, tag := range user.GameTypes() {
		if valid, err := quiz.ValidateGameTypes([]string{tag}); err == nil {
			tags = append(tags, valid...)
		}
	}
	return tags, nil
}
