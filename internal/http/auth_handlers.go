package httpapi

import (
	"net/http"
	"time"

	"jeopardy-trainer-go/internal/services"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PersistentTokenRequest struct {
	Token string `json:"token"`
}

type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        UserDTO   `json:"user"`
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	user, err := s.Accounts.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.mapServiceError(w, r, err, "An error occurred during registration")
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":         "Registration successful! Your account is pending approval. You'll be able to log in once an administrator approves your account.",
		"userId":          user.ID,
		"pendingApproval": true,
	})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	login, err := s.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.mapServiceError(w, r, err, "")
		return
	}
	s.writeLogin(w, login)
}

// PersistentToken hands the signed-in user a long-lived restore token.
func (s *Server) PersistentToken(w http.ResponseWriter, r *http.Request) {
	token, err := s.Accounts.PersistentToken(r.Context(), CurrentUserID(r))
	if err != nil {
		s.mapServiceError(w, r, err, "Internal error")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) RestoreSession(w http.ResponseWriter, r *http.Request) {
	var req PersistentTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	login, err := s.Accounts.RestoreSession(r.Context(), req.Token)
	if err != nil {
		s.mapServiceError(w, r, err, "Internal error")
		return
	}
	s.writeLogin(w, login)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.Accounts.Logout(r.Context(), CurrentClaims(r).SessionID); err != nil {
		s.mapServiceError(w, r, err, "")
		return
	}
	s.clearSessionCookie(w)
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) writeLogin(w http.ResponseWriter, login services.Login) {
	s.setSessionCookie(w, login.AccessToken, login.ExpiresAt)
	WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: login.AccessToken,
		ExpiresAt:   login.ExpiresAt,
		User:        toUserDTO(login.User),
	})
}
