package httpapi

import (
	"net/http"
)

type ApproveRequest struct {
	UserID string `json:"userId"`
}

type AdminUsersResponse struct {
	Users []UserDTO `json:"users"`
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Accounts.Users(r.Context())
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to fetch users")
		return
	}
	items := make([]UserDTO, 0, len(users))
	for _, u := range users {
		items = append(items, toUserDTO(u))
	}
	WriteJSON(w, http.StatusOK, AdminUsersResponse{Users: items})
}

func (s *Server) ApproveUser(w http.ResponseWriter, r *http.Request) {
	var req ApproveRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	user, err := s.Accounts.Approve(r.Context(), req.UserID)
	if err != nil {
		s.mapServiceError(w, r, err, "Failed to approve user")
		return
	}
	s.Logger.Info("user approved", "user_id", user.ID, "admin_id", CurrentUserID(r))
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User approved successfully",
		"user":    toUserDTO(user),
	})
}
