package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"jeopardy-trainer-go/internal/models"
	"jeopardy-trainer-go/internal/services"
)

type MetricsHistoryResponse struct {
	Items []models.ServerMetricSample `json:"items"`
}

func (s *Server) MetricsHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 120)
	items, err := services.MetricHistory(r.Context(), s.Metrics, limit)
	if err != nil {
		s.mapServiceError(w, r, err, "")
		return
	}
	WriteJSON(w, http.StatusOK, MetricsHistoryResponse{Items: items})
}

// EventsSocket streams metric samples and registration events to admins.
// Browsers cannot set headers on a websocket handshake, so the access token
// travels in the query string.
func (s *Server) EventsSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	claims, err := s.Accounts.Authenticate(r.Context(), token)
	if err != nil {
		s.authFailed(w, r, err)
		return
	}
	if claims.Role != models.RoleAdmin {
		WriteError(w, http.StatusForbidden, "Unauthorized")
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.Events.Add(conn)
	s.Logger.Info("admin events subscribed", "user_id", claims.UserID, "clients", s.Events.Clients())
	defer func() {
		s.Events.Remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if s.DB != nil {
		if err := s.DB.Ping(ctx); err != nil {
			s.Logger.Warn("health check failed", "error", err)
			WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
