package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime/debug"
	"strconv"

	"jeopardy-trainer-go/internal/services"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Message: message})
}

// decodeJSON reads a bounded JSON body. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// mapServiceError writes the response for a failed operation. Service errors carry
// their own status; anything else is logged with a stack and answered with generic.
func (s *Server) mapServiceError(w http.ResponseWriter, r *http.Request, err error, generic string) {
	var serr services.ServiceError
	if errors.As(err, &serr) && serr.Status != 0 {
		WriteError(w, serr.Status, serr.Message)
		return
	}
	s.Logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", requestID(r),
		"error", err,
		"stack", string(debug.Stack()))
	if generic == "" {
		generic = "Internal server error"
	}
	WriteError(w, http.StatusInternalServerError, generic)
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func parseBool(raw string, fallback bool) bool {
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
