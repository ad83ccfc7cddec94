package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"jeopardy-trainer-go/internal/models"
	"jeopardy-trainer-go/internal/services"
)

const sessionCookie = "session-token"

type contextKey string

const ctxClaims contextKey = "claims"

// Authenticator verifies an access token against its server-side session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (services.Claims, error)
}

// WithAuth accepts a Bearer token or the session cookie. Rejected credentials
// answer 401; a failing session lookup is a server error.
func (s *Server) WithAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			claims, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				s.authFailed(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *Server) authFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.Unauthorized) {
		WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.mapServiceError(w, r, err, "")
}

func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func CurrentClaims(r *http.Request) services.Claims {
	if value, ok := r.Context().Value(ctxClaims).(services.Claims); ok {
		return value
	}
	return services.Claims{}
}

func CurrentUserID(r *http.Request) string {
	return CurrentClaims(r).UserID
}

func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if CurrentClaims(r).Role != role {
				WriteError(w, http.StatusForbidden, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(models.RoleAdmin)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   s.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
