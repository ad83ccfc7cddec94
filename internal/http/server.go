package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"jeopardy-trainer-go/internal/config"
	"jeopardy-trainer-go/internal/coryat"
	"jeopardy-trainer-go/internal/quiz"
	"jeopardy-trainer-go/internal/services"
	"jeopardy-trainer-go/internal/stats"
	"jeopardy-trainer-go/internal/study"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Config   config.Config
	Logger   *slog.Logger
	DB       Pinger
	Accounts *services.Accounts
	Selector *quiz.Selector
	Quiz     *quiz.Service
	Catalog  *quiz.Catalog
	Coryat   *coryat.Service
	Study    *study.Service
	Stats    *stats.Service
	Metrics  services.MetricStore
	Events   *services.EventHub
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.Logger))
	r.Use(middleware.Recoverer)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", s.Healthz)

	rate := s.Config.LoginRatePerMinute
	if rate <= 0 {
		rate = 20
	}
	limited := httprate.LimitByIP(rate, time.Minute)
	authed := s.WithAuth(s.Accounts)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.With(limited).Post("/register", s.Register)
			auth.With(limited).Post("/login", s.Login)
			auth.With(limited).Post("/persistent-token", s.RestoreSession)
			auth.With(authed).Get("/persistent-token", s.PersistentToken)
			auth.With(authed).Post("/logout", s.Logout)
		})

		api.Group(func(user chi.Router) {
			user.Use(authed)
			user.Get("/me", s.Me)
			user.Get("/preferences", s.Preferences)
			user.Post("/preferences", s.SavePreferences)

			user.Get("/categories", s.Categories)
			user.Get("/questions/{questionId}", s.QuestionByID)
			user.Get("/archive", s.ArchivedQuestions)
			user.Post("/archive", s.ArchiveQuestion)
			user.Post("/unarchive", s.UnarchiveQuestion)

			user.Get("/quiz/random", s.RandomQuestion)
			user.Post("/quiz/submit", s.SubmitAnswer)
			user.Post("/quiz/complete", s.CompleteSession)
			user.Get("/review", s.ReviewQuestions)
			user.Get("/mastered", s.MasteredQuestion)
			user.Post("/mastery/reset", s.ResetMastery)

			user.Route("/coryat", func(games chi.Router) {
				games.Post("/create", s.CreateGame)
				games.Get("/history", s.GameHistory)
				games.Get("/{gameId}", s.GetGame)
				games.Post("/{gameId}/answer", s.AnswerCell)
				games.Post("/{gameId}/complete", s.CompleteGame)
			})

			user.Post("/study/generate", s.GenerateStudy)
			user.Get("/study/history", s.StudyHistory)
			user.Get("/study/latest", s.LatestStudy)

			user.Get("/stats", s.Dashboard)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(authed)
			admin.Use(RequireAdmin())
			admin.Get("/users", s.ListUsers)
			admin.Post("/approve", s.ApproveUser)
			admin.Get("/metrics/history", s.MetricsHistory)
		})
	})

	r.Get("/ws/admin/events", s.EventsSocket)
	return r
}
