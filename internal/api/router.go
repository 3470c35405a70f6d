package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/EyadAmgad/EduMentorAI/internal/api/middleware"
	"github.com/EyadAmgad/EduMentorAI/internal/generate"
	"github.com/EyadAmgad/EduMentorAI/internal/handlers"
	"github.com/EyadAmgad/EduMentorAI/internal/store"
)

// Deps bundles what the router needs wired in.
type Deps struct {
	DB          store.DataStore
	Redis       *store.RedisStore // nil without redis; rate limiting is skipped
	Locks       store.ExchangeLocker
	Generator   generate.Generator
	ChatTimeout time.Duration
	RateLimit   middleware.RateLimiterConfig
}

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(1024 * 1024)) // documents are text payloads
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting needs redis; development without it runs unlimited
	if deps.Redis != nil {
		limiter := middleware.NewRateLimiter(deps.Redis.Client(), logger, deps.RateLimit)
		r.Use(limiter.Middleware)
	}

	// CORS - clients call from anywhere
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Link", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Create handler and auth middleware
	h := handlers.NewHandler(deps.DB, deps.Redis, deps.Locks, deps.Generator, deps.ChatTimeout, logger)
	auth := middleware.NewAuthMiddleware(deps.DB)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)
	r.Post("/register", h.Register)
	r.Post("/quizzes/shared/{token}", h.SharedQuiz) // token + passcode, no account

	// Authenticated routes (require API key)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Get("/profile", h.Profile)

		r.Post("/chat/stream", h.ChatStream)
		r.Post("/chat/{sessionID}/stream", h.ChatStream)
		r.Get("/chat/sessions", h.ListSessions)
		r.Get("/chat/{sessionID}/messages", h.ListSessionMessages)
		r.Delete("/chat/{sessionID}", h.DeleteSession)

		r.Post("/documents", h.UploadDocument)
		r.Get("/documents", h.ListDocuments)
		r.Get("/documents/{documentID}", h.GetDocument)
		r.Delete("/documents/{documentID}", h.DeleteDocument)

		r.Post("/quizzes/generate", h.GenerateQuiz)
		r.Get("/quizzes", h.ListQuizzes)
		r.Get("/quizzes/{quizID}", h.GetQuiz)
		r.Post("/quizzes/{quizID}/attempts", h.AttemptQuiz)
		r.Post("/quizzes/{quizID}/share", h.ShareQuiz)

		r.Get("/find", h.Search)
	})

	return r
}
