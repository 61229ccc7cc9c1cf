package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"quizbot-backend/internal/handlers"
	"quizbot-backend/internal/middleware"
)

func New(
	chatHandler *handlers.ChatHandler,
	quizHandler *handlers.QuizHandler,
	documentHandler *handlers.DocumentHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Model-call rate limiter (20 req/min per IP)
	modelLimiter := middleware.NewRateLimiter(20, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Chat Route ────
		r.Group(func(r chi.Router) {
			r.Use(modelLimiter.Middleware)
			r.Post("/chat", chatHandler.Query)
		})

		// ──── Quiz Routes ────
		r.Route("/quiz", func(r chi.Router) {
			r.Get("/current", quizHandler.Current)
			r.Post("/answer", quizHandler.SubmitAnswer)
			r.Post("/next", quizHandler.Advance)
		})

		// ──── Document Routes ────
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", documentHandler.List)
			r.Delete("/{id}", documentHandler.Delete)

			r.Group(func(r chi.Router) {
				r.Use(modelLimiter.Middleware)
				r.Post("/upload", documentHandler.Upload)
			})
		})
	})

	return r
}
