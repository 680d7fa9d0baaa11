package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"geekqa/internal/credentials"
	"geekqa/internal/handlers"
	"geekqa/internal/metrics"
	"geekqa/internal/rag"
	"geekqa/internal/service"
)

// authRealm is shown by browsers in the basic auth prompt.
const authRealm = "geekqa"

// Deps holds dependencies for the HTTP router.
type Deps struct {
	QA        rag.Answerer
	Greetings service.GreetingService
	DB        handlers.Pinger
	// Retrieval is optional; when set, health checks report the search backend.
	Retrieval handlers.Pinger
	Auth      credentials.Auth
	// QARequireAuth puts POST /prompt behind basic auth together with the pages.
	QARequireAuth bool
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())
	r.Use(CORS)

	greetingHandler := handlers.NewGreetingHandler(deps.Greetings)
	promptHandler := handlers.NewPromptHandler(deps.QA)
	authenticated := BasicAuth(authRealm, deps.Auth)

	// Open routes
	r.Get("/greet", greetingHandler.Greet)
	r.Method(http.MethodGet, "/api/health", handlers.NewHealthHandler(deps.DB, deps.Retrieval))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/", greetingHandler.Index)
		r.Post("/greet", greetingHandler.Add)
		r.Get("/prompt", handlers.PromptPage)
		if deps.QARequireAuth {
			r.Method(http.MethodPost, "/prompt", promptHandler)
		}
	})

	if !deps.QARequireAuth {
		r.Method(http.MethodPost, "/prompt", promptHandler)
	}

	return r
}
