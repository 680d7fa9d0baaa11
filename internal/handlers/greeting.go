package handlers

import (
	"errors"
	"net/http"

	"geekqa/internal/contextutil"
	"geekqa/internal/service"
	"geekqa/internal/storage"
)

// GreetingHandler serves the greeting list page and greeting endpoints.
type GreetingHandler struct {
	greetings service.GreetingService
}

// NewGreetingHandler creates a new GreetingHandler.
func NewGreetingHandler(greetings service.GreetingService) *GreetingHandler {
	return &GreetingHandler{greetings: greetings}
}

type indexPage struct {
	Greetings     []storage.Greeting
	MaxNameLength int
}

// Index renders the stored greetings.
func (h *GreetingHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	greetings, err := h.greetings.List(ctx)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to list greetings", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	renderPage(w, r, "index.html", indexPage{Greetings: greetings, MaxNameLength: service.MaxGreetingNameLength})
}

// Greet responds with a plain-text greeting for the name query parameter.
func (h *GreetingHandler) Greet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(service.Greet(r.URL.Query().Get("name"))))
}

// Add stores the posted name and redirects back to the list.
func (h *GreetingHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, 16<<10)
	if err := r.ParseForm(); err != nil {
		logger.WarnContext(ctx, "invalid form body", "error", err)
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	if _, err := h.greetings.Add(ctx, r.PostForm.Get("name")); err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			http.Error(w, validationErr.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
