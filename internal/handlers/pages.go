package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"geekqa/internal/contextutil"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// renderPage executes a page template into a buffer so a failure still yields a clean 500.
func renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	ctx := r.Context()

	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to render page", "page", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// PromptPage serves the question page.
func PromptPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, "prompt.html", nil)
}
