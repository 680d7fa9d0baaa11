package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"geekqa/internal/contextutil"
	"geekqa/internal/credentials"
)

func TestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{name: "generates request id", incoming: ""},
		{name: "keeps caller request id", incoming: "req-abc", wantSame: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedCtx context.Context
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedCtx = r.Context()
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()

			LoggerMiddleware(handler).ServeHTTP(w, req)

			if capturedCtx == nil {
				t.Fatal("LoggerMiddleware() should call next handler")
			}
			id := contextutil.RequestIDFromContext(capturedCtx)
			if id == "" {
				t.Error("LoggerMiddleware() should add request id to context")
			}
			if tt.wantSame && id != tt.incoming {
				t.Errorf("request id = %q, want %q", id, tt.incoming)
			}
			if w.Header().Get(RequestIDHeader) != id {
				t.Errorf("response header %s = %q, want %q", RequestIDHeader, w.Header().Get(RequestIDHeader), id)
			}
			if contextutil.LoggerFromContext(capturedCtx) == nil {
				t.Error("LoggerMiddleware() should add logger to context")
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		statusCode int
	}{
		{name: "regular request", method: http.MethodPost, path: "/prompt", statusCode: http.StatusOK},
		{name: "health check", method: http.MethodGet, path: "/api/health", statusCode: http.StatusOK},
		{name: "failing health check", method: http.MethodGet, path: "/api/health", statusCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			})

			w := httptest.NewRecorder()
			RequestLogger(handler).ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.statusCode {
				t.Errorf("RequestLogger() status = %v, want %v", w.Code, tt.statusCode)
			}
		})
	}
}

func TestResponseWriter_WriteHeader(t *testing.T) {
	w := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("responseWriter.WriteHeader() statusCode = %v, want %v", rw.statusCode, http.StatusNotFound)
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("responseWriter.WriteHeader() underlying status = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestBasicAuth(t *testing.T) {
	handler := BasicAuth("test", credentials.Auth{Username: "localuser", Password: "localpass"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	tests := []struct {
		name       string
		user, pass string
		setAuth    bool
		wantStatus int
	}{
		{name: "no credentials", wantStatus: http.StatusUnauthorized},
		{name: "wrong password", user: "localuser", pass: "nope", setAuth: true, wantStatus: http.StatusUnauthorized},
		{name: "wrong user", user: "other", pass: "localpass", setAuth: true, wantStatus: http.StatusUnauthorized},
		{name: "valid", user: "localuser", pass: "localpass", setAuth: true, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 should carry WWW-Authenticate")
			}
		})
	}
}

func TestCORS(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := CORS(handler)

	tests := []struct {
		name           string
		method         string
		origin         string
		wantStatusCode int
		wantOrigin     string
	}{
		{name: "preflight OPTIONS", method: http.MethodOptions, origin: "http://localhost:3000", wantStatusCode: http.StatusNoContent, wantOrigin: "http://localhost:3000"},
		{name: "request with origin", method: http.MethodPost, origin: "http://localhost:3000", wantStatusCode: http.StatusOK, wantOrigin: "http://localhost:3000"},
		{name: "request without origin", method: http.MethodPost, wantStatusCode: http.StatusOK, wantOrigin: "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			middleware.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Errorf("CORS() status = %v, want %v", w.Code, tt.wantStatusCode)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}
