package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestOpenAIGenerator_Generate(t *testing.T) {
	tests := []struct {
		name       string
		serverResp func(w http.ResponseWriter, r *http.Request)
		wantText   string
		wantErr    error
	}{
		{
			name: "successful completion",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/chat/completions" {
					t.Errorf("expected /v1/chat/completions, got %s", r.URL.Path)
				}
				if !strings.Contains(r.Header.Get("Authorization"), "Bearer test-key") {
					t.Error("missing Authorization header")
				}
				var req map[string]any
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("decode request: %v", err)
				}
				if req["max_tokens"] != float64(256) {
					t.Errorf("max_tokens = %v, want 256", req["max_tokens"])
				}
				msgs, _ := req["messages"].([]any)
				if len(msgs) != 1 {
					t.Errorf("messages = %v, want one user message", req["messages"])
				}

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","model":"test-model",` +
					`"choices":[{"index":0,"message":{"role":"assistant","content":"やっほー！"},"finish_reason":"stop"}],` +
					`"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`))
			},
			wantText: "やっほー！",
		},
		{
			name: "no choices",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
			},
			wantErr: ErrGenerationUnavailable,
		},
		{
			name: "server error",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":{"message":"model not loaded","type":"server_error"}}`))
			},
			wantErr: ErrGenerationUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResp))
			defer server.Close()

			g, err := NewOpenAIGenerator(server.URL, "test-key", "test-model", 256)
			if err != nil {
				t.Fatalf("NewOpenAIGenerator() error = %v", err)
			}

			answer, err := g.Generate(context.Background(), "prompt")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Generate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Generate() unexpected error: %v", err)
			}
			if answer.Text != tt.wantText {
				t.Errorf("Generate() = %q, want %q", answer.Text, tt.wantText)
			}
		})
	}
}

func TestOpenAIGenerator_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	// Runs before server.Close so the handler never outlives the test.
	defer close(release)

	g, _ := NewOpenAIGenerator(server.URL, "k", "m", 10)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := g.Generate(ctx, "prompt")
	if !errors.Is(err, ErrGenerationTimeout) {
		t.Errorf("Generate() error = %v, want ErrGenerationTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Generate() returned after %v, want it bounded by the context deadline", elapsed)
	}
}

func TestNewOpenAIGenerator_Validation(t *testing.T) {
	if _, err := NewOpenAIGenerator("", "k", "m", 10); err == nil {
		t.Error("expected error for empty base url")
	}
	if _, err := NewOpenAIGenerator("http://localhost:8080", "k", "m", 0); err == nil {
		t.Error("expected error for zero max tokens")
	}
}

func TestEmbeddingsClient_EmbedQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("expected /v1/embeddings, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.5,0.25]}],` +
			`"model":"embed","usage":{"prompt_tokens":1,"total_tokens":1}}`))
	}))
	defer server.Close()

	c := NewEmbeddingsClient(server.URL+"/", "k", "embed")
	vec, err := c.EmbedQuery(context.Background(), "秋葉原")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.5 || vec[1] != 0.25 {
		t.Errorf("EmbedQuery() = %v, want [0.5 0.25]", vec)
	}
}

func TestEmbeddingsClient_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer server.Close()

	if _, err := NewEmbeddingsClient(server.URL, "k", "embed").EmbedQuery(context.Background(), "x"); err == nil {
		t.Error("EmbedQuery() expected error for empty data")
	}
}
