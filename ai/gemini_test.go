package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateReturnsFirstCandidate(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodPost, r.Method)
		req.Equal("secret-key", r.Header.Get("x-goog-api-key"))

		var payload geminiRequest
		req.NoError(json.NewDecoder(r.Body).Decode(&payload))
		req.Len(payload.Contents, 1)

		_ = json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []struct {
				Content geminiContent `json:"content"`
			}{
				{Content: geminiContent{Parts: []geminiPart{{Text: "  Ahoy from Basile!  "}}}},
			},
		})
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "secret-key", slog.Default())
	text, err := client.Generate(context.Background(), "say something")
	req.NoError(err)
	req.Equal("Ahoy from Basile!", text)
}

func TestGenerateErrorStatus(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "secret-key", slog.Default())
	_, err := client.Generate(context.Background(), "say something")
	req.Error(err)
}

func TestGenerateEmptyCandidates(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "secret-key", slog.Default())
	_, err := client.Generate(context.Background(), "say something")
	req.Error(err)
}

func TestGenerateHonorsContextDeadline(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "secret-key", slog.Default())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, "say something")
	req.Error(err)
}
