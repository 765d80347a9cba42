//go:generate go run go.uber.org/mock/mockgen -source=gemini.go -destination=../mocks/mock_generator.go -package=mocks
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"radchat/errors"
)

type IGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient calls the Gemini REST API to produce one robot reply.
// The base URL is configurable so tests can point it at a local server.
type GeminiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        *slog.Logger
}

func NewGeminiClient(baseURL, apiKey string, log *slog.Logger) *GeminiClient {
	return &GeminiClient{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		log:        log,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt and returns the first candidate's text.
// Cancellation and deadlines come from the caller's context.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := g.baseURL + "/v1beta/models/gemini-2.0-flash:generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		g.log.Warn("generation request rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("body", truncate(string(body), 256)))
		return "", fmt.Errorf("generation failed with status %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err = json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.ErrProviderExhausted
	}

	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", errors.ErrProviderExhausted
	}
	return text, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
