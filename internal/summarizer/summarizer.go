// Package summarizer turns a pull request's changed files into a short prose
// summary via the Anthropic Messages API. Summarization is best-effort: every
// failure is logged and replaced with a fixed fallback so the surrounding
// sync pipeline never aborts on it.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// NoChangesSummary is returned for an empty file list without any API call.
	NoChangesSummary = "No files changed in this pull request."
	// FallbackSummary is returned when the completion call fails.
	FallbackSummary = "Failed to generate summary of changed files."
	// EmptySummary is returned when the response has no text content block.
	EmptySummary = "Could not generate summary."

	anthropicVersion = "2023-06-01"
	maxPatchChars    = 4000
)

// ChangedFile is the condensed per-file representation fed to the model.
type ChangedFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
	Patch     string `json:"patch,omitempty"`
}

type Service struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

func New(apiKey, baseURL, model string, maxTokens int, timeout time.Duration) *Service {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	return &Service{
		apiKey:    apiKey,
		baseURL:   baseURL,
		model:     model,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: timeout},
	}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SummarizeFiles never returns an error: an empty file list yields
// NoChangesSummary and any API failure yields FallbackSummary.
func (s *Service) SummarizeFiles(ctx context.Context, files []ChangedFile) string {
	if len(files) == 0 {
		return NoChangesSummary
	}

	text, err := s.createMessage(ctx, buildPrompt(files))
	if err != nil {
		slog.Error("files summary generation failed", "error", err, "files", len(files))
		return FallbackSummary
	}
	return text
}

func buildPrompt(files []ChangedFile) string {
	condensed := make([]ChangedFile, len(files))
	for i, f := range files {
		if len(f.Patch) > maxPatchChars {
			f.Patch = f.Patch[:maxPatchChars]
		}
		condensed[i] = f
	}

	details, err := json.MarshalIndent(condensed, "", "  ")
	if err != nil {
		details = []byte("[]")
	}

	return fmt.Sprintf(`
You are an expert code reviewer. Analyze the following files changed in a pull request and provide a concise summary:

%s

Focus on:
1. What types of files were changed (frontend, backend, tests, configs, etc.)
2. The main components/systems affected
3. Notable patterns in the changes (e.g., "mostly adding new API endpoints" or "refactoring utility functions")
4. Potential impact areas

Keep your summary under 150 words and be specific about what was changed.
`, details)
}

func (s *Service) createMessage(ctx context.Context, prompt string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("API key not configured")
	}

	reqBody, err := json.Marshal(messageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned %d: %s", resp.StatusCode, string(body))
	}

	var msgResp messageResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", err
	}

	for _, block := range msgResp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return EmptySummary, nil
}
