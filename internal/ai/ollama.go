package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const summarySystemPrompt = "You are a technical writer summarizing GitHub activity. " +
	"Write a short factual paragraph in plain prose. Mention the most significant numbers. " +
	"Do not invent information that is not in the metrics."

// OllamaClient implements Generator using the Ollama REST API.
type OllamaClient struct {
	baseURL    string
	model      string
	token      string
	httpClient *http.Client
}

// NewOllamaClient creates an Ollama-backed summary generator.
func NewOllamaClient(baseURL, model, token string) *OllamaClient {
	return &OllamaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		token:      token,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// ModelName returns the chat model identifier.
func (o *OllamaClient) ModelName() string {
	return o.model
}

// GenerateSummary renders the metrics into a prompt and asks the model
// for a narrative. Returns an empty string without calling the model
// when the request reports no activity.
func (o *OllamaClient) GenerateSummary(ctx context.Context, req SummaryRequest) (string, error) {
	if !req.HasActivity {
		return "", nil
	}

	metricsJSON, err := json.MarshalIndent(req.Metrics, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ollama summary: encode metrics: %w", err)
	}

	userPrompt := fmt.Sprintf(
		"Summarize the %s activity of %s %s for the %s starting %s.\n\nMetrics:\n%s",
		req.IntervalType, req.Kind, req.Entity, req.IntervalType, req.Date, metricsJSON,
	)

	payload := map[string]interface{}{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "system", "content": summarySystemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"stream": false,
	}

	body, err := o.post(ctx, "/api/chat", payload)
	if err != nil {
		return "", fmt.Errorf("ollama summary: %w", err)
	}

	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("ollama summary decode: %w", err)
	}

	return strings.TrimSpace(resp.Message.Content), nil
}

func (o *OllamaClient) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.token != "" {
		req.Header.Set("Authorization", "Bearer "+o.token)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
