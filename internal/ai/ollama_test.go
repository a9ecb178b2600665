package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSummary(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Stream   bool   `json:"stream"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message": map[string]string{"content": "  A busy week for alice.  "},
		})
	}))
	defer ts.Close()

	client := NewOllamaClient(ts.URL, "qwen3", "secret")

	summary, err := client.GenerateSummary(context.Background(), SummaryRequest{
		Entity:       "alice",
		Kind:         "contributor",
		IntervalType: "week",
		Date:         "2024-07-14",
		HasActivity:  true,
		Metrics:      map[string]int{"pull_requests": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "A busy week for alice.", summary)

	assert.Equal(t, "qwen3", captured.Model)
	assert.False(t, captured.Stream)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[1].Content, "alice")
	assert.Contains(t, captured.Messages[1].Content, "pull_requests")
}

func TestGenerateSummaryNoActivitySkipsModel(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewOllamaClient(ts.URL, "qwen3", "")

	summary, err := client.GenerateSummary(context.Background(), SummaryRequest{HasActivity: false})
	require.NoError(t, err)
	assert.Empty(t, summary)
	assert.False(t, called, "the model is never consulted for empty intervals")
}

func TestGenerateSummaryServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer ts.Close()

	client := NewOllamaClient(ts.URL, "missing", "")

	_, err := client.GenerateSummary(context.Background(), SummaryRequest{HasActivity: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
