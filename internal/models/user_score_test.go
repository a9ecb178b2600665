package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMetricsRoundTrip(t *testing.T) {
	metrics := UserScoreMetrics{
		PullRequests: PullRequestMetrics{Total: 3, Merged: 2, Open: 1},
		Comments:     CommentMetrics{Total: 5, PullRequests: 4, Issues: 1},
	}
	data, err := json.Marshal(metrics)
	require.NoError(t, err)

	score := NewUserDailyScore("alice", "2024-07-15")
	score.Metrics = string(data)

	decoded := score.DecodeMetrics()
	assert.Equal(t, metrics, decoded)
}

func TestDecodeMetricsToleratesBadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		metrics string
	}{
		{"empty string", ""},
		{"truncated json", `{"pull_requests":`},
		{"wrong shape", `{"bogus": true}`},
		{"wrong field type", `{"pull_requests": "three"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := NewUserDailyScore("alice", "2024-07-15")
			score.Metrics = tt.metrics

			// Never panics, never errors, just zero values.
			assert.Equal(t, UserScoreMetrics{}, score.DecodeMetrics())
		})
	}
}
