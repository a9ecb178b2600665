package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xR0am/contribpulse/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "./contribpulse.db", cfg.Database.Path)

	// Scoring weights come from the built-in defaults.
	assert.Equal(t, 7.0, cfg.Scoring.PullRequest.Base)
	assert.Equal(t, 20, cfg.Scoring.PullRequest.MaxPerDay)
	assert.Equal(t, 0.7, cfg.Scoring.Comment.DiminishingReturns)

	assert.Equal(t, len(models.DefaultTagConfigs()), len(cfg.Tags))
}

func TestLoadOverridesScoringAndTags(t *testing.T) {
	viper.Reset()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
scoring:
  pull_request:
    base: 11
  comment:
    max_per_thread: 5
tags:
  - name: platform
    category: AREA
    patterns: ["platform/"]
    weight: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Overridden fields take the file's values, untouched fields keep
	// their defaults.
	assert.Equal(t, 11.0, cfg.Scoring.PullRequest.Base)
	assert.Equal(t, 3.0, cfg.Scoring.PullRequest.MergedBonus)
	assert.Equal(t, 5, cfg.Scoring.Comment.MaxPerThread)
	assert.Equal(t, 1.0, cfg.Scoring.Comment.Base)

	// A tags list in the file replaces the built-in rule set entirely.
	require.Len(t, cfg.Tags, 1)
	assert.Equal(t, "platform", cfg.Tags[0].Name)
	assert.Equal(t, models.TagCategoryArea, cfg.Tags[0].Category)
	assert.Equal(t, 3.0, cfg.Tags[0].Weight)
}
