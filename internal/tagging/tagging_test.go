package tagging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xR0am/contribpulse/internal/models"
)

func TestScore(t *testing.T) {
	rules := []models.TagConfig{
		{Name: "backend", Category: models.TagCategoryArea, Patterns: []string{"internal/", "api/"}, Weight: 2},
		{Name: "bugfix", Category: models.TagCategoryRole, Patterns: []string{"fix"}, Weight: 2},
		{Name: "go", Category: models.TagCategoryTech, Patterns: []string{".go"}, Weight: 1},
		{Name: "docs", Category: models.TagCategoryArea, Patterns: []string{"docs/"}, Weight: 1},
	}

	prs := []PRActivity{
		{
			Title:     "Fix nil pointer in score service",
			FilePaths: []string{"internal/services/score_service.go", "internal/services/score_service_test.go"},
		},
		{
			Title:     "Add leaderboard endpoint",
			FilePaths: []string{"internal/api/leaderboard.go"},
		},
	}

	scores := Score(prs, rules)

	byName := make(map[string]TagScore)
	for _, s := range scores {
		byName[s.Name] = s
	}

	t.Run("AREA rules match file paths", func(t *testing.T) {
		// internal/ matches 3 paths, api/ matches 1, each worth 2.
		require.Contains(t, byName, "backend")
		assert.InDelta(t, 8, byName["backend"].Score, 1e-9)
		assert.Equal(t, models.TagCategoryArea, byName["backend"].Category)
	})

	t.Run("ROLE rules match titles case-insensitively", func(t *testing.T) {
		require.Contains(t, byName, "bugfix")
		assert.InDelta(t, 2, byName["bugfix"].Score, 1e-9)
	})

	t.Run("TECH rules match both paths and titles", func(t *testing.T) {
		require.Contains(t, byName, "go")
		// Three .go paths; neither title contains ".go".
		assert.InDelta(t, 3, byName["go"].Score, 1e-9)
	})

	t.Run("Zero-score tags are omitted", func(t *testing.T) {
		assert.NotContains(t, byName, "docs")
	})

	t.Run("Output is sorted by descending score", func(t *testing.T) {
		for i := 0; i+1 < len(scores); i++ {
			assert.GreaterOrEqual(t, scores[i].Score, scores[i+1].Score)
		}
	})
}

func TestScoreNoActivity(t *testing.T) {
	scores := Score(nil, models.DefaultTagConfigs())
	assert.Empty(t, scores)
}

func TestLevelFor(t *testing.T) {
	testCases := []struct {
		name             string
		score            float64
		expectedLevel    int
		expectedProgress float64
		expectedToNext   float64
	}{
		{name: "Zero score is level 0", score: 0, expectedLevel: 0, expectedProgress: 0, expectedToNext: 1},
		{name: "Half way through level 0", score: 0.5, expectedLevel: 0, expectedProgress: 0.5, expectedToNext: 1},
		{name: "Score 1 starts level 1", score: 1, expectedLevel: 1, expectedProgress: 0, expectedToNext: 3},
		{name: "Score 3 starts level 2", score: 3, expectedLevel: 2, expectedProgress: 0, expectedToNext: 7},
		{name: "Mid level 2", score: 5, expectedLevel: 2, expectedProgress: 0.5, expectedToNext: 7},
		{name: "Score 7 starts level 3", score: 7, expectedLevel: 3, expectedProgress: 0, expectedToNext: 15},
		{name: "Score 15 starts level 4", score: 15, expectedLevel: 4, expectedProgress: 0, expectedToNext: 31},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info := LevelFor(tc.score)
			assert.Equal(t, tc.expectedLevel, info.Level)
			assert.InDelta(t, tc.expectedProgress, info.Progress, 1e-9)
			assert.InDelta(t, tc.expectedToNext, info.PointsToNext, 1e-9)
		})
	}

	t.Run("Approaching a boundary fills progress, crossing it resets", func(t *testing.T) {
		justBelow := LevelFor(6.999)
		assert.Equal(t, 2, justBelow.Level)
		assert.InDelta(t, 1.0, justBelow.Progress, 0.001)

		crossed := LevelFor(7)
		assert.Equal(t, 3, crossed.Level)
		assert.InDelta(t, 0, crossed.Progress, 1e-9)
	})

	t.Run("Negative scores are clamped", func(t *testing.T) {
		info := LevelFor(-4)
		assert.Equal(t, 0, info.Level)
		assert.InDelta(t, 0, info.Progress, 1e-9)
	})
}
