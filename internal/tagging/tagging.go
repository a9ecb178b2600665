// Package tagging derives leveled expertise classifications from a
// contributor's pull request activity by weighted pattern matching.
package tagging

import (
	"math"
	"sort"
	"strings"

	"github.com/xR0am/contribpulse/internal/models"
)

// PRActivity is the slice of a pull request the tag rules look at.
type PRActivity struct {
	Title     string
	FilePaths []string
}

// TagScore is one qualifying tag for one contributor. Tags that never
// matched are omitted entirely rather than reported with score zero.
type TagScore struct {
	Name     string
	Category models.TagCategory
	Score    float64
	LevelInfo
}

// LevelInfo is the leveling state derived from a cumulative score.
type LevelInfo struct {
	Level        int
	Progress     float64
	PointsToNext float64
}

// Score matches every rule against every PR and returns the qualifying
// tags sorted by descending score (name as tiebreak, so output is
// deterministic).
func Score(prs []PRActivity, rules []models.TagConfig) []TagScore {
	totals := make(map[string]float64)
	categories := make(map[string]models.TagCategory)

	for _, rule := range rules {
		categories[rule.Name] = rule.Category
		for _, pr := range prs {
			totals[rule.Name] += matchRule(rule, pr)
		}
	}

	var scores []TagScore
	for name, total := range totals {
		if total <= 0 {
			continue
		}
		scores = append(scores, TagScore{
			Name:      name,
			Category:  categories[name],
			Score:     total,
			LevelInfo: LevelFor(total),
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Name < scores[j].Name
	})

	return scores
}

func matchRule(rule models.TagConfig, pr PRActivity) float64 {
	var score float64

	if rule.MatchesPaths() {
		for _, path := range pr.FilePaths {
			lower := strings.ToLower(path)
			for _, pattern := range rule.Patterns {
				if strings.Contains(lower, strings.ToLower(pattern)) {
					score += rule.Weight
				}
			}
		}
	}

	if rule.MatchesTitles() {
		lower := strings.ToLower(pr.Title)
		for _, pattern := range rule.Patterns {
			if strings.Contains(lower, strings.ToLower(pattern)) {
				score += rule.Weight
			}
		}
	}

	return score
}

// LevelFor converts a cumulative tag score into its level, the progress
// fraction toward the next level and the next level's point threshold.
// Levels follow floor(log2(score+1)), so each level costs twice the
// points of the previous one.
func LevelFor(score float64) LevelInfo {
	if score < 0 {
		score = 0
	}

	level := int(math.Floor(math.Log2(score + 1)))
	currentThreshold := math.Pow(2, float64(level)) - 1
	nextThreshold := math.Pow(2, float64(level+1)) - 1

	progress := (score - currentThreshold) / (nextThreshold - currentThreshold)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	return LevelInfo{
		Level:        level,
		Progress:     progress,
		PointsToNext: nextThreshold,
	}
}
