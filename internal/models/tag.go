package models

import (
	"fmt"
	"time"
)

// TagCategory groups tag rules by what they classify
type TagCategory string

const (
	TagCategoryArea TagCategory = "AREA"
	TagCategoryRole TagCategory = "ROLE"
	TagCategoryTech TagCategory = "TECH"
)

// TagConfig is a static expertise rule. AREA and TECH rules are matched
// against PR file paths, ROLE and TECH rules against PR titles; every
// case-insensitive substring match adds Weight to the tag's score.
type TagConfig struct {
	Name     string      `json:"name" mapstructure:"name"`
	Category TagCategory `json:"category" mapstructure:"category"`
	Patterns []string    `json:"patterns" mapstructure:"patterns"`
	Weight   float64     `json:"weight" mapstructure:"weight"`
}

// MatchesPaths reports whether the rule applies to file paths
func (c *TagConfig) MatchesPaths() bool {
	return c.Category == TagCategoryArea || c.Category == TagCategoryTech
}

// MatchesTitles reports whether the rule applies to PR titles
func (c *TagConfig) MatchesTitles() bool {
	return c.Category == TagCategoryRole || c.Category == TagCategoryTech
}

// Tag is the shared registry entry for a tag rule
type Tag struct {
	Name        string      `json:"name" db:"name"`
	Category    TagCategory `json:"category" db:"category"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	LastUpdated time.Time   `json:"last_updated" db:"last_updated"`
}

// UserTagScore is a contributor's cumulative leveled score for one tag
type UserTagScore struct {
	ID           string    `json:"id" db:"id"` // username_tag
	Username     string    `json:"username" db:"username"`
	Tag          string    `json:"tag" db:"tag"`
	Score        float64   `json:"score" db:"score"`
	Level        int       `json:"level" db:"level"`
	Progress     float64   `json:"progress" db:"progress"`
	PointsToNext float64   `json:"points_to_next" db:"points_to_next"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserTagID builds the deterministic composite row ID
func UserTagID(username, tag string) string {
	return fmt.Sprintf("%s_%s", username, tag)
}

// NewUserTagScore creates a tag score row keyed by (username, tag)
func NewUserTagScore(username, tag string) *UserTagScore {
	now := time.Now()
	return &UserTagScore{
		ID:        UserTagID(username, tag),
		Username:  username,
		Tag:       tag,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DefaultTagConfigs returns the built-in rule set, overridable from the
// config file.
func DefaultTagConfigs() []TagConfig {
	return []TagConfig{
		{Name: "frontend", Category: TagCategoryArea, Patterns: []string{"web/", "ui/", "frontend/", ".tsx", ".css"}, Weight: 2},
		{Name: "backend", Category: TagCategoryArea, Patterns: []string{"internal/", "pkg/", "api/", "server/"}, Weight: 2},
		{Name: "docs", Category: TagCategoryArea, Patterns: []string{"docs/", "readme", ".md"}, Weight: 1},
		{Name: "tests", Category: TagCategoryArea, Patterns: []string{"_test.go", "test/", ".spec.", ".test."}, Weight: 1.5},
		{Name: "infra", Category: TagCategoryArea, Patterns: []string{"dockerfile", ".yml", ".yaml", "makefile", "migrations/"}, Weight: 1.5},
		{Name: "feature", Category: TagCategoryRole, Patterns: []string{"feat", "add ", "implement"}, Weight: 2},
		{Name: "bugfix", Category: TagCategoryRole, Patterns: []string{"fix", "bug", "patch"}, Weight: 2},
		{Name: "maintenance", Category: TagCategoryRole, Patterns: []string{"refactor", "chore", "cleanup", "upgrade"}, Weight: 1.5},
		{Name: "go", Category: TagCategoryTech, Patterns: []string{".go"}, Weight: 1},
		{Name: "typescript", Category: TagCategoryTech, Patterns: []string{".ts", ".tsx"}, Weight: 1},
		{Name: "sql", Category: TagCategoryTech, Patterns: []string{".sql", "sqlite", "postgres"}, Weight: 1},
	}
}
