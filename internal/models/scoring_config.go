package models

// ScoringConfig is the tunable weight/cap/multiplier tree governing
// every scoring call within one pipeline run. It is constructed once
// and treated as read-only afterwards.
type ScoringConfig struct {
	PullRequest PullRequestScoring `json:"pull_request" mapstructure:"pull_request"`
	Issue       IssueScoring       `json:"issue" mapstructure:"issue"`
	Review      ReviewScoring      `json:"review" mapstructure:"review"`
	Comment     CommentScoring     `json:"comment" mapstructure:"comment"`
	CodeChange  CodeChangeScoring  `json:"code_change" mapstructure:"code_change"`
}

type PullRequestScoring struct {
	Base                  float64 `json:"base" mapstructure:"base"`
	MergedBonus           float64 `json:"merged_bonus" mapstructure:"merged_bonus"`
	DescriptionMultiplier float64 `json:"description_multiplier" mapstructure:"description_multiplier"`
	ComplexityMultiplier  float64 `json:"complexity_multiplier" mapstructure:"complexity_multiplier"`
	OptimalSizeBonus      float64 `json:"optimal_size_bonus" mapstructure:"optimal_size_bonus"`
	MaxPerDay             int     `json:"max_per_day" mapstructure:"max_per_day"`
}

type IssueScoring struct {
	Base         float64 `json:"base" mapstructure:"base"`
	ClosedBonus  float64 `json:"closed_bonus" mapstructure:"closed_bonus"`
	PerComment   float64 `json:"per_comment" mapstructure:"per_comment"`
	MaxPerThread int     `json:"max_per_thread" mapstructure:"max_per_thread"`
}

type ReviewScoring struct {
	Base                  float64 `json:"base" mapstructure:"base"`
	ApprovedBonus         float64 `json:"approved_bonus" mapstructure:"approved_bonus"`
	ChangesRequestedBonus float64 `json:"changes_requested_bonus" mapstructure:"changes_requested_bonus"`
	CommentedBonus        float64 `json:"commented_bonus" mapstructure:"commented_bonus"`
}

type CommentScoring struct {
	Base               float64 `json:"base" mapstructure:"base"`
	DiminishingReturns float64 `json:"diminishing_returns" mapstructure:"diminishing_returns"`
	MaxPerThread       int     `json:"max_per_thread" mapstructure:"max_per_thread"`
}

type CodeChangeScoring struct {
	MaxLines         int     `json:"max_lines" mapstructure:"max_lines"`
	MaxFiles         int     `json:"max_files" mapstructure:"max_files"`
	OptimalMin       int     `json:"optimal_min" mapstructure:"optimal_min"`
	OptimalMax       int     `json:"optimal_max" mapstructure:"optimal_max"`
	PenaltyThreshold int     `json:"penalty_threshold" mapstructure:"penalty_threshold"`
	LargePenalty     float64 `json:"large_penalty" mapstructure:"large_penalty"`
}

// NewScoringConfig returns the default scoring configuration
func NewScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		PullRequest: PullRequestScoring{
			Base:                  7,
			MergedBonus:           3,
			DescriptionMultiplier: 0.01,
			ComplexityMultiplier:  0.5,
			OptimalSizeBonus:      5,
			MaxPerDay:             20,
		},
		Issue: IssueScoring{
			Base:         5,
			ClosedBonus:  2,
			PerComment:   0.5,
			MaxPerThread: 10,
		},
		Review: ReviewScoring{
			Base:                  5,
			ApprovedBonus:         2,
			ChangesRequestedBonus: 3,
			CommentedBonus:        1,
		},
		Comment: CommentScoring{
			Base:               1,
			DiminishingReturns: 0.7,
			MaxPerThread:       20,
		},
		CodeChange: CodeChangeScoring{
			MaxLines:         1000,
			MaxFiles:         10,
			OptimalMin:       100,
			OptimalMax:       500,
			PenaltyThreshold: 1000,
			LargePenalty:     5,
		},
	}
}
