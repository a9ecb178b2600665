// Package scoring turns a contributor's raw activity within a window
// into point totals. Everything here is pure: identical input rows and
// identical config produce identical results.
package scoring

import (
	"math"
	"strings"

	"github.com/xR0am/contribpulse/internal/models"
)

// Input is one contributor's raw activity within a scoring window.
type Input struct {
	PullRequests []*models.PullRequest
	Issues       []*models.Issue
	Reviews      []*models.Review
	Comments     []*models.Comment
	Commits      []*models.Commit
}

// Result carries the total, the four component scores, and the metrics
// snapshot persisted verbatim for display. Metrics are a separate
// concern from the score and are never re-derived from it.
type Result struct {
	Total        float64
	PRScore      float64
	IssueScore   float64
	ReviewScore  float64
	CommentScore float64
	Metrics      models.UserScoreMetrics
}

// Calculate computes a contributor's score for a window.
func Calculate(in Input, cfg *models.ScoringConfig) Result {
	res := Result{
		PRScore:      PullRequestScore(in.PullRequests, cfg),
		IssueScore:   IssueScore(in.Issues, cfg),
		ReviewScore:  ReviewScore(in.Reviews, cfg),
		CommentScore: CommentScore(in.Comments, cfg),
		Metrics:      collectMetrics(in),
	}
	res.Total = res.PRScore + res.IssueScore + res.ReviewScore + res.CommentScore
	return res
}

// PullRequestScore scores pull requests with a per-day cap. Within each
// calendar day of creation only the first MaxPerDay PRs (input order)
// count, so opening dozens of PRs in one day stops paying off.
func PullRequestScore(prs []*models.PullRequest, cfg *models.ScoringConfig) float64 {
	perDay := make(map[string]int)
	var score float64

	for _, pr := range prs {
		day := pr.CreatedDay()
		if perDay[day] >= cfg.PullRequest.MaxPerDay {
			continue
		}
		perDay[day]++
		score += scoreOnePR(pr, cfg)
	}

	return score
}

func scoreOnePR(pr *models.PullRequest, cfg *models.ScoringConfig) float64 {
	score := cfg.PullRequest.Base

	if pr.Merged() {
		score += cfg.PullRequest.MergedBonus
	}

	// Description quality credit, capped so walls of text don't pay.
	score += math.Min(float64(len(pr.Body))*cfg.PullRequest.DescriptionMultiplier, 10)

	totalLines := pr.Additions + pr.Deletions
	cappedLines := math.Min(float64(totalLines), float64(cfg.CodeChange.MaxLines))
	cappedFiles := math.Min(float64(pr.ChangedFiles), float64(cfg.CodeChange.MaxFiles))
	complexity := cappedFiles * math.Log(cappedLines+1)
	score += complexity * cfg.PullRequest.ComplexityMultiplier

	if totalLines >= cfg.CodeChange.OptimalMin && totalLines <= cfg.CodeChange.OptimalMax {
		score += cfg.PullRequest.OptimalSizeBonus
	} else if totalLines > cfg.CodeChange.PenaltyThreshold {
		score -= cfg.CodeChange.LargePenalty
	}

	return score
}

// IssueScore scores issues: a base per issue, a bonus per closed issue,
// and credit for discussion capped at MaxPerThread comments.
func IssueScore(issues []*models.Issue, cfg *models.ScoringConfig) float64 {
	total := len(issues)
	closed := 0
	comments := 0
	for _, issue := range issues {
		if strings.EqualFold(issue.State, "CLOSED") {
			closed++
		}
		comments += issue.CommentCount
	}

	score := float64(total) * cfg.Issue.Base
	score += float64(closed) * cfg.Issue.ClosedBonus
	score += math.Min(float64(comments), float64(cfg.Issue.MaxPerThread)) * cfg.Issue.PerComment
	return score
}

// ReviewScore scores reviews by outcome state.
func ReviewScore(reviews []*models.Review, cfg *models.ScoringConfig) float64 {
	var score float64
	for _, review := range reviews {
		switch strings.ToUpper(review.State) {
		case "APPROVED":
			score += cfg.Review.Base + cfg.Review.ApprovedBonus
		case "CHANGES_REQUESTED":
			score += cfg.Review.Base + cfg.Review.ChangesRequestedBonus
		case "COMMENTED":
			score += cfg.Review.Base + cfg.Review.CommentedBonus
		}
	}
	return score
}

// CommentScore applies geometric diminishing returns over up to
// MaxPerThread comments (PR and issue comments combined).
func CommentScore(comments []*models.Comment, cfg *models.ScoringConfig) float64 {
	count := len(comments)
	if count > cfg.Comment.MaxPerThread {
		count = cfg.Comment.MaxPerThread
	}

	var score float64
	factor := 1.0
	for i := 0; i < count; i++ {
		score += cfg.Comment.Base * factor
		factor *= cfg.Comment.DiminishingReturns
	}
	return score
}

func collectMetrics(in Input) models.UserScoreMetrics {
	var m models.UserScoreMetrics

	m.PullRequests.Total = len(in.PullRequests)
	for _, pr := range in.PullRequests {
		switch {
		case pr.Merged():
			m.PullRequests.Merged++
		case strings.EqualFold(pr.State, "CLOSED"):
			m.PullRequests.Closed++
		default:
			m.PullRequests.Open++
		}
	}

	m.Issues.Total = len(in.Issues)
	for _, issue := range in.Issues {
		if strings.EqualFold(issue.State, "CLOSED") {
			m.Issues.Closed++
		} else {
			m.Issues.Open++
		}
	}

	m.Reviews.Total = len(in.Reviews)
	for _, review := range in.Reviews {
		switch strings.ToUpper(review.State) {
		case "APPROVED":
			m.Reviews.Approved++
		case "CHANGES_REQUESTED":
			m.Reviews.ChangesRequested++
		case "COMMENTED":
			m.Reviews.Commented++
		}
	}

	m.Comments.Total = len(in.Comments)
	for _, comment := range in.Comments {
		if comment.ParentKind == models.CommentParentIssue {
			m.Comments.Issues++
		} else {
			m.Comments.PullRequests++
		}
	}

	m.CodeChanges.Commits = len(in.Commits)
	for _, commit := range in.Commits {
		m.CodeChanges.Additions += commit.Additions
		m.CodeChanges.Deletions += commit.Deletions
		m.CodeChanges.ChangedFiles += commit.ChangedFiles
	}

	return m
}
