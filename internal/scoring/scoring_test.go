package scoring

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xR0am/contribpulse/internal/models"
)

func strPtr(s string) *string { return &s }

func pr(day string, merged bool, additions, deletions, changedFiles int) *models.PullRequest {
	p := &models.PullRequest{
		State:           "OPEN",
		Additions:       additions,
		Deletions:       deletions,
		ChangedFiles:    changedFiles,
		GithubCreatedAt: day + "T10:00:00Z",
	}
	if merged {
		p.State = "MERGED"
		p.MergedAt = strPtr(day + "T12:00:00Z")
	}
	return p
}

func TestPullRequestScore(t *testing.T) {
	cfg := models.NewScoringConfig()

	t.Run("Base points for a bare PR", func(t *testing.T) {
		score := PullRequestScore([]*models.PullRequest{pr("2024-07-15", false, 0, 0, 0)}, cfg)
		assert.InDelta(t, cfg.PullRequest.Base, score, 1e-9)
	})

	t.Run("Merged bonus", func(t *testing.T) {
		open := PullRequestScore([]*models.PullRequest{pr("2024-07-15", false, 0, 0, 0)}, cfg)
		merged := PullRequestScore([]*models.PullRequest{pr("2024-07-15", true, 0, 0, 0)}, cfg)
		assert.InDelta(t, cfg.PullRequest.MergedBonus, merged-open, 1e-9)
	})

	t.Run("Description credit is capped at 10", func(t *testing.T) {
		short := pr("2024-07-15", false, 0, 0, 0)
		short.Body = "fixes the thing"
		long := pr("2024-07-15", false, 0, 0, 0)
		for i := 0; i < 5000; i++ {
			long.Body += "x"
		}

		base := PullRequestScore([]*models.PullRequest{pr("2024-07-15", false, 0, 0, 0)}, cfg)
		withShort := PullRequestScore([]*models.PullRequest{short}, cfg)
		withLong := PullRequestScore([]*models.PullRequest{long}, cfg)

		assert.InDelta(t, float64(len(short.Body))*cfg.PullRequest.DescriptionMultiplier, withShort-base, 1e-9)
		assert.InDelta(t, 10, withLong-base, 1e-9)
	})

	t.Run("Complexity uses capped files and log-capped lines", func(t *testing.T) {
		p := pr("2024-07-15", false, 5000, 3000, 40)
		expected := cfg.PullRequest.Base +
			10*math.Log(1001)*cfg.PullRequest.ComplexityMultiplier -
			cfg.CodeChange.LargePenalty
		score := PullRequestScore([]*models.PullRequest{p}, cfg)
		assert.InDelta(t, expected, score, 1e-9)
	})

	t.Run("Optimal size bonus for 100-500 line diffs", func(t *testing.T) {
		inWindow := PullRequestScore([]*models.PullRequest{pr("2024-07-15", false, 200, 100, 0)}, cfg)
		below := PullRequestScore([]*models.PullRequest{pr("2024-07-15", false, 30, 20, 0)}, cfg)
		// Files are zero in both, so complexity is zero and the delta is the bonus alone.
		assert.InDelta(t, cfg.PullRequest.OptimalSizeBonus, inWindow-below, 1e-9)
	})

	t.Run("Daily cap: only the first 20 same-day PRs count", func(t *testing.T) {
		var prs []*models.PullRequest
		for i := 0; i < 25; i++ {
			prs = append(prs, pr("2024-07-15", false, 0, 0, 0))
		}
		score := PullRequestScore(prs, cfg)
		assert.InDelta(t, 20*cfg.PullRequest.Base, score, 1e-9)
	})

	t.Run("Cap is per calendar day", func(t *testing.T) {
		var prs []*models.PullRequest
		for i := 0; i < 25; i++ {
			prs = append(prs, pr("2024-07-15", false, 0, 0, 0))
		}
		prs = append(prs, pr("2024-07-16", false, 0, 0, 0))
		score := PullRequestScore(prs, cfg)
		assert.InDelta(t, 21*cfg.PullRequest.Base, score, 1e-9)
	})

	t.Run("Monotonicity: one more PR under the cap never lowers the score", func(t *testing.T) {
		var prs []*models.PullRequest
		for i := 0; i < 19; i++ {
			prs = append(prs, pr("2024-07-15", i%2 == 0, i*50, i*20, i))
		}
		before := PullRequestScore(prs, cfg)
		after := PullRequestScore(append(prs, pr("2024-07-15", false, 2000, 1500, 30)), cfg)
		assert.GreaterOrEqual(t, after, before)
	})
}

func TestIssueScore(t *testing.T) {
	cfg := models.NewScoringConfig()

	issues := []*models.Issue{
		{State: "OPEN", CommentCount: 3},
		{State: "CLOSED", CommentCount: 4},
		{State: "closed", CommentCount: 20},
	}

	// 3 issues, 2 closed, 27 comments capped at 10.
	expected := 3*cfg.Issue.Base + 2*cfg.Issue.ClosedBonus + 10*cfg.Issue.PerComment
	assert.InDelta(t, expected, IssueScore(issues, cfg), 1e-9)
}

func TestReviewScore(t *testing.T) {
	cfg := models.NewScoringConfig()

	reviews := []*models.Review{
		{State: "APPROVED"},
		{State: "APPROVED"},
		{State: "CHANGES_REQUESTED"},
		{State: "COMMENTED"},
		{State: "DISMISSED"}, // unknown states score nothing
	}

	expected := 2*(cfg.Review.Base+cfg.Review.ApprovedBonus) +
		(cfg.Review.Base + cfg.Review.ChangesRequestedBonus) +
		(cfg.Review.Base + cfg.Review.CommentedBonus)
	assert.InDelta(t, expected, ReviewScore(reviews, cfg), 1e-9)
}

func TestCommentScore(t *testing.T) {
	cfg := models.NewScoringConfig()

	t.Run("Geometric decay", func(t *testing.T) {
		comments := make([]*models.Comment, 3)
		for i := range comments {
			comments[i] = &models.Comment{}
		}
		expected := cfg.Comment.Base * (1 + 0.7 + 0.49)
		assert.InDelta(t, expected, CommentScore(comments, cfg), 1e-9)
	})

	t.Run("Capped at MaxPerThread", func(t *testing.T) {
		atCap := make([]*models.Comment, cfg.Comment.MaxPerThread)
		overCap := make([]*models.Comment, cfg.Comment.MaxPerThread+15)
		for i := range atCap {
			atCap[i] = &models.Comment{}
		}
		for i := range overCap {
			overCap[i] = &models.Comment{}
		}
		assert.InDelta(t, CommentScore(atCap, cfg), CommentScore(overCap, cfg), 1e-9)
	})
}

func TestCalculate(t *testing.T) {
	cfg := models.NewScoringConfig()

	in := Input{
		PullRequests: []*models.PullRequest{
			pr("2024-07-15", true, 200, 100, 4),
			pr("2024-07-15", false, 10, 5, 1),
		},
		Issues:   []*models.Issue{{State: "CLOSED", CommentCount: 2}},
		Reviews:  []*models.Review{{State: "APPROVED"}},
		Comments: []*models.Comment{{ParentKind: models.CommentParentIssue}, {ParentKind: models.CommentParentPullRequest}},
		Commits:  []*models.Commit{{Additions: 120, Deletions: 30, ChangedFiles: 5}},
	}

	res := Calculate(in, cfg)

	t.Run("Total is the sum of the components", func(t *testing.T) {
		assert.InDelta(t, res.PRScore+res.IssueScore+res.ReviewScore+res.CommentScore, res.Total, 1e-9)
	})

	t.Run("Metrics reflect raw counts", func(t *testing.T) {
		assert.Equal(t, 2, res.Metrics.PullRequests.Total)
		assert.Equal(t, 1, res.Metrics.PullRequests.Merged)
		assert.Equal(t, 1, res.Metrics.PullRequests.Open)
		assert.Equal(t, 1, res.Metrics.Issues.Closed)
		assert.Equal(t, 1, res.Metrics.Reviews.Approved)
		assert.Equal(t, 1, res.Metrics.Comments.Issues)
		assert.Equal(t, 1, res.Metrics.Comments.PullRequests)
		assert.Equal(t, 120, res.Metrics.CodeChanges.Additions)
		assert.Equal(t, 1, res.Metrics.CodeChanges.Commits)
	})

	t.Run("Determinism", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			again := Calculate(in, cfg)
			assert.Equal(t, fmt.Sprintf("%.12f", res.Total), fmt.Sprintf("%.12f", again.Total))
			assert.Equal(t, res.Metrics, again.Metrics)
		}
	})
}
