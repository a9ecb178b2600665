package services

import (
	"sort"
	"strings"

	"github.com/xR0am/contribpulse/internal/interval"
	"github.com/xR0am/contribpulse/internal/models"
	"github.com/xR0am/contribpulse/internal/repositories"
	"github.com/xR0am/contribpulse/internal/scoring"
)

// IntervalMetrics is the aggregate view of one repository's activity in
// one interval, consumed by summaries and exports.
type IntervalMetrics struct {
	RepositoryID string                   `json:"repository_id"`
	IntervalType string                   `json:"interval_type"`
	Date         string                   `json:"date"`
	PullRequests PullRequestActivity      `json:"pull_requests"`
	Issues       IssueActivity            `json:"issues"`
	Reviews      models.ReviewMetrics     `json:"reviews"`
	Comments     models.CommentMetrics    `json:"comments"`
	CodeChanges  models.CodeChangeMetrics `json:"code_changes"`
	Contributors []string                 `json:"contributors"`
	FocusAreas   []AreaCount              `json:"focus_areas"`
	WorkItems    map[string]int           `json:"work_items"`
}

type PullRequestActivity struct {
	New    int `json:"new"`
	Merged int `json:"merged"`
	Open   int `json:"open"`
	Closed int `json:"closed"`
}

type IssueActivity struct {
	New    int `json:"new"`
	Open   int `json:"open"`
	Closed int `json:"closed"`
}

// AreaCount is a code area (top-level path segment) with its touch count
type AreaCount struct {
	Area  string `json:"area"`
	Count int    `json:"count"`
}

// HasActivity reports whether anything at all happened in the interval
func (m *IntervalMetrics) HasActivity() bool {
	return m.PullRequests.New > 0 || m.Issues.New > 0 || m.Reviews.Total > 0 ||
		m.Comments.Total > 0 || m.CodeChanges.Commits > 0
}

// MetricsService is the read-only query layer over the activity store.
type MetricsService struct {
	pullRequestRepo *repositories.PullRequestRepository
	issueRepo       *repositories.IssueRepository
	reviewRepo      *repositories.ReviewRepository
	commentRepo     *repositories.CommentRepository
	commitRepo      *repositories.CommitRepository
}

func NewMetricsService(
	pullRequestRepo *repositories.PullRequestRepository,
	issueRepo *repositories.IssueRepository,
	reviewRepo *repositories.ReviewRepository,
	commentRepo *repositories.CommentRepository,
	commitRepo *repositories.CommitRepository,
) *MetricsService {
	return &MetricsService{
		pullRequestRepo: pullRequestRepo,
		issueRepo:       issueRepo,
		reviewRepo:      reviewRepo,
		commentRepo:     commentRepo,
		commitRepo:      commitRepo,
	}
}

// ActivityWindow is every raw row of one repository within one window.
type ActivityWindow struct {
	PullRequests []*models.PullRequest
	Issues       []*models.Issue
	Reviews      []*models.Review
	Comments     []*models.Comment
	Commits      []*models.Commit
}

// FetchWindow loads all raw activity of a repository within [start, end)
func (s *MetricsService) FetchWindow(repositoryID, start, end string) (*ActivityWindow, error) {
	prs, err := s.pullRequestRepo.GetByRepositoryAndDateRange(repositoryID, start, end)
	if err != nil {
		return nil, err
	}
	issues, err := s.issueRepo.GetByRepositoryAndDateRange(repositoryID, start, end)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.GetByRepositoryAndDateRange(repositoryID, start, end)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.GetByRepositoryAndDateRange(repositoryID, start, end)
	if err != nil {
		return nil, err
	}
	commits, err := s.commitRepo.GetByRepositoryAndDateRange(repositoryID, start, end)
	if err != nil {
		return nil, err
	}

	return &ActivityWindow{
		PullRequests: prs,
		Issues:       issues,
		Reviews:      reviews,
		Comments:     comments,
		Commits:      commits,
	}, nil
}

// ByAuthor slices the window down to one contributor's activity, the
// shape the score calculator takes.
func (w *ActivityWindow) ByAuthor(username string) scoring.Input {
	var in scoring.Input
	for _, pr := range w.PullRequests {
		if pr.Author == username {
			in.PullRequests = append(in.PullRequests, pr)
		}
	}
	for _, issue := range w.Issues {
		if issue.Author == username {
			in.Issues = append(in.Issues, issue)
		}
	}
	for _, review := range w.Reviews {
		if review.Author == username {
			in.Reviews = append(in.Reviews, review)
		}
	}
	for _, comment := range w.Comments {
		if comment.Author == username {
			in.Comments = append(in.Comments, comment)
		}
	}
	for _, commit := range w.Commits {
		if commit.Author == username {
			in.Commits = append(in.Commits, commit)
		}
	}
	return in
}

// Authors returns every distinct contributor in the window, sorted.
func (w *ActivityWindow) Authors() []string {
	seen := make(map[string]bool)
	for _, pr := range w.PullRequests {
		seen[pr.Author] = true
	}
	for _, issue := range w.Issues {
		seen[issue.Author] = true
	}
	for _, review := range w.Reviews {
		seen[review.Author] = true
	}
	for _, comment := range w.Comments {
		seen[comment.Author] = true
	}
	for _, commit := range w.Commits {
		seen[commit.Author] = true
	}

	authors := make([]string, 0, len(seen))
	for author := range seen {
		if author != "" {
			authors = append(authors, author)
		}
	}
	sort.Strings(authors)
	return authors
}

// MetricsForInterval aggregates one repository interval into the
// summary/export view.
func (s *MetricsService) MetricsForInterval(repositoryID string, iv interval.Interval) (*IntervalMetrics, error) {
	r := iv.DateRange()
	window, err := s.FetchWindow(repositoryID, r.Start, r.End)
	if err != nil {
		return nil, err
	}

	m := &IntervalMetrics{
		RepositoryID: repositoryID,
		IntervalType: string(iv.Type),
		Date:         interval.Name(iv),
		Contributors: window.Authors(),
		WorkItems:    make(map[string]int),
	}

	areas := make(map[string]int)

	m.PullRequests.New = len(window.PullRequests)
	for _, pr := range window.PullRequests {
		switch {
		case pr.Merged():
			m.PullRequests.Merged++
		case strings.EqualFold(pr.State, "CLOSED"):
			m.PullRequests.Closed++
		default:
			m.PullRequests.Open++
		}
		m.WorkItems[classifyWorkItem(pr.Title)]++
		for _, path := range pr.FilePaths {
			areas[areaForPath(path)]++
		}
	}

	m.Issues.New = len(window.Issues)
	for _, issue := range window.Issues {
		if strings.EqualFold(issue.State, "CLOSED") {
			m.Issues.Closed++
		} else {
			m.Issues.Open++
		}
	}

	m.Reviews.Total = len(window.Reviews)
	for _, review := range window.Reviews {
		switch strings.ToUpper(review.State) {
		case "APPROVED":
			m.Reviews.Approved++
		case "CHANGES_REQUESTED":
			m.Reviews.ChangesRequested++
		case "COMMENTED":
			m.Reviews.Commented++
		}
	}

	m.Comments.Total = len(window.Comments)
	for _, comment := range window.Comments {
		if comment.ParentKind == models.CommentParentIssue {
			m.Comments.Issues++
		} else {
			m.Comments.PullRequests++
		}
	}

	m.CodeChanges.Commits = len(window.Commits)
	for _, commit := range window.Commits {
		m.CodeChanges.Additions += commit.Additions
		m.CodeChanges.Deletions += commit.Deletions
		m.CodeChanges.ChangedFiles += commit.ChangedFiles
		m.WorkItems[classifyWorkItem(commit.Message)]++
	}

	for area, count := range areas {
		m.FocusAreas = append(m.FocusAreas, AreaCount{Area: area, Count: count})
	}
	sort.Slice(m.FocusAreas, func(i, j int) bool {
		if m.FocusAreas[i].Count != m.FocusAreas[j].Count {
			return m.FocusAreas[i].Count > m.FocusAreas[j].Count
		}
		return m.FocusAreas[i].Area < m.FocusAreas[j].Area
	})

	return m, nil
}

// DateRangeForRepository derives a default processing range from the
// stored activity: earliest to latest PR or commit date.
func (s *MetricsService) DateRangeForRepository(repositoryID string) (interval.Range, bool, error) {
	prMin, prMax, err := s.pullRequestRepo.GetDateRange(repositoryID)
	if err != nil {
		return interval.Range{}, false, err
	}
	commitMin, commitMax, err := s.commitRepo.GetDateRange(repositoryID)
	if err != nil {
		return interval.Range{}, false, err
	}

	min := minNonEmpty(prMin, commitMin)
	max := maxNonEmpty(prMax, commitMax)
	if min == "" || max == "" {
		return interval.Range{}, false, nil
	}

	return interval.Range{Start: min, End: max}, true, nil
}

func minNonEmpty(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" || a < b {
		return a
	}
	return b
}

func maxNonEmpty(a, b string) string {
	if a == "" || (b != "" && b > a) {
		return b
	}
	return a
}

// classifyWorkItem maps a PR title or commit message to a work-item
// type by its conventional prefix.
func classifyWorkItem(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	prefixes := []struct {
		prefix string
		kind   string
	}{
		{"feat", "feature"},
		{"fix", "bugfix"},
		{"docs", "docs"},
		{"refactor", "refactor"},
		{"test", "tests"},
		{"chore", "chore"},
	}
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p.prefix) {
			return p.kind
		}
	}
	return "other"
}

// areaForPath maps a file path to its code area, the top-level
// directory segment.
func areaForPath(path string) string {
	path = strings.TrimPrefix(path, "./")
	if idx := strings.Index(path, "/"); idx > 0 {
		return path[:idx]
	}
	return "root"
}
