package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/xR0am/contribpulse/internal/interval"
	"github.com/xR0am/contribpulse/internal/models"
	"github.com/xR0am/contribpulse/internal/pipeline"
	"github.com/xR0am/contribpulse/internal/repositories"
)

// ExportService writes interval reports to disk. Every interval with
// activity produces a JSON file (the raw metrics) and a Markdown file
// (a human-readable report), named by the interval's canonical label.
type ExportService struct {
	metrics     *MetricsService
	scoreRepo   *repositories.UserScoreRepository
	summaryRepo *repositories.SummaryRepository
}

func NewExportService(
	metrics *MetricsService,
	scoreRepo *repositories.UserScoreRepository,
	summaryRepo *repositories.SummaryRepository,
) *ExportService {
	return &ExportService{metrics: metrics, scoreRepo: scoreRepo, summaryRepo: summaryRepo}
}

// ProcessRepository exports every enabled interval type over the
// context's range, each granularity running as a parallel pipeline
// branch. Intervals without activity produce no files. Returns the
// number of files written.
func (s *ExportService) ProcessRepository(ctx context.Context, pc *pipeline.Context) (int, error) {
	if pc.RepoID == "" {
		return 0, fmt.Errorf("export: repository not set on pipeline context")
	}
	if pc.OutputDir == "" {
		return 0, fmt.Errorf("export: output directory not set")
	}

	steps := make([]pipeline.Step[struct{}, []int], len(pc.Intervals))
	for i, typ := range pc.Intervals {
		steps[i] = s.granularityStep(typ)
	}

	total := 0
	collect := func(counts []int) {
		for _, n := range counts {
			total += n
		}
	}

	switch len(steps) {
	case 0:
		return 0, nil
	case 1:
		counts, err := pipeline.Run(ctx, pc, steps[0], struct{}{})
		collect(counts)
		return total, err
	case 2:
		pair, err := pipeline.Run(ctx, pc, pipeline.Parallel2(steps[0], steps[1]), struct{}{})
		collect(pair.First)
		collect(pair.Second)
		return total, err
	default:
		triple, err := pipeline.Run(ctx, pc, pipeline.Parallel3(steps[0], steps[1], steps[2]), struct{}{})
		collect(triple.First)
		collect(triple.Second)
		collect(triple.Third)
		return total, err
	}
}

// granularityStep builds the generate-then-export chain for one
// interval type.
func (s *ExportService) granularityStep(typ interval.Type) pipeline.Step[struct{}, []int] {
	generate := pipeline.New("generate-"+string(typ)+"-intervals",
		func(_ context.Context, pc *pipeline.Context, _ struct{}) ([]interval.Interval, error) {
			return interval.GenerateForRange(typ, pc.Range)
		})
	export := pipeline.New("export-interval", s.exportInterval)
	return pipeline.Pipe(generate, pipeline.Map(export))
}

func (s *ExportService) exportInterval(ctx context.Context, pc *pipeline.Context, iv interval.Interval) (int, error) {
	date := interval.Name(iv)

	metrics, err := s.metrics.MetricsForInterval(pc.RepoID, iv)
	if err != nil {
		return 0, fmt.Errorf("export %s %s: %w", iv.Type, date, err)
	}
	if !metrics.HasActivity() {
		return 0, nil
	}

	dir := filepath.Join(pc.OutputDir, repoSlug(pc.RepoID), string(iv.Type))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("export %s %s: %w", iv.Type, date, err)
	}

	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("export %s %s: encode metrics: %w", iv.Type, date, err)
	}
	if err := os.WriteFile(filepath.Join(dir, date+".json"), data, 0o644); err != nil {
		return 0, fmt.Errorf("export %s %s: %w", iv.Type, date, err)
	}

	summary, err := s.summaryRepo.GetRepoSummary(models.SummaryID(pc.RepoID, string(iv.Type), date))
	if err != nil {
		return 0, fmt.Errorf("export %s %s: %w", iv.Type, date, err)
	}

	report := renderMarkdown(metrics, summary)
	if err := os.WriteFile(filepath.Join(dir, date+".md"), []byte(report), 0o644); err != nil {
		return 0, fmt.Errorf("export %s %s: %w", iv.Type, date, err)
	}

	pc.StepLogger("export-interval").WithField("interval", string(iv.Type)).
		WithField("date", date).Debug("interval exported")

	return 2, nil
}

// ExportLeaderboardXLSX writes the aggregated contributor leaderboard
// for [start, end) as a spreadsheet.
func (s *ExportService) ExportLeaderboardXLSX(start, end, path string, limit int) error {
	entries, err := s.scoreRepo.GetLeaderboard(start, end, limit)
	if err != nil {
		return fmt.Errorf("leaderboard export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Leaderboard"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("leaderboard export: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Rank", "Username", "Score", "Active Days"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, entry := range entries {
		values := []interface{}{row + 1, entry.Username, entry.Score, entry.Days}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("leaderboard export: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("leaderboard export: %w", err)
	}

	return nil
}

func repoSlug(repoID string) string {
	return strings.ReplaceAll(repoID, "/", "_")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func renderMarkdown(m *IntervalMetrics, summary string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s activity for %s (%s)\n\n", capitalize(m.IntervalType), m.RepositoryID, m.Date)

	if summary != "" {
		b.WriteString(summary)
		b.WriteString("\n\n")
	}

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- Pull requests: %d new, %d merged, %d open, %d closed\n",
		m.PullRequests.New, m.PullRequests.Merged, m.PullRequests.Open, m.PullRequests.Closed)
	fmt.Fprintf(&b, "- Issues: %d new, %d open, %d closed\n",
		m.Issues.New, m.Issues.Open, m.Issues.Closed)
	fmt.Fprintf(&b, "- Reviews: %d (%d approved, %d changes requested)\n",
		m.Reviews.Total, m.Reviews.Approved, m.Reviews.ChangesRequested)
	fmt.Fprintf(&b, "- Comments: %d\n", m.Comments.Total)
	fmt.Fprintf(&b, "- Commits: %d (+%d/-%d across %d files)\n",
		m.CodeChanges.Commits, m.CodeChanges.Additions, m.CodeChanges.Deletions, m.CodeChanges.ChangedFiles)
	fmt.Fprintf(&b, "- Active contributors: %d\n\n", len(m.Contributors))

	if len(m.FocusAreas) > 0 {
		b.WriteString("## Focus areas\n\n")
		b.WriteString("| Area | Files touched |\n|------|---------------|\n")
		for _, area := range m.FocusAreas {
			fmt.Fprintf(&b, "| %s | %d |\n", area.Area, area.Count)
		}
		b.WriteString("\n")
	}

	if len(m.WorkItems) > 0 {
		b.WriteString("## Work items\n\n")
		for _, kind := range []string{"feature", "bugfix", "refactor", "docs", "tests", "chore", "other"} {
			if count := m.WorkItems[kind]; count > 0 {
				fmt.Fprintf(&b, "- %s: %d\n", kind, count)
			}
		}
		b.WriteString("\n")
	}

	if len(m.Contributors) > 0 {
		b.WriteString("## Contributors\n\n")
		for _, username := range m.Contributors {
			fmt.Fprintf(&b, "- %s\n", username)
		}
	}

	return b.String()
}
