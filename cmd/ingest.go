package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch repository activity from GitHub into the local store",
	Long: `Fetch pull requests, issues, reviews, comments and commits for the
selected repositories. Ingestion is idempotent; re-running a window
updates rows in place instead of duplicating them.

Examples:
  contribpulse ingest --repository golang/go --after 2024-01-01
  contribpulse ingest --days 90`,
	Run: func(_ *cobra.Command, _ []string) {
		a, err := newApp()
		if err != nil {
			fatal("startup failed", err)
		}
		defer a.close()

		repos, err := a.selectedRepos()
		if err != nil {
			fatal("invalid repository selection", err)
		}

		since := time.Now().UTC().AddDate(0, 0, -flagDays)
		if flagAfter != "" {
			parsed, err := time.Parse("2006-01-02", flagAfter)
			if err != nil {
				fatal("invalid --after date", err)
			}
			since = parsed
		}

		ctx := context.Background()
		for _, repo := range repos {
			info("ingesting %s since %s", repo.ID, since.Format("2006-01-02"))
			stats, err := a.github.IngestRepository(ctx, repo, since)
			if err != nil {
				fatal("ingestion failed", err)
			}
			success("%s: %d PRs, %d issues, %d reviews, %d comments, %d commits",
				repo.ID, stats.PullRequests, stats.Issues, stats.Reviews, stats.Comments, stats.Commits)
		}
	},
}
