package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Compute contribution scores and expertise tags",
	Long: `Walk the day intervals of the selected range, score every active
contributor and recompute expertise tags. Days already scored are
skipped unless --force is given.

Examples:
  contribpulse process --repository golang/go --after 2024-01-01 --before 2024-06-30
  contribpulse process --force`,
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

		ctx := context.Background()
		for _, repo := range repos {
			pc, err := a.pipelineContext("process", repo.ID)
			if err != nil {
				fatal("invalid date range", err)
			}
			info("processing %s from %s to %s", repo.ID, pc.Range.Start, pc.Range.End)

			scores, err := a.scores.ProcessRepository(ctx, pc)
			if err != nil {
				fatal("scoring failed", err)
			}
			tags, err := a.tags.ProcessRepository(ctx, pc)
			if err != nil {
				fatal("tagging failed", err)
			}

			success("%s: %d score rows, %d tag rows", repo.ID, scores, tags)
		}
	},
}
