package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Generate narrative summaries for repositories and contributors",
	Long: `Generate one narrative summary per repository and per active
contributor for every enabled interval in the selected range.
Summaries already written are skipped unless --force is given, so
repeated runs never repeat model calls.

Examples:
  contribpulse summarize --repository golang/go --after 2024-01-01`,
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
			pc, err := a.pipelineContext("summarize", repo.ID)
			if err != nil {
				fatal("invalid date range", err)
			}
			info("summarizing %s from %s to %s", repo.ID, pc.Range.Start, pc.Range.End)

			counts, err := a.summaries.ProcessRepository(ctx, pc)
			if err != nil {
				fatal("summary generation failed", err)
			}
			success("%s: %d repository summaries, %d contributor summaries", repo.ID, counts.Repo, counts.User)
		}
	},
}
