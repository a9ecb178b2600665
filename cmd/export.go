package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var flagXLSX string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write interval reports to disk",
	Long: `Write one JSON metrics file and one Markdown report per interval with
activity, organized by repository and interval type under the output
directory. Optionally also write the aggregated leaderboard as a
spreadsheet.

Examples:
  contribpulse export --repository golang/go --output ./data
  contribpulse export --xlsx leaderboard.xlsx`,
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
		var lastRange *struct{ start, end string }
		for _, repo := range repos {
			pc, err := a.pipelineContext("export", repo.ID)
			if err != nil {
				fatal("invalid date range", err)
			}
			info("exporting %s from %s to %s", repo.ID, pc.Range.Start, pc.Range.End)

			files, err := a.exports.ProcessRepository(ctx, pc)
			if err != nil {
				fatal("export failed", err)
			}
			success("%s: %d files written to %s", repo.ID, files, pc.OutputDir)
			lastRange = &struct{ start, end string }{pc.Range.Start, pc.Range.End}
		}

		if flagXLSX != "" && lastRange != nil {
			if err := a.exports.ExportLeaderboardXLSX(lastRange.start, nextDay(lastRange.end), flagXLSX, 100); err != nil {
				fatal("leaderboard export failed", err)
			}
			success("leaderboard written to %s", flagXLSX)
		}
	},
}

func init() {
	exportCmd.Flags().StringVar(&flagXLSX, "xlsx", "", "also write the leaderboard to this spreadsheet file")
}
