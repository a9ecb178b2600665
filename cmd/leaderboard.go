package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var flagLimit int

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print the contributor leaderboard",
	Long: `Print contributors ranked by total score over the selected range,
aggregated across all processed repositories.

Examples:
  contribpulse leaderboard --after 2024-01-01 --before 2024-06-30
  contribpulse leaderboard --days 7 --limit 10`,
	Run: func(_ *cobra.Command, _ []string) {
		a, err := newApp()
		if err != nil {
			fatal("startup failed", err)
		}
		defer a.close()

		start, end := leaderboardRange()
		entries, err := a.scoreRepo.GetLeaderboard(start, end, flagLimit)
		if err != nil {
			fatal("failed to load leaderboard", err)
		}
		if len(entries) == 0 {
			info("no scores recorded between %s and %s", start, end)
			return
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header([]string{"Rank", "Username", "Score", "Active Days"})

		var data [][]string
		for i, entry := range entries {
			data = append(data, []string{
				fmt.Sprintf("%d", i+1),
				entry.Username,
				fmt.Sprintf("%.2f", entry.Score),
				fmt.Sprintf("%d", entry.Days),
			})
		}

		if err := table.Bulk(data); err != nil {
			fatal("failed to render leaderboard", err)
		}
		if err := table.Render(); err != nil {
			fatal("failed to render leaderboard", err)
		}
	},
}

func init() {
	leaderboardCmd.Flags().IntVar(&flagLimit, "limit", 25, "maximum number of contributors to show")
}

// leaderboardRange resolves the [start, end) bounds from the date
// flags, treating --before as inclusive.
func leaderboardRange() (string, string) {
	now := time.Now().UTC()

	start := flagAfter
	if start == "" {
		start = now.AddDate(0, 0, -flagDays).Format("2006-01-02")
	}

	end := flagBefore
	if end == "" {
		end = now.Format("2006-01-02")
	}
	return start, nextDay(end)
}

// nextDay bumps an inclusive end date to its exclusive form.
func nextDay(date string) string {
	t, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, 1).Format("2006-01-02")
}
