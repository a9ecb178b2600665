// Package cmd holds the contribpulse command-line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xR0am/contribpulse/pkg/logger"
)

var (
	flagConfig     string
	flagRepository string
	flagAfter      string
	flagBefore     string
	flagDays       int
	flagForce      bool
	flagWorkers    int
	flagOutput     string
)

var (
	errColor     = color.New(color.FgRed, color.Bold)
	successColor = color.New(color.FgGreen)
)

var rootCmd = &cobra.Command{
	Use:   "contribpulse",
	Short: "GitHub repository activity analytics",
	Long: `Contribpulse ingests GitHub repository activity and turns it into
contribution scores, expertise tags, narrative summaries and interval
reports. Daily scores are computed once per contributor per day;
weekly and monthly figures are sums over those daily rows.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// Execute runs the CLI. Called once from main.
func Execute() {
	logger.Init()

	if err := rootCmd.Execute(); err != nil {
		fatal("command failed", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default .contribpulse.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagRepository, "repository", "r", "", "limit to one repository (owner/name)")
	rootCmd.PersistentFlags().StringVar(&flagAfter, "after", "", "start date, inclusive (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&flagBefore, "before", "", "end date, inclusive (YYYY-MM-DD)")
	rootCmd.PersistentFlags().IntVar(&flagDays, "days", 30, "fallback window size when no dates are given")
	rootCmd.PersistentFlags().BoolVarP(&flagForce, "force", "f", false, "recompute results that already exist")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "override pipeline concurrency")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "override export output directory")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(serveCmd)
}

func fatal(msg string, err error) {
	if err != nil {
		errColor.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	} else {
		errColor.Fprintf(os.Stderr, "error: %s\n", msg)
	}
	os.Exit(1)
}

func success(format string, args ...interface{}) {
	successColor.Printf(format+"\n", args...)
}

func info(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}
