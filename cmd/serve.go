package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xR0am/contribpulse/internal/api"
	"github.com/xR0am/contribpulse/internal/interval"
	"github.com/xR0am/contribpulse/internal/workers"
	"github.com/xR0am/contribpulse/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server, scheduler and background workers",
	Long: `Run the long-lived mode: a read-only JSON API over the computed
analytics, a scheduler that enqueues the processing chain for every
tracked repository once an hour, and the worker pool that drains the
job queue.

Example:
  contribpulse serve`,
	Run: func(_ *cobra.Command, _ []string) {
		a, err := newApp()
		if err != nil {
			fatal("startup failed", err)
		}
		defer a.close()

		// Register configured repositories so the scheduler picks
		// them up.
		repos, err := a.selectedRepos()
		if err != nil {
			fatal("invalid repository selection", err)
		}
		for _, repo := range repos {
			if err := a.repositoryRepo.Upsert(repo); err != nil {
				fatal("failed to register repository", err)
			}
		}

		proc := workers.NewProcessor(
			a.github, a.metrics, a.scores, a.tags, a.summaries, a.exports,
			a.repositoryRepo,
			a.cfg.Pipeline.OutputDir,
			a.cfg.Pipeline.Workers,
			interval.ParseTypes(a.cfg.Pipeline.Intervals),
			&a.cfg.Scoring,
			a.cfg.Tags,
		)

		manager := workers.NewWorkerManager(a.jobRepo, proc)
		if err := manager.StartAll(); err != nil {
			fatal("failed to start workers", err)
		}

		schedulerCtx, stopScheduler := context.WithCancel(context.Background())
		a.scheduler.Start(schedulerCtx)

		server := api.NewServer(
			a.cfg.Server.Mode,
			a.repositoryRepo, a.scoreRepo, a.tagRepo, a.summaryRepo, a.jobRepo,
			a.scheduler,
		)

		go func() {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig

			logger.WithComponent("server").Info("shutting down")
			stopScheduler()
			_ = manager.StopAll()
			os.Exit(0)
		}()

		info("listening on :%s", a.cfg.Server.Port)
		if err := server.Run(":" + a.cfg.Server.Port); err != nil {
			stopScheduler()
			_ = manager.StopAll()
			fatal("server stopped", err)
		}
	},
}
