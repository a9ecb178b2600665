package cmd

import (
	"fmt"
	"time"

	"github.com/xR0am/contribpulse/internal/ai"
	"github.com/xR0am/contribpulse/internal/interval"
	"github.com/xR0am/contribpulse/internal/models"
	"github.com/xR0am/contribpulse/internal/pipeline"
	"github.com/xR0am/contribpulse/internal/repositories"
	"github.com/xR0am/contribpulse/internal/services"
	"github.com/xR0am/contribpulse/pkg/config"
	"github.com/xR0am/contribpulse/pkg/database"
)

// app wires configuration, storage and services together for one
// command invocation.
type app struct {
	cfg *config.Config

	repositoryRepo  *repositories.RepositoryRepository
	pullRequestRepo *repositories.PullRequestRepository
	issueRepo       *repositories.IssueRepository
	reviewRepo      *repositories.ReviewRepository
	commentRepo     *repositories.CommentRepository
	commitRepo      *repositories.CommitRepository
	scoreRepo       *repositories.UserScoreRepository
	tagRepo         *repositories.TagRepository
	summaryRepo     *repositories.SummaryRepository
	jobRepo         *repositories.JobRepository

	metrics   *services.MetricsService
	github    *services.GitHubService
	scores    *services.ScoreService
	tags      *services.TagService
	summaries *services.SummaryService
	exports   *services.ExportService
	scheduler *services.SchedulerService
}

func newApp() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	if err := database.Init(cfg.Database.Path); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db := database.DB

	a := &app{
		cfg:             cfg,
		repositoryRepo:  repositories.NewRepositoryRepository(db),
		pullRequestRepo: repositories.NewPullRequestRepository(db),
		issueRepo:       repositories.NewIssueRepository(db),
		reviewRepo:      repositories.NewReviewRepository(db),
		commentRepo:     repositories.NewCommentRepository(db),
		commitRepo:      repositories.NewCommitRepository(db),
		scoreRepo:       repositories.NewUserScoreRepository(db),
		tagRepo:         repositories.NewTagRepository(db),
		summaryRepo:     repositories.NewSummaryRepository(db),
		jobRepo:         repositories.NewJobRepository(db),
	}

	a.metrics = services.NewMetricsService(a.pullRequestRepo, a.issueRepo, a.reviewRepo, a.commentRepo, a.commitRepo)
	a.github = services.NewGitHubService(cfg.GitHub.Token,
		a.repositoryRepo, a.pullRequestRepo, a.issueRepo, a.reviewRepo, a.commentRepo, a.commitRepo)
	a.scores = services.NewScoreService(a.metrics, a.scoreRepo)
	a.tags = services.NewTagService(a.pullRequestRepo, a.tagRepo)

	generator := ai.NewOllamaClient(cfg.Ollama.BaseURL, cfg.Ollama.Model, cfg.Ollama.Token)
	a.summaries = services.NewSummaryService(a.metrics, a.scores, a.summaryRepo, generator)
	a.exports = services.NewExportService(a.metrics, a.scoreRepo, a.summaryRepo)
	a.scheduler = services.NewSchedulerService(a.repositoryRepo, a.jobRepo)

	return a, nil
}

func (a *app) close() {
	_ = database.Close()
}

// selectedRepos resolves which repositories a command works on: the
// --repository flag if set, otherwise everything from the config file.
func (a *app) selectedRepos() ([]*models.Repository, error) {
	if flagRepository != "" {
		branch := "main"
		for _, tracked := range a.cfg.Repositories {
			if tracked.ID == flagRepository {
				branch = tracked.DefaultBranch
			}
		}
		repo := models.NewRepository(flagRepository, branch)
		if err := repo.Validate(); err != nil {
			return nil, err
		}
		return []*models.Repository{repo}, nil
	}

	if len(a.cfg.Repositories) == 0 {
		return nil, fmt.Errorf("no repositories configured; use --repository or add them to the config file")
	}

	repos := make([]*models.Repository, 0, len(a.cfg.Repositories))
	for _, tracked := range a.cfg.Repositories {
		repo := models.NewRepository(tracked.ID, tracked.DefaultBranch)
		if err := repo.Validate(); err != nil {
			return nil, fmt.Errorf("configured repository %q: %w", tracked.ID, err)
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

// rangeFor resolves the processing date range for one repository.
// Explicit --after/--before flags win; otherwise the range spans the
// repository's stored activity, bounded by --days as a last resort.
func (a *app) rangeFor(repoID string) (interval.Range, error) {
	today := time.Now().UTC().Format("2006-01-02")

	if flagAfter != "" || flagBefore != "" {
		start, end := flagAfter, flagBefore
		if end == "" {
			end = today
		}
		if start == "" {
			start = time.Now().UTC().AddDate(0, 0, -flagDays).Format("2006-01-02")
		}
		for _, value := range []string{start, end} {
			if _, err := interval.Parse(value, interval.Day); err != nil {
				return interval.Range{}, err
			}
		}
		return interval.Range{Start: start, End: end}, nil
	}

	derived, ok, err := a.metrics.DateRangeForRepository(repoID)
	if err != nil {
		return interval.Range{}, err
	}
	if ok {
		return derived, nil
	}

	return interval.Range{
		Start: time.Now().UTC().AddDate(0, 0, -flagDays).Format("2006-01-02"),
		End:   today,
	}, nil
}

// pipelineContext builds the run context for one repository, merging
// config defaults with command-line overrides.
func (a *app) pipelineContext(name, repoID string) (*pipeline.Context, error) {
	rng, err := a.rangeFor(repoID)
	if err != nil {
		return nil, err
	}

	pc := pipeline.NewContext(name).WithRepo(repoID)
	pc.Range = rng
	pc.Overwrite = flagForce
	pc.Intervals = interval.ParseTypes(a.cfg.Pipeline.Intervals)
	pc.Scoring = &a.cfg.Scoring
	if len(a.cfg.Tags) > 0 {
		pc.Tags = a.cfg.Tags
	}

	pc.OutputDir = a.cfg.Pipeline.OutputDir
	if flagOutput != "" {
		pc.OutputDir = flagOutput
	}

	pc.Workers = a.cfg.Pipeline.Workers
	if flagWorkers > 0 {
		pc.Workers = flagWorkers
	}

	return pc, nil
}
