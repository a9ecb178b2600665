package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/xR0am/contribpulse/internal/interval"
	"github.com/xR0am/contribpulse/internal/models"
	"github.com/xR0am/contribpulse/internal/pipeline"
	"github.com/xR0am/contribpulse/internal/repositories"
	"github.com/xR0am/contribpulse/internal/services"
)

// ingestLookback bounds the first ingestion of a repository that has
// never been ingested before.
const ingestLookback = 90 * 24 * time.Hour

// Processor maps job types to the pipelines that execute them.
type Processor struct {
	github         *services.GitHubService
	metrics        *services.MetricsService
	scores         *services.ScoreService
	tags           *services.TagService
	summaries      *services.SummaryService
	exports        *services.ExportService
	repositoryRepo *repositories.RepositoryRepository

	outputDir string
	workers   int
	intervals []interval.Type
	scoring   *models.ScoringConfig
	tagRules  []models.TagConfig
}

func NewProcessor(
	github *services.GitHubService,
	metrics *services.MetricsService,
	scores *services.ScoreService,
	tags *services.TagService,
	summaries *services.SummaryService,
	exports *services.ExportService,
	repositoryRepo *repositories.RepositoryRepository,
	outputDir string,
	workers int,
	intervals []interval.Type,
	scoring *models.ScoringConfig,
	tagRules []models.TagConfig,
) *Processor {
	return &Processor{
		github:         github,
		metrics:        metrics,
		scores:         scores,
		tags:           tags,
		summaries:      summaries,
		exports:        exports,
		repositoryRepo: repositoryRepo,
		outputDir:      outputDir,
		workers:        workers,
		intervals:      intervals,
		scoring:        scoring,
		tagRules:       tagRules,
	}
}

// Handler returns the job handler for one job type.
func (p *Processor) Handler(jobType models.JobType) JobHandler {
	switch jobType {
	case models.JobTypeIngest:
		return p.handleIngest
	case models.JobTypeScore:
		return p.handleScore
	case models.JobTypeTag:
		return p.handleTag
	case models.JobTypeSummary:
		return p.handleSummary
	case models.JobTypeExport:
		return p.handleExport
	default:
		return func(ctx context.Context, job *models.Job) error {
			return fmt.Errorf("no handler for job type %q", jobType)
		}
	}
}

func (p *Processor) handleIngest(ctx context.Context, job *models.Job) error {
	repoID, err := jobRepository(job)
	if err != nil {
		return err
	}

	repo, err := p.repositoryRepo.GetByID(repoID)
	if err != nil {
		return err
	}
	if repo == nil {
		return fmt.Errorf("repository %s is not registered", repoID)
	}

	since := time.Now().Add(-ingestLookback)
	if repo.LastIngestedAt != nil {
		since = *repo.LastIngestedAt
	}

	_, err = p.github.IngestRepository(ctx, repo, since)
	return err
}

func (p *Processor) handleScore(ctx context.Context, job *models.Job) error {
	pc, err := p.contextFor(job, "score")
	if err != nil || pc == nil {
		return err
	}
	_, err = p.scores.ProcessRepository(ctx, pc)
	return err
}

func (p *Processor) handleTag(ctx context.Context, job *models.Job) error {
	pc, err := p.contextFor(job, "tag")
	if err != nil || pc == nil {
		return err
	}
	_, err = p.tags.ProcessRepository(ctx, pc)
	return err
}

func (p *Processor) handleSummary(ctx context.Context, job *models.Job) error {
	pc, err := p.contextFor(job, "summary")
	if err != nil || pc == nil {
		return err
	}
	_, err = p.summaries.ProcessRepository(ctx, pc)
	return err
}

func (p *Processor) handleExport(ctx context.Context, job *models.Job) error {
	pc, err := p.contextFor(job, "export")
	if err != nil || pc == nil {
		return err
	}
	_, err = p.exports.ProcessRepository(ctx, pc)
	return err
}

// contextFor builds the pipeline context for a processing job, scoped
// to the job's repository and its full stored activity range. Returns
// nil without error when the repository has no activity yet.
func (p *Processor) contextFor(job *models.Job, name string) (*pipeline.Context, error) {
	repoID, err := jobRepository(job)
	if err != nil {
		return nil, err
	}

	rng, ok, err := p.metrics.DateRangeForRepository(repoID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	pc := pipeline.NewContext(name).WithRepo(repoID)
	pc.Range = rng
	pc.OutputDir = p.outputDir
	pc.Workers = p.workers
	pc.Intervals = p.intervals
	if p.scoring != nil {
		pc.Scoring = p.scoring
	}
	if len(p.tagRules) > 0 {
		pc.Tags = p.tagRules
	}
	return pc, nil
}

func jobRepository(job *models.Job) (string, error) {
	if job.RepositoryID == nil || *job.RepositoryID == "" {
		return "", fmt.Errorf("job %s has no repository", job.ID)
	}
	return *job.RepositoryID, nil
}
