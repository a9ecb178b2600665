package services

import (
	"context"
	"fmt"

	"github.com/xR0am/contribpulse/internal/ai"
	"github.com/xR0am/contribpulse/internal/interval"
	"github.com/xR0am/contribpulse/internal/models"
	"github.com/xR0am/contribpulse/internal/pipeline"
	"github.com/xR0am/contribpulse/internal/repositories"
)

// SummaryService orchestrates narrative summary generation. One summary
// per (entity, intervalType, date); already-written summaries are
// skipped unless the run asks for an overwrite, so repeated runs never
// burn model calls on work already done.
type SummaryService struct {
	metrics     *MetricsService
	scores      *ScoreService
	summaryRepo *repositories.SummaryRepository
	generator   ai.Generator
}

func NewSummaryService(
	metrics *MetricsService,
	scores *ScoreService,
	summaryRepo *repositories.SummaryRepository,
	generator ai.Generator,
) *SummaryService {
	return &SummaryService{
		metrics:     metrics,
		scores:      scores,
		summaryRepo: summaryRepo,
		generator:   generator,
	}
}

// SummaryCounts reports how many summaries one run wrote.
type SummaryCounts struct {
	Repo int
	User int
}

// ProcessRepository generates repository and contributor summaries for
// every enabled interval type over the context's range. The enabled
// granularities run as parallel pipeline branches; a failing branch
// never cancels its siblings. One entity failing within a branch is
// logged and skipped; the run keeps going.
func (s *SummaryService) ProcessRepository(ctx context.Context, pc *pipeline.Context) (SummaryCounts, error) {
	var counts SummaryCounts
	if pc.RepoID == "" {
		return counts, fmt.Errorf("summary: repository not set on pipeline context")
	}

	steps := make([]pipeline.Step[struct{}, []SummaryCounts], len(pc.Intervals))
	for i, typ := range pc.Intervals {
		steps[i] = s.granularityStep(typ)
	}

	collect := func(results []SummaryCounts) {
		for _, c := range results {
			counts.Repo += c.Repo
			counts.User += c.User
		}
	}

	switch len(steps) {
	case 0:
		return counts, nil
	case 1:
		results, err := pipeline.Run(ctx, pc, steps[0], struct{}{})
		collect(results)
		return counts, err
	case 2:
		pair, err := pipeline.Run(ctx, pc, pipeline.Parallel2(steps[0], steps[1]), struct{}{})
		collect(pair.First)
		collect(pair.Second)
		return counts, err
	default:
		triple, err := pipeline.Run(ctx, pc, pipeline.Parallel3(steps[0], steps[1], steps[2]), struct{}{})
		collect(triple.First)
		collect(triple.Second)
		collect(triple.Third)
		return counts, err
	}
}

// granularityStep builds the generate-then-summarize chain for one
// interval type.
func (s *SummaryService) granularityStep(typ interval.Type) pipeline.Step[struct{}, []SummaryCounts] {
	generate := pipeline.New("generate-"+string(typ)+"-intervals",
		func(_ context.Context, pc *pipeline.Context, _ struct{}) ([]interval.Interval, error) {
			return interval.GenerateForRange(typ, pc.Range)
		})
	summarize := pipeline.New("summarize-interval", s.summarizeInterval)
	return pipeline.Pipe(generate, pipeline.Map(summarize))
}

func (s *SummaryService) summarizeInterval(ctx context.Context, pc *pipeline.Context, iv interval.Interval) (SummaryCounts, error) {
	var counts SummaryCounts
	date := interval.Name(iv)
	log := pc.StepLogger("summarize-interval").WithField("interval", string(iv.Type)).WithField("date", date)

	metrics, err := s.metrics.MetricsForInterval(pc.RepoID, iv)
	if err != nil {
		return counts, fmt.Errorf("summarize %s %s: %w", iv.Type, date, err)
	}

	wrote, err := s.repoSummary(ctx, pc, iv, metrics)
	if err != nil {
		log.WithError(err).Error("repository summary failed")
	} else if wrote {
		counts.Repo++
	}

	for _, username := range metrics.Contributors {
		if ctx.Err() != nil {
			return counts, ctx.Err()
		}
		wrote, err := s.userSummary(ctx, pc, iv, username)
		if err != nil {
			log.WithError(err).WithField("username", username).Error("contributor summary failed")
			continue
		}
		if wrote {
			counts.User++
		}
	}

	return counts, nil
}

func (s *SummaryService) repoSummary(ctx context.Context, pc *pipeline.Context, iv interval.Interval, metrics *IntervalMetrics) (bool, error) {
	date := interval.Name(iv)
	id := models.SummaryID(pc.RepoID, string(iv.Type), date)

	if !pc.Overwrite {
		exists, err := s.summaryRepo.RepoSummaryExists(id)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}

	text, err := s.generator.GenerateSummary(ctx, ai.SummaryRequest{
		Entity:       pc.RepoID,
		Kind:         "repository",
		IntervalType: string(iv.Type),
		Date:         date,
		HasActivity:  metrics.HasActivity(),
		Metrics:      metrics,
	})
	if err != nil {
		return false, err
	}
	if text == "" {
		return false, nil
	}

	return true, s.summaryRepo.UpsertRepoSummary(models.NewRepoSummary(pc.RepoID, string(iv.Type), date, text))
}

// userSummaryInput is the structured prompt payload for contributor
// summaries: the component scores plus the decoded activity snapshot.
type userSummaryInput struct {
	Score        float64                 `json:"score"`
	PRScore      float64                 `json:"pr_score"`
	IssueScore   float64                 `json:"issue_score"`
	ReviewScore  float64                 `json:"review_score"`
	CommentScore float64                 `json:"comment_score"`
	Activity     models.UserScoreMetrics `json:"activity"`
}

func (s *SummaryService) userSummary(ctx context.Context, pc *pipeline.Context, iv interval.Interval, username string) (bool, error) {
	date := interval.Name(iv)
	id := models.SummaryID(username, string(iv.Type), date)

	if !pc.Overwrite {
		exists, err := s.summaryRepo.UserSummaryExists(id)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}

	score, err := s.scores.ScoreForInterval(username, iv)
	if err != nil {
		return false, err
	}

	text, err := s.generator.GenerateSummary(ctx, ai.SummaryRequest{
		Entity:       username,
		Kind:         "contributor",
		IntervalType: string(iv.Type),
		Date:         date,
		HasActivity:  score.Score > 0,
		Metrics: userSummaryInput{
			Score:        score.Score,
			PRScore:      score.PRScore,
			IssueScore:   score.IssueScore,
			ReviewScore:  score.ReviewScore,
			CommentScore: score.CommentScore,
			Activity:     score.DecodeMetrics(),
		},
	})
	if err != nil {
		return false, err
	}
	if text == "" {
		return false, nil
	}

	return true, s.summaryRepo.UpsertUserSummary(models.NewUserSummary(username, string(iv.Type), date, text))
}
