package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xR0am/contribpulse/internal/interval"
	"github.com/xR0am/contribpulse/internal/models"
	"github.com/xR0am/contribpulse/internal/pipeline"
	"github.com/xR0am/contribpulse/internal/repositories"
	"github.com/xR0am/contribpulse/internal/scoring"
)

// ScoreService orchestrates contribution scoring: it walks the day
// intervals of a range and persists one score row per active
// contributor per day. Weekly and monthly figures are never computed
// here; they are sums over these daily rows.
type ScoreService struct {
	metrics   *MetricsService
	scoreRepo *repositories.UserScoreRepository
}

func NewScoreService(metrics *MetricsService, scoreRepo *repositories.UserScoreRepository) *ScoreService {
	return &ScoreService{metrics: metrics, scoreRepo: scoreRepo}
}

// ProcessRepository scores every day of the context's range for the
// context's repository. Returns the number of score rows written.
// Existing rows are skipped unless the context asks for an overwrite.
func (s *ScoreService) ProcessRepository(ctx context.Context, pc *pipeline.Context) (int, error) {
	if pc.RepoID == "" {
		return 0, fmt.Errorf("score: repository not set on pipeline context")
	}

	generateDays := pipeline.New("generate-days",
		func(ctx context.Context, pc *pipeline.Context, _ struct{}) ([]interval.Interval, error) {
			return interval.GenerateForRange(interval.Day, pc.Range)
		})

	scoreDay := pipeline.New("score-day", s.scoreDay)

	written, err := pipeline.Run(ctx, pc, pipeline.Pipe(generateDays, pipeline.Map(scoreDay)), struct{}{})
	if err != nil {
		return 0, err
	}

	total := 0
	for _, n := range written {
		total += n
	}
	return total, nil
}

// scoreDay computes and persists the scores of every contributor active
// on one day. A single contributor failing is logged and skipped, the
// rest of the day still gets scored.
func (s *ScoreService) scoreDay(ctx context.Context, pc *pipeline.Context, iv interval.Interval) (int, error) {
	date := interval.Name(iv)
	log := pc.StepLogger("score-day").WithField("date", date)

	r := iv.DateRange()
	window, err := s.metrics.FetchWindow(pc.RepoID, r.Start, r.End)
	if err != nil {
		return 0, fmt.Errorf("score %s: %w", date, err)
	}

	written := 0
	for _, username := range window.Authors() {
		if ctx.Err() != nil {
			return written, ctx.Err()
		}

		if !pc.Overwrite {
			existing, err := s.scoreRepo.GetByID(models.UserScoreID(username, date, models.ScoreCategoryDay))
			if err != nil {
				log.WithError(err).WithField("username", username).Error("failed to check existing score")
				continue
			}
			if existing != nil {
				log.WithField("username", username).Debug("score exists, skipping")
				continue
			}
		}

		result := scoring.Calculate(window.ByAuthor(username), pc.Scoring)

		row := models.NewUserDailyScore(username, date)
		row.Score = result.Total
		row.PRScore = result.PRScore
		row.IssueScore = result.IssueScore
		row.ReviewScore = result.ReviewScore
		row.CommentScore = result.CommentScore

		metricsJSON, err := json.Marshal(result.Metrics)
		if err != nil {
			log.WithError(err).WithField("username", username).Error("failed to encode score metrics")
			continue
		}
		row.Metrics = string(metricsJSON)

		if err := s.scoreRepo.Upsert(row); err != nil {
			log.WithError(err).WithField("username", username).Error("failed to save score")
			continue
		}
		written++
	}

	if written > 0 {
		log.WithField("scores", written).Info("day scored")
	}
	return written, nil
}

// ScoreForInterval returns a contributor's aggregated score over one
// interval. Day intervals read the stored row directly; week and month
// intervals sum the daily rows they cover.
func (s *ScoreService) ScoreForInterval(username string, iv interval.Interval) (*models.UserDailyScore, error) {
	r := iv.DateRange()
	if iv.Type == interval.Day {
		row, err := s.scoreRepo.GetByID(models.UserScoreID(username, r.Start, models.ScoreCategoryDay))
		if err != nil {
			return nil, err
		}
		if row == nil {
			return &models.UserDailyScore{Username: username, Date: r.Start}, nil
		}
		return row, nil
	}
	return s.scoreRepo.SumForRange(username, r.Start, r.End)
}
