package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/xR0am/contribpulse/internal/interval"
	"github.com/xR0am/contribpulse/internal/models"
	"github.com/xR0am/contribpulse/internal/pipeline"
	"github.com/xR0am/contribpulse/internal/repositories"
	"github.com/xR0am/contribpulse/internal/tagging"
)

// TagService orchestrates expertise tagging. Tag scores are cumulative
// over the whole processed range, so unlike daily scores they are
// recomputed from scratch on every run rather than skipped when
// present.
type TagService struct {
	pullRequestRepo *repositories.PullRequestRepository
	tagRepo         *repositories.TagRepository
}

func NewTagService(pullRequestRepo *repositories.PullRequestRepository, tagRepo *repositories.TagRepository) *TagService {
	return &TagService{pullRequestRepo: pullRequestRepo, tagRepo: tagRepo}
}

// ProcessRepository recomputes expertise tags for every contributor
// with pull requests in the context's range. Contributors with no
// matching activity keep whatever tag rows they already had.
// Returns the number of tag score rows written.
func (s *TagService) ProcessRepository(ctx context.Context, pc *pipeline.Context) (int, error) {
	if pc.RepoID == "" {
		return 0, fmt.Errorf("tag: repository not set on pipeline context")
	}
	log := pc.StepLogger("tag-repository")

	for _, rule := range pc.Tags {
		if err := s.tagRepo.UpsertTag(rule.Name, rule.Category); err != nil {
			return 0, fmt.Errorf("tag registry: %s: %w", rule.Name, err)
		}
	}

	// The range end is an inclusive date; the repository filter's upper
	// bound is exclusive, so query up to the end of that day.
	endDay, err := interval.Parse(pc.Range.End, interval.Day)
	if err != nil {
		return 0, fmt.Errorf("tag: range end: %w", err)
	}

	prs, err := s.pullRequestRepo.GetByRepositoryAndDateRange(pc.RepoID, pc.Range.Start, endDay.End.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}

	byAuthor := make(map[string][]tagging.PRActivity)
	for _, pr := range prs {
		if pr.Author == "" {
			continue
		}
		byAuthor[pr.Author] = append(byAuthor[pr.Author], tagging.PRActivity{
			Title:     pr.Title,
			FilePaths: pr.FilePaths,
		})
	}

	written := 0
	for username, activity := range byAuthor {
		if ctx.Err() != nil {
			return written, ctx.Err()
		}

		for _, tag := range tagging.Score(activity, pc.Tags) {
			row := models.NewUserTagScore(username, tag.Name)
			row.Score = tag.Score
			row.Level = tag.Level
			row.Progress = tag.Progress
			row.PointsToNext = tag.PointsToNext

			if err := s.tagRepo.UpsertUserTagScore(row); err != nil {
				log.WithError(err).WithFields(logrus.Fields{
					"username": username,
					"tag":      tag.Name,
				}).Error("failed to save tag score")
				continue
			}
			written++
		}
	}

	log.WithFields(logrus.Fields{
		"contributors": len(byAuthor),
		"tag_scores":   written,
	}).Info("tags computed")

	return written, nil
}

// TagsForUser returns a contributor's stored tag scores, highest first.
func (s *TagService) TagsForUser(username string) ([]*models.UserTagScore, error) {
	return s.tagRepo.GetByUsername(username)
}
