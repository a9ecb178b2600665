// Package api exposes the computed analytics over a read-only JSON API.
// Ingestion and processing happen through the job queue; nothing here
// mutates the store except job enqueueing.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xR0am/contribpulse/internal/models"
	"github.com/xR0am/contribpulse/internal/repositories"
	"github.com/xR0am/contribpulse/internal/services"
)

const defaultLeaderboardLimit = 25

// Server holds the handlers' dependencies and the configured router.
type Server struct {
	router         *gin.Engine
	repositoryRepo *repositories.RepositoryRepository
	scoreRepo      *repositories.UserScoreRepository
	tagRepo        *repositories.TagRepository
	summaryRepo    *repositories.SummaryRepository
	jobRepo        *repositories.JobRepository
	scheduler      *services.SchedulerService
}

// NewServer builds the API server and its routes.
func NewServer(
	mode string,
	repositoryRepo *repositories.RepositoryRepository,
	scoreRepo *repositories.UserScoreRepository,
	tagRepo *repositories.TagRepository,
	summaryRepo *repositories.SummaryRepository,
	jobRepo *repositories.JobRepository,
	scheduler *services.SchedulerService,
) *Server {
	gin.SetMode(mode)

	s := &Server{
		router:         gin.New(),
		repositoryRepo: repositoryRepo,
		scoreRepo:      scoreRepo,
		tagRepo:        tagRepo,
		summaryRepo:    summaryRepo,
		jobRepo:        jobRepo,
		scheduler:      scheduler,
	}

	s.router.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health)

	api := s.router.Group("/api")
	{
		api.GET("/repositories", s.listRepositories)
		api.GET("/repositories/:owner/:name/summaries", s.repoSummaries)
		api.GET("/repositories/:owner/:name/jobs", s.repoJobs)
		api.POST("/repositories/:owner/:name/process", s.enqueueProcessing)

		api.GET("/leaderboard", s.leaderboard)
		api.GET("/users/:username/scores", s.userScores)
		api.GET("/users/:username/tags", s.userTags)
		api.GET("/users/:username/summaries", s.userSummaries)
	}
}

// Run starts the HTTP server on the given address.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listRepositories(c *gin.Context) {
	repos, err := s.repositoryRepo.GetTracked()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load repositories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"repositories": repos})
}

func (s *Server) repoSummaries(c *gin.Context) {
	repoID := c.Param("owner") + "/" + c.Param("name")
	intervalType := c.DefaultQuery("interval", "week")

	summaries, err := s.summaryRepo.GetRepoSummaries(repoID, intervalType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load summaries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"repository": repoID, "interval": intervalType, "summaries": summaries})
}

func (s *Server) repoJobs(c *gin.Context) {
	repoID := c.Param("owner") + "/" + c.Param("name")

	jobs, err := s.jobRepo.GetByRepositoryID(repoID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load jobs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"repository": repoID, "jobs": jobs})
}

func (s *Server) enqueueProcessing(c *gin.Context) {
	repoID := c.Param("owner") + "/" + c.Param("name")

	repo, err := s.repositoryRepo.GetByID(repoID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load repository"})
		return
	}
	if repo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "repository is not registered"})
		return
	}

	if err := s.scheduler.ScheduleRepository(repoID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue jobs"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"repository": repoID, "status": "enqueued"})
}

func (s *Server) leaderboard(c *gin.Context) {
	start, end, ok := dateRangeParams(c)
	if !ok {
		return
	}

	limit := defaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	entries, err := s.scoreRepo.GetLeaderboard(start, end, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"start": start, "end": end, "leaderboard": entries})
}

// scoreView is a score row with its metrics column decoded; the outer
// field shadows the row's raw JSON string in the response.
type scoreView struct {
	*models.UserDailyScore
	Metrics models.UserScoreMetrics `json:"metrics"`
}

func (s *Server) userScores(c *gin.Context) {
	start, end, ok := dateRangeParams(c)
	if !ok {
		return
	}

	scores, err := s.scoreRepo.GetByUsernameAndRange(c.Param("username"), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load scores"})
		return
	}

	views := make([]scoreView, len(scores))
	for i, score := range scores {
		views[i] = scoreView{UserDailyScore: score, Metrics: score.DecodeMetrics()}
	}
	c.JSON(http.StatusOK, gin.H{"username": c.Param("username"), "scores": views})
}

func (s *Server) userTags(c *gin.Context) {
	tags, err := s.tagRepo.GetByUsername(c.Param("username"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tags"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": c.Param("username"), "tags": tags})
}

func (s *Server) userSummaries(c *gin.Context) {
	intervalType := c.DefaultQuery("interval", "week")

	summaries, err := s.summaryRepo.GetUserSummaries(c.Param("username"), intervalType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load summaries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": c.Param("username"), "interval": intervalType, "summaries": summaries})
}

// dateRangeParams reads start/end query params, defaulting to the last
// 30 days. The end bound is exclusive.
func dateRangeParams(c *gin.Context) (string, string, bool) {
	now := time.Now().UTC()
	start := c.DefaultQuery("start", now.AddDate(0, 0, -30).Format("2006-01-02"))
	end := c.DefaultQuery("end", now.AddDate(0, 0, 1).Format("2006-01-02"))

	for _, value := range []string{start, end} {
		if _, err := time.Parse("2006-01-02", value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
			return "", "", false
		}
	}
	return start, end, true
}
