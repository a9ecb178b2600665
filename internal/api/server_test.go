package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xR0am/contribpulse/internal/models"
	"github.com/xR0am/contribpulse/internal/repositories"
	"github.com/xR0am/contribpulse/internal/services"
	"github.com/xR0am/contribpulse/pkg/database"
)

func newTestServer(t *testing.T) (*Server, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.RunSQLScripts(db, "../../migrations"))

	repositoryRepo := repositories.NewRepositoryRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	scheduler := services.NewSchedulerService(repositoryRepo, jobRepo)

	server := NewServer(
		gin.TestMode,
		repositoryRepo,
		repositories.NewUserScoreRepository(db),
		repositories.NewTagRepository(db),
		repositories.NewSummaryRepository(db),
		jobRepo,
		scheduler,
	)
	return server, db
}

func get(t *testing.T, server *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	w := get(t, server, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestLeaderboardEndpoint(t *testing.T) {
	server, db := newTestServer(t)
	scoreRepo := repositories.NewUserScoreRepository(db)

	alice := models.NewUserDailyScore("alice", "2024-07-01")
	alice.Score = 42
	require.NoError(t, scoreRepo.Upsert(alice))

	w := get(t, server, "/api/leaderboard?start=2024-07-01&end=2024-08-01")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Leaderboard []struct {
			Username string  `json:"username"`
			Score    float64 `json:"score"`
		} `json:"leaderboard"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Leaderboard, 1)
	assert.Equal(t, "alice", body.Leaderboard[0].Username)
	assert.Equal(t, 42.0, body.Leaderboard[0].Score)
}

func TestLeaderboardRejectsBadDates(t *testing.T) {
	server, _ := newTestServer(t)

	w := get(t, server, "/api/leaderboard?start=07-01-2024")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(t, server, "/api/leaderboard?limit=zero")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserScoresEndpointDecodesMetrics(t *testing.T) {
	server, db := newTestServer(t)
	scoreRepo := repositories.NewUserScoreRepository(db)

	good := models.NewUserDailyScore("alice", "2024-07-01")
	good.Score = 10
	good.Metrics = `{"pull_requests":{"total":2,"merged":1}}`
	require.NoError(t, scoreRepo.Upsert(good))

	// A corrupted metrics column must not break the endpoint.
	bad := models.NewUserDailyScore("alice", "2024-07-02")
	bad.Score = 5
	bad.Metrics = `{"not": "metrics"}`
	require.NoError(t, scoreRepo.Upsert(bad))

	w := get(t, server, "/api/users/alice/scores?start=2024-07-01&end=2024-08-01")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Scores []struct {
			Date    string                  `json:"date"`
			Metrics models.UserScoreMetrics `json:"metrics"`
		} `json:"scores"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Scores, 2)

	// Newest first: the corrupted row decodes to zero values, the good
	// row to its stored snapshot.
	assert.Equal(t, "2024-07-02", body.Scores[0].Date)
	assert.Equal(t, models.UserScoreMetrics{}, body.Scores[0].Metrics)
	assert.Equal(t, "2024-07-01", body.Scores[1].Date)
	assert.Equal(t, 2, body.Scores[1].Metrics.PullRequests.Total)
	assert.Equal(t, 1, body.Scores[1].Metrics.PullRequests.Merged)
}

func TestUserTagsEndpoint(t *testing.T) {
	server, db := newTestServer(t)
	tagRepo := repositories.NewTagRepository(db)

	score := models.NewUserTagScore("alice", "backend")
	score.Score = 6
	score.Level = 2
	require.NoError(t, tagRepo.UpsertUserTagScore(score))

	w := get(t, server, "/api/users/alice/tags")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Tags []struct {
			Tag   string `json:"tag"`
			Level int    `json:"level"`
		} `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Tags, 1)
	assert.Equal(t, "backend", body.Tags[0].Tag)
	assert.Equal(t, 2, body.Tags[0].Level)
}

func TestEnqueueProcessing(t *testing.T) {
	server, db := newTestServer(t)
	repositoryRepo := repositories.NewRepositoryRepository(db)
	jobRepo := repositories.NewJobRepository(db)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/repositories/acme/widgets/process", nil)
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code, "unregistered repositories cannot be processed")

	require.NoError(t, repositoryRepo.Upsert(models.NewRepository("acme/widgets", "main")))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/repositories/acme/widgets/process", nil)
	server.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	jobs, err := jobRepo.GetByRepositoryID("acme/widgets")
	require.NoError(t, err)
	assert.Len(t, jobs, 5, "full ingest-to-export chain enqueued")
}

func TestRepoSummariesEndpoint(t *testing.T) {
	server, db := newTestServer(t)
	summaryRepo := repositories.NewSummaryRepository(db)

	require.NoError(t, summaryRepo.UpsertRepoSummary(
		models.NewRepoSummary("acme/widgets", "week", "2024-07-14", "Shipping week.")))

	w := get(t, server, "/api/repositories/acme/widgets/summaries?interval=week")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Summaries []struct {
			Date    string `json:"date"`
			Summary string `json:"summary"`
		} `json:"summaries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Summaries, 1)
	assert.Equal(t, "2024-07-14", body.Summaries[0].Date)
	assert.Equal(t, "Shipping week.", body.Summaries[0].Summary)
}
