package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xR0am/contribpulse/internal/models"
)

func TestTagServiceProcessRepository(t *testing.T) {
	store := newTestStore(t)
	svc := NewTagService(store.pullRequestRepo, store.tagRepo)

	const repoID = "acme/widgets"
	store.seedPR(t, repoID, 1, "alice", "2024-07-01", "MERGED", "feat: parser rewrite",
		"internal/parser/parser.go", "internal/parser/lexer.go")
	store.seedPR(t, repoID, 2, "alice", "2024-07-02", "MERGED", "fix: handle empty input",
		"internal/parser/parser.go")
	store.seedPR(t, repoID, 3, "bob", "2024-07-03", "OPEN", "docs: add examples", "docs/examples.md")

	pc := newScoreContext(repoID, "2024-07-01", "2024-07-31")
	written, err := svc.ProcessRepository(context.Background(), pc)
	require.NoError(t, err)
	assert.Greater(t, written, 0)

	// The rule registry is populated for every configured rule.
	tags, err := store.tagRepo.GetTags()
	require.NoError(t, err)
	assert.Len(t, tags, len(pc.Tags))

	// Alice touched internal/ paths on every PR, so she earns the
	// backend area tag; levels derive from the accumulated score.
	aliceTags, err := svc.TagsForUser("alice")
	require.NoError(t, err)
	require.NotEmpty(t, aliceTags)

	var backend *models.UserTagScore
	for _, tag := range aliceTags {
		if tag.Tag == "backend" {
			backend = tag
		}
	}
	require.NotNil(t, backend, "expected a backend tag for alice")
	assert.Greater(t, backend.Score, 0.0)
	assert.GreaterOrEqual(t, backend.Level, 1)

	bobTags, err := svc.TagsForUser("bob")
	require.NoError(t, err)
	require.NotEmpty(t, bobTags)
	for _, tag := range bobTags {
		assert.NotEqual(t, "backend", tag.Tag, "bob never touched backend paths")
	}
}

func TestTagServiceIncludesRangeEndDate(t *testing.T) {
	store := newTestStore(t)
	svc := NewTagService(store.pullRequestRepo, store.tagRepo)

	const repoID = "acme/widgets"
	store.seedPR(t, repoID, 1, "alice", "2024-07-15", "MERGED", "feat: one", "internal/a.go")

	// A single-day range whose end date is the activity date: the end
	// bound is inclusive, so the PR still counts.
	pc := newScoreContext(repoID, "2024-07-15", "2024-07-15")
	written, err := svc.ProcessRepository(context.Background(), pc)
	require.NoError(t, err)
	assert.Greater(t, written, 0)

	backend, err := store.tagRepo.GetByID(models.UserTagID("alice", "backend"))
	require.NoError(t, err)
	require.NotNil(t, backend)
	assert.Greater(t, backend.Score, 0.0)
}

func TestTagServiceRecomputesCumulatively(t *testing.T) {
	store := newTestStore(t)
	svc := NewTagService(store.pullRequestRepo, store.tagRepo)

	const repoID = "acme/widgets"
	store.seedPR(t, repoID, 1, "alice", "2024-07-01", "MERGED", "feat: one", "internal/a.go")

	pc := newScoreContext(repoID, "2024-07-01", "2024-07-31")
	_, err := svc.ProcessRepository(context.Background(), pc)
	require.NoError(t, err)

	first, err := store.tagRepo.GetByID(models.UserTagID("alice", "backend"))
	require.NoError(t, err)
	require.NotNil(t, first)

	// More activity in the range, then a rerun: the row is overwritten
	// with the larger cumulative score, never duplicated.
	store.seedPR(t, repoID, 2, "alice", "2024-07-05", "MERGED", "feat: two", "internal/b.go")
	_, err = svc.ProcessRepository(context.Background(), pc)
	require.NoError(t, err)

	second, err := store.tagRepo.GetByID(models.UserTagID("alice", "backend"))
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Greater(t, second.Score, first.Score)
	assert.Equal(t, first.ID, second.ID)
}
