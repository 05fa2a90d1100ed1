package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"roadmaps-backend/domain/roadmap"
	"roadmaps-backend/infrastructure/messaging/eventbridge"
	"roadmaps-backend/infrastructure/persistence/memory"
	apperrors "roadmaps-backend/pkg/errors"
	"roadmaps-backend/pkg/observability"
)

func newRoadmapService(t *testing.T) (*RoadmapService, *memory.RoadmapRepository) {
	t.Helper()
	repo := memory.NewRoadmapRepository()
	svc := NewRoadmapService(repo, eventbridge.NopBus{}, observability.NewCollector("roadmaps"), zap.NewNop())
	return svc, repo
}

func seedRoadmap(t *testing.T, svc *RoadmapService) *roadmap.Roadmap {
	t.Helper()
	rm, err := svc.Create(context.Background(), "Go Backend", "go-backend", []roadmap.NewNode{
		{Name: "Basics", Contents: []roadmap.NewContent{
			{Kind: "video", Title: "Intro", URL: "https://example.com/intro"},
		}},
		{Name: "Concurrency"},
	})
	require.NoError(t, err)
	return rm
}

func TestRoadmapService_CreateAndGet(t *testing.T) {
	svc, _ := newRoadmapService(t)
	ctx := context.Background()

	rm := seedRoadmap(t, svc)

	got, err := svc.Get(ctx, rm.ID)
	require.NoError(t, err)
	assert.Equal(t, rm.ID, got.ID)
	assert.Len(t, got.Nodes, 2)

	bySlug, err := svc.GetBySlug(ctx, "go-backend")
	require.NoError(t, err)
	assert.Equal(t, rm.ID, bySlug.ID)

	_, err = svc.Get(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRoadmapService_CreateDuplicateSlug(t *testing.T) {
	svc, _ := newRoadmapService(t)
	ctx := context.Background()
	seedRoadmap(t, svc)

	_, err := svc.Create(ctx, "Another", "go-backend", []roadmap.NewNode{{Name: "Basics"}})
	assert.True(t, apperrors.IsConflict(err))
}

func TestRoadmapService_BatchRenameToTakenSlug(t *testing.T) {
	svc, _ := newRoadmapService(t)
	ctx := context.Background()
	seedRoadmap(t, svc)

	other, err := svc.Create(ctx, "Rust Backend", "rust-backend", []roadmap.NewNode{{Name: "Basics"}})
	require.NoError(t, err)

	_, _, err = svc.ApplyBatch(ctx, other.ID, roadmap.EditBatch{NewSlug: "go-backend"})
	assert.True(t, apperrors.IsConflict(err))
}

func TestRoadmapService_CreateRequiresNodes(t *testing.T) {
	svc, _ := newRoadmapService(t)

	_, err := svc.Create(context.Background(), "Empty", "empty", nil)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRoadmapService_ApplyBatch(t *testing.T) {
	svc, _ := newRoadmapService(t)
	ctx := context.Background()
	rm := seedRoadmap(t, svc)

	updated, result, err := svc.ApplyBatch(ctx, rm.ID, roadmap.EditBatch{
		NewName:       "Go Backend 2026",
		NodesToAdd:    []roadmap.NewNode{{Name: "Deployment"}},
		NodesToDelete: []string{"ghost"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Go Backend 2026", updated.Name)
	assert.Len(t, updated.Nodes, 3)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, roadmap.SkipNodeNotFound, result.Skipped[0].Reason)

	// The mutation persisted
	got, err := svc.Get(ctx, rm.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go Backend 2026", got.Name)
	assert.Len(t, got.Nodes, 3)
}

func TestRoadmapService_ApplyBatch_MissingRoadmap(t *testing.T) {
	svc, _ := newRoadmapService(t)

	_, _, err := svc.ApplyBatch(context.Background(), "missing", roadmap.EditBatch{NewName: "x"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRoadmapService_DeleteEdges(t *testing.T) {
	svc, _ := newRoadmapService(t)
	ctx := context.Background()
	rm := seedRoadmap(t, svc)

	// Connect the two nodes first
	_, result, err := svc.ApplyBatch(ctx, rm.ID, roadmap.EditBatch{
		EdgesToAdd: []roadmap.NewEdge{{Source: rm.Nodes[0].ID, Target: rm.Nodes[1].ID}},
	})
	require.NoError(t, err)
	require.Len(t, result.AddedEdgeIDs, 1)

	updated, removed, err := svc.DeleteEdges(ctx, rm.ID, []string{result.AddedEdgeIDs[0], "ghost"})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Empty(t, updated.Edges)
}

func TestRoadmapService_Delete(t *testing.T) {
	svc, _ := newRoadmapService(t)
	ctx := context.Background()
	rm := seedRoadmap(t, svc)

	require.NoError(t, svc.Delete(ctx, rm.ID))

	_, err := svc.Get(ctx, rm.ID)
	assert.True(t, apperrors.IsNotFound(err))

	err = svc.Delete(ctx, rm.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRoadmapService_Replace(t *testing.T) {
	svc, _ := newRoadmapService(t)
	ctx := context.Background()
	rm := seedRoadmap(t, svc)

	nodes := []roadmap.Node{{Name: "Rewritten"}}
	updated, err := svc.Replace(ctx, rm.ID, "Rewritten Map", "rewritten-map", nodes, nil)
	require.NoError(t, err)

	assert.Equal(t, "rewritten-map", updated.Slug)
	require.Len(t, updated.Nodes, 1)
	assert.NotEmpty(t, updated.Nodes[0].ID)
	assert.Empty(t, updated.Edges)
}

func TestRoadmapRepository_VersionConflict(t *testing.T) {
	repo := memory.NewRoadmapRepository()
	ctx := context.Background()

	rm, err := roadmap.NewRoadmap("Go", "go", []roadmap.NewNode{{Name: "Basics"}})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, rm))

	first, err := repo.GetByID(ctx, rm.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, rm.ID)
	require.NoError(t, err)

	first.Name = "Go (writer one)"
	require.NoError(t, repo.Save(ctx, first))

	second.Name = "Go (writer two)"
	err = repo.Save(ctx, second)
	assert.True(t, apperrors.IsConflict(err), "stale version must not overwrite")
}
