package roadmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyBatch_RenameRoadmapAndNodes(t *testing.T) {
	r := testRoadmap(t)

	res := r.ApplyBatch(EditBatch{
		NewName: "Go Backend 2026",
		NewSlug: "go-backend-2026",
		NodesToRename: []NodeRename{
			{NodeID: r.Nodes[0].ID, NewName: "Fundamentals"},
			{NodeID: "ghost", NewName: "Nope"},
		},
	})

	assert.Equal(t, "Go Backend 2026", r.Name)
	assert.Equal(t, "go-backend-2026", r.Slug)
	assert.Equal(t, "Fundamentals", r.Nodes[0].Name)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SkipNodeNotFound, res.Skipped[0].Reason)
	assert.Equal(t, "ghost", res.Skipped[0].TargetID)
}

func TestApplyBatch_DeleteNodeCascadesEdges(t *testing.T) {
	r := testRoadmap(t)
	middle := r.Nodes[1].ID
	require.Len(t, r.Edges, 2)

	res := r.ApplyBatch(EditBatch{NodesToDelete: []string{middle}})

	assert.Empty(t, res.Skipped)
	assert.Len(t, r.Nodes, 2)
	assert.Empty(t, r.Edges, "both edges touched the deleted node")
	assert.NoError(t, r.Validate())
}

func TestApplyBatch_AddNodesAndEdges(t *testing.T) {
	r := testRoadmap(t)

	res := r.ApplyBatch(EditBatch{
		NodesToAdd: []NewNode{{Name: "Deployment"}},
	})
	require.Len(t, res.AddedNodeIDs, 1)

	newID := res.AddedNodeIDs[0]
	res = r.ApplyBatch(EditBatch{
		EdgesToAdd: []NewEdge{
			{Source: r.Nodes[2].ID, Target: newID},
			{Source: "ghost", Target: newID},
		},
	})

	require.Len(t, res.AddedEdgeIDs, 1)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SkipDanglingEndpoint, res.Skipped[0].Reason)
	assert.NoError(t, r.Validate())
}

func TestApplyBatch_AddNodeSkipReasons(t *testing.T) {
	r := testRoadmap(t)
	before := len(r.Nodes)

	res := r.ApplyBatch(EditBatch{
		NodesToAdd: []NewNode{
			{Name: ""},
			{Name: "Broken", Contents: []NewContent{
				{Kind: "podcast", Title: "Nope", URL: "https://example.com"},
			}},
		},
	})

	assert.Len(t, r.Nodes, before)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, SkipInvalidPayload, res.Skipped[0].Reason, "missing name is not a kind problem")
	assert.Equal(t, SkipInvalidKind, res.Skipped[1].Reason)
}

func TestApplyBatch_AddedNodeUsableInSameBatch(t *testing.T) {
	r := testRoadmap(t)

	// Deletes run before adds, so deleting and re-adding in one batch works.
	res := r.ApplyBatch(EditBatch{
		NodesToDelete: []string{r.Nodes[2].ID},
		NodesToAdd:    []NewNode{{Name: "Observability"}},
	})

	assert.Empty(t, res.Skipped)
	assert.Len(t, r.Nodes, 3)
}

func TestApplyBatch_DeleteEdgeByID(t *testing.T) {
	r := testRoadmap(t)

	res := r.ApplyBatch(EditBatch{
		EdgesToDelete: []EdgeRef{{ID: r.Edges[0].ID}},
	})

	assert.Empty(t, res.Skipped)
	assert.Len(t, r.Edges, 1)
}

func TestApplyBatch_DeleteEdgeByEndpointPair(t *testing.T) {
	r := testRoadmap(t)
	src, dst := r.Edges[0].Source, r.Edges[0].Target

	res := r.ApplyBatch(EditBatch{
		EdgesToDelete: []EdgeRef{
			{Source: src, Target: dst},
			{Source: dst, Target: src}, // reversed pair does not match
		},
	})

	assert.Len(t, r.Edges, 1)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SkipEdgeNotFound, res.Skipped[0].Reason)
}

func TestApplyBatch_UpdateContentInvalidKindStillAppliesURL(t *testing.T) {
	r := testRoadmap(t)
	nodeID := r.Nodes[0].ID
	contentID := r.Nodes[0].Contents[0].ID

	res := r.ApplyBatch(EditBatch{
		ContentsToUpdate: []ContentUpdate{
			{NodeID: nodeID, ContentID: contentID, NewKind: "podcast", NewURL: "https://example.com/moved"},
		},
	})

	content := findContent(r.FindNode(nodeID), contentID)
	require.NotNil(t, content)
	assert.Equal(t, ContentKindVideo, content.Kind, "invalid kind leaves the old kind")
	assert.Equal(t, "https://example.com/moved", content.URL, "url change still applies")
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SkipInvalidKind, res.Skipped[0].Reason)
}

func TestApplyBatch_UpdateContentValidKind(t *testing.T) {
	r := testRoadmap(t)
	nodeID := r.Nodes[0].ID
	contentID := r.Nodes[0].Contents[0].ID

	res := r.ApplyBatch(EditBatch{
		ContentsToUpdate: []ContentUpdate{
			{NodeID: nodeID, ContentID: contentID, NewKind: "website", NewURL: "https://example.com/article"},
		},
	})

	assert.Empty(t, res.Skipped)
	content := findContent(r.FindNode(nodeID), contentID)
	assert.Equal(t, ContentKindWebsite, content.Kind)
}

func TestApplyBatch_ContentLifecycle(t *testing.T) {
	r := testRoadmap(t)
	nodeID := r.Nodes[1].ID

	res := r.ApplyBatch(EditBatch{
		ContentsToAdd: []ContentAdd{
			{NodeID: nodeID, Content: NewContent{Kind: "website", Title: "Tour", URL: "https://example.com/tour"}},
		},
	})
	require.Len(t, res.AddedContentIDs, 1)

	res = r.ApplyBatch(EditBatch{
		ContentsToDelete: []ContentRef{
			{NodeID: nodeID, ContentID: res.AddedContentIDs[0]},
			{NodeID: nodeID, ContentID: "ghost"},
		},
	})

	assert.Empty(t, r.FindNode(nodeID).Contents)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SkipContentNotFound, res.Skipped[0].Reason)
}

func TestApplyBatch_EmptyBatchIsNoOp(t *testing.T) {
	r := testRoadmap(t)
	nodes, edges := len(r.Nodes), len(r.Edges)

	var batch EditBatch
	assert.True(t, batch.IsEmpty())

	res := r.ApplyBatch(batch)
	assert.Empty(t, res.Skipped)
	assert.Len(t, r.Nodes, nodes)
	assert.Len(t, r.Edges, edges)
}
