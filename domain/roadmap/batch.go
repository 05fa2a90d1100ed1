package roadmap

import (
	"time"

	"github.com/google/uuid"
)

// EditBatch is one batched structural edit of a roadmap. All fields are
// optional; an absent field is a no-op for that step. Evaluation order is
// fixed regardless of how the batch was assembled: rename roadmap, rename
// nodes, delete nodes (cascading their edges), add nodes, delete edges, add
// edges, update contents, delete contents, add contents.
type EditBatch struct {
	NewName string `json:"newName,omitempty"`
	NewSlug string `json:"newNameSlug,omitempty"`

	NodesToRename []NodeRename `json:"nodesToRename,omitempty" validate:"omitempty,dive"`
	NodesToDelete []string     `json:"nodesToDelete,omitempty"`
	NodesToAdd    []NewNode    `json:"nodesToAdd,omitempty" validate:"omitempty,dive"`

	EdgesToDelete []EdgeRef `json:"edgesToDelete,omitempty"`
	EdgesToAdd    []NewEdge `json:"edgesToAdd,omitempty" validate:"omitempty,dive"`

	ContentsToUpdate []ContentUpdate `json:"contentsToUpdate,omitempty" validate:"omitempty,dive"`
	ContentsToDelete []ContentRef    `json:"contentsToDelete,omitempty" validate:"omitempty,dive"`
	ContentsToAdd    []ContentAdd    `json:"contentsToAdd,omitempty" validate:"omitempty,dive"`
}

// NodeRename renames a single node
type NodeRename struct {
	NodeID  string `json:"nodeId" validate:"required"`
	NewName string `json:"newName" validate:"required"`
}

// NewNode is the payload for a node to be created
type NewNode struct {
	Name        string       `json:"name" validate:"required"`
	Description string       `json:"description"`
	Position    *Position    `json:"position"`
	Contents    []NewContent `json:"contents" validate:"omitempty,dive"`
}

// NewContent is the payload for a content to be created
type NewContent struct {
	Kind  string `json:"type" validate:"required,oneof=video website"`
	Title string `json:"title" validate:"required"`
	URL   string `json:"url" validate:"required,url"`
}

// EdgeRef addresses an edge for deletion. The edge's own id is
// authoritative; the (source, target) pair is accepted as a fallback when
// the id is absent.
type EdgeRef struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// NewEdge is the payload for an edge to be created
type NewEdge struct {
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// ContentUpdate updates a content in place. The URL change always applies
// when the content is found; the kind change applies only when NewKind is a
// valid kind.
type ContentUpdate struct {
	NodeID    string `json:"nodeId" validate:"required"`
	ContentID string `json:"contentId" validate:"required"`
	NewKind   string `json:"newType,omitempty"`
	NewURL    string `json:"newUrl" validate:"required"`
}

// ContentRef addresses a content within its owning node
type ContentRef struct {
	NodeID    string `json:"nodeId" validate:"required"`
	ContentID string `json:"contentId" validate:"required"`
}

// ContentAdd attaches a new content to an existing node
type ContentAdd struct {
	NodeID  string     `json:"nodeId" validate:"required"`
	Content NewContent `json:"content" validate:"required"`
}

// SkipReason classifies why a batch item was not applied
type SkipReason string

const (
	SkipNodeNotFound     SkipReason = "node_not_found"
	SkipContentNotFound  SkipReason = "content_not_found"
	SkipEdgeNotFound     SkipReason = "edge_not_found"
	SkipDanglingEndpoint SkipReason = "dangling_endpoint"
	SkipInvalidKind      SkipReason = "invalid_kind"
	SkipInvalidPayload   SkipReason = "invalid_payload"
)

// SkippedItem records one ignored batch item so callers can observe what
// the lenient mutation policy dropped
type SkippedItem struct {
	Step     string     `json:"step"`
	TargetID string     `json:"targetId"`
	Reason   SkipReason `json:"reason"`
}

// BatchResult summarizes an applied batch
type BatchResult struct {
	AddedNodeIDs    []string      `json:"addedNodeIds,omitempty"`
	AddedEdgeIDs    []string      `json:"addedEdgeIds,omitempty"`
	AddedContentIDs []string      `json:"addedContentIds,omitempty"`
	Skipped         []SkippedItem `json:"skipped,omitempty"`
}

func (res *BatchResult) skip(step, targetID string, reason SkipReason) {
	res.Skipped = append(res.Skipped, SkippedItem{Step: step, TargetID: targetID, Reason: reason})
}

// ApplyBatch applies a batched edit to the aggregate in the fixed step
// order. Per-item lookup misses are recorded and skipped, never fatal; the
// aggregate always satisfies Validate afterwards.
func (r *Roadmap) ApplyBatch(batch EditBatch) BatchResult {
	var res BatchResult

	// 1. Rename roadmap. Slug uniqueness is the store's concern; a clash
	// surfaces as a persistence conflict.
	if batch.NewName != "" {
		r.Name = batch.NewName
	}
	if batch.NewSlug != "" {
		r.Slug = batch.NewSlug
	}

	// 2. Rename nodes. A rename referencing a node deleted later in the
	// same batch is a legitimate skip, not an error.
	for _, rn := range batch.NodesToRename {
		node := r.FindNode(rn.NodeID)
		if node == nil {
			res.skip("renameNodes", rn.NodeID, SkipNodeNotFound)
			continue
		}
		node.Name = rn.NewName
	}

	// 3. Delete nodes, then cascade edges touching them. Nodes first:
	// skipping the cascade would leave dangling edges.
	if len(batch.NodesToDelete) > 0 {
		doomed := make(map[string]struct{}, len(batch.NodesToDelete))
		for _, id := range batch.NodesToDelete {
			if r.HasNode(id) {
				doomed[id] = struct{}{}
			} else {
				res.skip("deleteNodes", id, SkipNodeNotFound)
			}
		}
		keptNodes := r.Nodes[:0]
		for _, n := range r.Nodes {
			if _, dead := doomed[n.ID]; !dead {
				keptNodes = append(keptNodes, n)
			}
		}
		r.Nodes = keptNodes

		keptEdges := r.Edges[:0]
		for _, e := range r.Edges {
			if _, dead := doomed[e.Source]; dead {
				continue
			}
			if _, dead := doomed[e.Target]; dead {
				continue
			}
			keptEdges = append(keptEdges, e)
		}
		r.Edges = keptEdges
	}

	// 4. Add nodes. A build failure is either a missing name or a bad
	// content kind nested in the payload.
	for _, nn := range batch.NodesToAdd {
		node, err := buildNode(nn)
		if err != nil {
			reason := SkipInvalidKind
			if nn.Name == "" {
				reason = SkipInvalidPayload
			}
			res.skip("addNodes", nn.Name, reason)
			continue
		}
		r.Nodes = append(r.Nodes, node)
		res.AddedNodeIDs = append(res.AddedNodeIDs, node.ID)
	}

	// 5. Delete edges: by edge id when given, by exact endpoint pair
	// otherwise. Partial endpoint matches do not delete.
	for _, ref := range batch.EdgesToDelete {
		if !r.deleteEdge(ref) {
			target := ref.ID
			if target == "" {
				target = ref.Source + "->" + ref.Target
			}
			res.skip("deleteEdges", target, SkipEdgeNotFound)
		}
	}

	// 6. Add edges, rejecting endpoints that do not resolve to live nodes
	for _, ne := range batch.EdgesToAdd {
		if !r.HasNode(ne.Source) {
			res.skip("addEdges", ne.Source, SkipDanglingEndpoint)
			continue
		}
		if !r.HasNode(ne.Target) {
			res.skip("addEdges", ne.Target, SkipDanglingEndpoint)
			continue
		}
		edge := Edge{
			ID:           uuid.New().String(),
			Source:       ne.Source,
			Target:       ne.Target,
			SourceHandle: ne.SourceHandle,
			TargetHandle: ne.TargetHandle,
		}
		r.Edges = append(r.Edges, edge)
		res.AddedEdgeIDs = append(res.AddedEdgeIDs, edge.ID)
	}

	// 7. Update contents. The URL change always applies; the kind change
	// applies only for a valid kind and an invalid one is recorded.
	for _, cu := range batch.ContentsToUpdate {
		node := r.FindNode(cu.NodeID)
		if node == nil {
			res.skip("updateContents", cu.NodeID, SkipNodeNotFound)
			continue
		}
		content := findContent(node, cu.ContentID)
		if content == nil {
			res.skip("updateContents", cu.ContentID, SkipContentNotFound)
			continue
		}
		if cu.NewKind != "" {
			if kind, err := ParseContentKind(cu.NewKind); err == nil {
				content.Kind = kind
			} else {
				res.skip("updateContents", cu.ContentID, SkipInvalidKind)
			}
		}
		content.URL = cu.NewURL
	}

	// 8. Delete contents
	for _, cr := range batch.ContentsToDelete {
		node := r.FindNode(cr.NodeID)
		if node == nil {
			res.skip("deleteContents", cr.NodeID, SkipNodeNotFound)
			continue
		}
		if !removeContent(node, cr.ContentID) {
			res.skip("deleteContents", cr.ContentID, SkipContentNotFound)
		}
	}

	// 9. Add contents
	for _, ca := range batch.ContentsToAdd {
		node := r.FindNode(ca.NodeID)
		if node == nil {
			res.skip("addContents", ca.NodeID, SkipNodeNotFound)
			continue
		}
		content, err := buildContent(ca.Content)
		if err != nil {
			res.skip("addContents", ca.NodeID, SkipInvalidKind)
			continue
		}
		node.Contents = append(node.Contents, content)
		res.AddedContentIDs = append(res.AddedContentIDs, content.ID)
	}

	r.UpdatedAt = time.Now().UTC()
	return res
}

// IsEmpty reports whether the batch contains no operations
func (b EditBatch) IsEmpty() bool {
	return b.NewName == "" && b.NewSlug == "" &&
		len(b.NodesToRename) == 0 && len(b.NodesToDelete) == 0 && len(b.NodesToAdd) == 0 &&
		len(b.EdgesToDelete) == 0 && len(b.EdgesToAdd) == 0 &&
		len(b.ContentsToUpdate) == 0 && len(b.ContentsToDelete) == 0 && len(b.ContentsToAdd) == 0
}

func (r *Roadmap) deleteEdge(ref EdgeRef) bool {
	if ref.ID != "" {
		for i, e := range r.Edges {
			if e.ID == ref.ID {
				r.Edges = append(r.Edges[:i], r.Edges[i+1:]...)
				return true
			}
		}
		return false
	}
	// Endpoint-pair fallback removes every exact match
	kept := r.Edges[:0]
	removed := false
	for _, e := range r.Edges {
		if e.Source == ref.Source && e.Target == ref.Target {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	r.Edges = kept
	return removed
}

func findContent(node *Node, contentID string) *Content {
	for i := range node.Contents {
		if node.Contents[i].ID == contentID {
			return &node.Contents[i]
		}
	}
	return nil
}

func removeContent(node *Node, contentID string) bool {
	for i := range node.Contents {
		if node.Contents[i].ID == contentID {
			node.Contents = append(node.Contents[:i], node.Contents[i+1:]...)
			return true
		}
	}
	return false
}
