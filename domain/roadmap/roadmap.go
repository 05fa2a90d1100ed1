// Package roadmap holds the roadmap aggregate: a named, slugged graph of
// study-topic nodes connected by directed edges, where each node carries a
// set of learning contents.
package roadmap

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "roadmaps-backend/pkg/errors"
)

// ContentKind is the closed set of learning-resource kinds
type ContentKind string

const (
	ContentKindVideo   ContentKind = "video"
	ContentKindWebsite ContentKind = "website"
)

// ParseContentKind validates a kind string at the API boundary
func ParseContentKind(s string) (ContentKind, error) {
	switch ContentKind(s) {
	case ContentKindVideo, ContentKindWebsite:
		return ContentKind(s), nil
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("invalid content kind %q", s))
}

// Content is a single learning resource attached to a node
type Content struct {
	ID    string      `json:"id" dynamodbav:"ID"`
	Kind  ContentKind `json:"type" dynamodbav:"Kind"`
	Title string      `json:"title" dynamodbav:"Title"`
	URL   string      `json:"url" dynamodbav:"URL"`
}

// Position is the node's display location; it carries no semantic invariant
type Position struct {
	X float64 `json:"x" dynamodbav:"X"`
	Y float64 `json:"y" dynamodbav:"Y"`
}

// Node is a topic within a roadmap
type Node struct {
	ID          string    `json:"id" dynamodbav:"ID"`
	Name        string    `json:"name" dynamodbav:"Name"`
	Description string    `json:"description" dynamodbav:"Description"`
	Position    Position  `json:"position" dynamodbav:"Position"`
	Contents    []Content `json:"contents" dynamodbav:"Contents"`
}

// Edge is a directed relation between two nodes of the same roadmap
type Edge struct {
	ID           string `json:"id" dynamodbav:"ID"`
	Source       string `json:"source" dynamodbav:"Source"`
	Target       string `json:"target" dynamodbav:"Target"`
	SourceHandle string `json:"sourceHandle,omitempty" dynamodbav:"SourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty" dynamodbav:"TargetHandle,omitempty"`
}

// Roadmap is the aggregate root. Version implements the optimistic lock
// checked by the store at persist time.
type Roadmap struct {
	ID        string    `json:"id"`
	Slug      string    `json:"nameSlug"`
	Name      string    `json:"name"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
	Version   int       `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewRoadmap creates a roadmap with at least one node. Node and content ids
// are assigned here; incoming payload ids are ignored.
func NewRoadmap(name, slug string, nodes []NewNode) (*Roadmap, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("roadmap name is required")
	}
	if slug == "" {
		return nil, apperrors.NewValidationError("roadmap slug is required")
	}
	if len(nodes) == 0 {
		return nil, apperrors.NewValidationError("roadmap requires at least one node")
	}

	now := time.Now().UTC()
	r := &Roadmap{
		ID:        uuid.New().String(),
		Slug:      slug,
		Name:      name,
		Nodes:     make([]Node, 0, len(nodes)),
		Edges:     []Edge{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, n := range nodes {
		node, err := buildNode(n)
		if err != nil {
			return nil, err
		}
		r.Nodes = append(r.Nodes, node)
	}
	return r, nil
}

// buildNode materializes a new-node payload, assigning fresh ids and
// defaulting the optional fields
func buildNode(n NewNode) (Node, error) {
	if n.Name == "" {
		return Node{}, apperrors.NewValidationError("node name is required")
	}
	node := Node{
		ID:          uuid.New().String(),
		Name:        n.Name,
		Description: n.Description,
		Contents:    []Content{},
	}
	if n.Position != nil {
		node.Position = *n.Position
	}
	for _, c := range n.Contents {
		content, err := buildContent(c)
		if err != nil {
			return Node{}, err
		}
		node.Contents = append(node.Contents, content)
	}
	return node, nil
}

func buildContent(c NewContent) (Content, error) {
	kind, err := ParseContentKind(c.Kind)
	if err != nil {
		return Content{}, err
	}
	return Content{
		ID:    uuid.New().String(),
		Kind:  kind,
		Title: c.Title,
		URL:   c.URL,
	}, nil
}

// FindNode returns a pointer into the node slice, or nil
func (r *Roadmap) FindNode(nodeID string) *Node {
	for i := range r.Nodes {
		if r.Nodes[i].ID == nodeID {
			return &r.Nodes[i]
		}
	}
	return nil
}

// HasNode reports whether a node id is live in the roadmap
func (r *Roadmap) HasNode(nodeID string) bool {
	return r.FindNode(nodeID) != nil
}

// FindContent locates a content by id across all nodes, returning the owning
// node id
func (r *Roadmap) FindContent(contentID string) (nodeID string, content *Content) {
	for i := range r.Nodes {
		for j := range r.Nodes[i].Contents {
			if r.Nodes[i].Contents[j].ID == contentID {
				return r.Nodes[i].ID, &r.Nodes[i].Contents[j]
			}
		}
	}
	return "", nil
}

// ContentIDs returns the set of all live content ids
func (r *Roadmap) ContentIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for i := range r.Nodes {
		for _, c := range r.Nodes[i].Contents {
			ids[c.ID] = struct{}{}
		}
	}
	return ids
}

// ReplaceGraph implements full-replace update semantics: name, slug, nodes
// and edges are swapped wholesale. Incoming nodes keep their ids when
// present so edges can reference them; nodes without ids get fresh ones.
func (r *Roadmap) ReplaceGraph(name, slug string, nodes []Node, edges []Edge) error {
	if name == "" || slug == "" {
		return apperrors.NewValidationError("name and nameSlug are required")
	}
	if len(nodes) == 0 {
		return apperrors.NewValidationError("roadmap requires at least one node")
	}
	for i := range nodes {
		if nodes[i].ID == "" {
			nodes[i].ID = uuid.New().String()
		}
		if nodes[i].Contents == nil {
			nodes[i].Contents = []Content{}
		}
		for j := range nodes[i].Contents {
			if nodes[i].Contents[j].ID == "" {
				nodes[i].Contents[j].ID = uuid.New().String()
			}
			if _, err := ParseContentKind(string(nodes[i].Contents[j].Kind)); err != nil {
				return err
			}
		}
	}
	live := make(map[string]struct{}, len(nodes))
	for i := range nodes {
		live[nodes[i].ID] = struct{}{}
	}
	for i := range edges {
		if _, ok := live[edges[i].Source]; !ok {
			return apperrors.NewValidationError(fmt.Sprintf("edge source %q does not reference a node", edges[i].Source))
		}
		if _, ok := live[edges[i].Target]; !ok {
			return apperrors.NewValidationError(fmt.Sprintf("edge target %q does not reference a node", edges[i].Target))
		}
		if edges[i].ID == "" {
			edges[i].ID = uuid.New().String()
		}
	}
	r.Name = name
	r.Slug = slug
	r.Nodes = nodes
	r.Edges = edges
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteEdgesByID removes edges whose own id is in the given set
func (r *Roadmap) DeleteEdgesByID(edgeIDs []string) int {
	if len(edgeIDs) == 0 {
		return 0
	}
	doomed := make(map[string]struct{}, len(edgeIDs))
	for _, id := range edgeIDs {
		doomed[id] = struct{}{}
	}
	kept := r.Edges[:0]
	removed := 0
	for _, e := range r.Edges {
		if _, ok := doomed[e.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.Edges = kept
	if removed > 0 {
		r.UpdatedAt = time.Now().UTC()
	}
	return removed
}

// Validate checks the aggregate invariants: unique node ids and no edge
// referencing a missing node
func (r *Roadmap) Validate() error {
	seen := make(map[string]struct{}, len(r.Nodes))
	for i := range r.Nodes {
		if _, dup := seen[r.Nodes[i].ID]; dup {
			return fmt.Errorf("duplicate node id %q", r.Nodes[i].ID)
		}
		seen[r.Nodes[i].ID] = struct{}{}
	}
	for _, e := range r.Edges {
		if _, ok := seen[e.Source]; !ok {
			return fmt.Errorf("edge %q references missing source node %q", e.ID, e.Source)
		}
		if _, ok := seen[e.Target]; !ok {
			return fmt.Errorf("edge %q references missing target node %q", e.ID, e.Target)
		}
	}
	return nil
}
