// Package memory provides in-memory repository implementations used by
// tests and local development.
package memory

import (
	"context"
	"sync"

	"roadmaps-backend/application/ports"
	"roadmaps-backend/domain/roadmap"
	"roadmaps-backend/domain/user"
	apperrors "roadmaps-backend/pkg/errors"
)

// RoadmapRepository is an in-memory ports.RoadmapRepository with the same
// version-conditional Save semantics as the DynamoDB implementation.
type RoadmapRepository struct {
	mu       sync.RWMutex
	roadmaps map[string]*roadmap.Roadmap
}

// NewRoadmapRepository creates an empty in-memory roadmap repository
func NewRoadmapRepository() *RoadmapRepository {
	return &RoadmapRepository{roadmaps: make(map[string]*roadmap.Roadmap)}
}

func (r *RoadmapRepository) GetByID(ctx context.Context, id string) (*roadmap.Roadmap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.roadmaps[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("roadmap")
	}
	return copyRoadmap(stored), nil
}

func (r *RoadmapRepository) GetBySlug(ctx context.Context, slug string) (*roadmap.Roadmap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, stored := range r.roadmaps {
		if stored.Slug == slug {
			return copyRoadmap(stored), nil
		}
	}
	return nil, apperrors.NewNotFoundError("roadmap")
}

func (r *RoadmapRepository) List(ctx context.Context) ([]*roadmap.Roadmap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*roadmap.Roadmap, 0, len(r.roadmaps))
	for _, stored := range r.roadmaps {
		all = append(all, copyRoadmap(stored))
	}
	return all, nil
}

func (r *RoadmapRepository) Save(ctx context.Context, rm *roadmap.Roadmap) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.roadmaps[rm.ID]; ok && stored.Version != rm.Version {
		return apperrors.NewConflictError("roadmap was modified concurrently")
	}
	rm.Version++
	r.roadmaps[rm.ID] = copyRoadmap(rm)
	return nil
}

func (r *RoadmapRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.roadmaps, id)
	return nil
}

func copyRoadmap(src *roadmap.Roadmap) *roadmap.Roadmap {
	dst := *src
	dst.Nodes = make([]roadmap.Node, len(src.Nodes))
	for i, n := range src.Nodes {
		dst.Nodes[i] = n
		dst.Nodes[i].Contents = append([]roadmap.Content(nil), n.Contents...)
	}
	dst.Edges = append([]roadmap.Edge(nil), src.Edges...)
	return &dst
}

// UserRepository is an in-memory ports.UserRepository.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*user.User
}

// NewUserRepository creates an empty in-memory user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*user.User)}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user")
	}
	return copyUser(stored), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, stored := range r.users {
		if stored.Email == email {
			return copyUser(stored), nil
		}
	}
	return nil, apperrors.NewNotFoundError("user")
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[u.ID] = copyUser(u)
	return nil
}

func copyUser(src *user.User) *user.User {
	dst := *src
	dst.FavoriteRoadmaps = append([]string(nil), src.FavoriteRoadmaps...)
	dst.SeenContents = make([]user.SeenContents, len(src.SeenContents))
	for i, s := range src.SeenContents {
		dst.SeenContents[i] = user.SeenContents{
			RoadmapID:  s.RoadmapID,
			ContentIDs: append([]string(nil), s.ContentIDs...),
		}
	}
	return &dst
}

var (
	_ ports.RoadmapRepository = (*RoadmapRepository)(nil)
	_ ports.UserRepository    = (*UserRepository)(nil)
)
