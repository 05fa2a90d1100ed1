// Package ports defines the persistence and messaging interfaces the
// application services depend on. Implementations live in infrastructure.
package ports

import (
	"context"

	"roadmaps-backend/domain/events"
	"roadmaps-backend/domain/roadmap"
	"roadmaps-backend/domain/user"
)

// RoadmapRepository is the store accessor for roadmap aggregates. Every
// call is a fresh round trip to the store of record; there is no in-process
// caching.
type RoadmapRepository interface {
	// GetByID retrieves a roadmap by id; NotFound error when absent
	GetByID(ctx context.Context, id string) (*roadmap.Roadmap, error)

	// GetBySlug retrieves a roadmap by its unique slug
	GetBySlug(ctx context.Context, slug string) (*roadmap.Roadmap, error)

	// List retrieves all roadmaps
	List(ctx context.Context) ([]*roadmap.Roadmap, error)

	// Save persists the aggregate as a full replace. The write is
	// conditional on the stored version matching the aggregate's loaded
	// version; a mismatch yields a Conflict error. Save increments the
	// aggregate's version on success.
	Save(ctx context.Context, r *roadmap.Roadmap) error

	// Delete removes a roadmap
	Delete(ctx context.Context, id string) error
}

// UserRepository is the store accessor for users
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*user.User, error)

	// GetByEmail retrieves a user by unique email
	GetByEmail(ctx context.Context, email string) (*user.User, error)

	// Save persists the user as a full replace (last writer wins)
	Save(ctx context.Context, u *user.User) error
}

// EventBus publishes domain events after successful state changes
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}
