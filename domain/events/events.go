// Package events defines the domain events published after successful
// state changes.
package events

import "time"

// DomainEvent is implemented by every event published to the event bus
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
	AggregateKey() string
}

// BaseEvent carries the fields shared by all events
type BaseEvent struct {
	AggregateID string    `json:"aggregateId"`
	EventType   string    `json:"eventType"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) EventName() string     { return e.EventType }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) AggregateKey() string  { return e.AggregateID }

// RoadmapCreated is published after a roadmap is first persisted
type RoadmapCreated struct {
	BaseEvent
	RoadmapID string `json:"roadmapId"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
}

// RoadmapUpdated is published after a mutation batch or full replace lands
type RoadmapUpdated struct {
	BaseEvent
	RoadmapID    string `json:"roadmapId"`
	NodeCount    int    `json:"nodeCount"`
	EdgeCount    int    `json:"edgeCount"`
	SkippedItems int    `json:"skippedItems"`
}

// RoadmapDeleted is published after a roadmap is removed
type RoadmapDeleted struct {
	BaseEvent
	RoadmapID string `json:"roadmapId"`
}

// UserRegistered is published after signup completes
type UserRegistered struct {
	BaseEvent
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// NewRoadmapCreated builds a RoadmapCreated event
func NewRoadmapCreated(roadmapID, slug, name string) RoadmapCreated {
	return RoadmapCreated{
		BaseEvent: BaseEvent{
			AggregateID: roadmapID,
			EventType:   "roadmap.created",
			Timestamp:   time.Now().UTC(),
		},
		RoadmapID: roadmapID,
		Slug:      slug,
		Name:      name,
	}
}

// NewRoadmapUpdated builds a RoadmapUpdated event
func NewRoadmapUpdated(roadmapID string, nodeCount, edgeCount, skipped int) RoadmapUpdated {
	return RoadmapUpdated{
		BaseEvent: BaseEvent{
			AggregateID: roadmapID,
			EventType:   "roadmap.updated",
			Timestamp:   time.Now().UTC(),
		},
		RoadmapID:    roadmapID,
		NodeCount:    nodeCount,
		EdgeCount:    edgeCount,
		SkippedItems: skipped,
	}
}

// NewRoadmapDeleted builds a RoadmapDeleted event
func NewRoadmapDeleted(roadmapID string) RoadmapDeleted {
	return RoadmapDeleted{
		BaseEvent: BaseEvent{
			AggregateID: roadmapID,
			EventType:   "roadmap.deleted",
			Timestamp:   time.Now().UTC(),
		},
		RoadmapID: roadmapID,
	}
}

// NewUserRegistered builds a UserRegistered event
func NewUserRegistered(userID, email string) UserRegistered {
	return UserRegistered{
		BaseEvent: BaseEvent{
			AggregateID: userID,
			EventType:   "user.registered",
			Timestamp:   time.Now().UTC(),
		},
		UserID: userID,
		Email:  email,
	}
}
