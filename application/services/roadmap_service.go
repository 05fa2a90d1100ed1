package services

import (
	"context"

	"go.uber.org/zap"

	"roadmaps-backend/application/ports"
	"roadmaps-backend/domain/events"
	"roadmaps-backend/domain/roadmap"
	apperrors "roadmaps-backend/pkg/errors"
	"roadmaps-backend/pkg/observability"
)

// RoadmapService orchestrates roadmap workflows: each operation is one
// load, an in-memory mutation, and one persist. Event publication happens
// after the write lands and never fails the request.
type RoadmapService struct {
	roadmaps ports.RoadmapRepository
	eventBus ports.EventBus
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewRoadmapService creates a new roadmap service
func NewRoadmapService(
	roadmaps ports.RoadmapRepository,
	eventBus ports.EventBus,
	metrics *observability.Collector,
	logger *zap.Logger,
) *RoadmapService {
	return &RoadmapService{
		roadmaps: roadmaps,
		eventBus: eventBus,
		metrics:  metrics,
		logger:   logger,
	}
}

// List returns all roadmaps
func (s *RoadmapService) List(ctx context.Context) ([]*roadmap.Roadmap, error) {
	return s.roadmaps.List(ctx)
}

// Get returns a roadmap by id
func (s *RoadmapService) Get(ctx context.Context, id string) (*roadmap.Roadmap, error) {
	return s.roadmaps.GetByID(ctx, id)
}

// GetBySlug returns a roadmap by its slug
func (s *RoadmapService) GetBySlug(ctx context.Context, slug string) (*roadmap.Roadmap, error) {
	return s.roadmaps.GetBySlug(ctx, slug)
}

// Create builds and persists a new roadmap with at least one node
func (s *RoadmapService) Create(ctx context.Context, name, slug string, nodes []roadmap.NewNode) (*roadmap.Roadmap, error) {
	if err := s.checkSlugFree(ctx, slug, ""); err != nil {
		return nil, err
	}
	r, err := roadmap.NewRoadmap(name, slug, nodes)
	if err != nil {
		return nil, err
	}
	if err := s.roadmaps.Save(ctx, r); err != nil {
		return nil, err
	}

	s.metrics.RoadmapsCreated.Inc()
	s.publish(ctx, events.NewRoadmapCreated(r.ID, r.Slug, r.Name))

	s.logger.Info("roadmap created",
		zap.String("roadmapID", r.ID),
		zap.String("slug", r.Slug),
	)
	return r, nil
}

// Replace applies full-replace update semantics to an existing roadmap
func (s *RoadmapService) Replace(ctx context.Context, id, name, slug string, nodes []roadmap.Node, edges []roadmap.Edge) (*roadmap.Roadmap, error) {
	r, err := s.roadmaps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if slug != r.Slug {
		if err := s.checkSlugFree(ctx, slug, r.ID); err != nil {
			return nil, err
		}
	}
	if err := r.ReplaceGraph(name, slug, nodes, edges); err != nil {
		return nil, err
	}
	if err := s.roadmaps.Save(ctx, r); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewRoadmapUpdated(r.ID, len(r.Nodes), len(r.Edges), 0))
	return r, nil
}

// ApplyBatch runs the batched mutation workflow. The load failing is the
// only hard failure; per-item misses inside the batch come back as skip
// records on the result.
func (s *RoadmapService) ApplyBatch(ctx context.Context, id string, batch roadmap.EditBatch) (*roadmap.Roadmap, roadmap.BatchResult, error) {
	r, err := s.roadmaps.GetByID(ctx, id)
	if err != nil {
		return nil, roadmap.BatchResult{}, err
	}
	if batch.NewSlug != "" && batch.NewSlug != r.Slug {
		if err := s.checkSlugFree(ctx, batch.NewSlug, r.ID); err != nil {
			return nil, roadmap.BatchResult{}, err
		}
	}

	result := r.ApplyBatch(batch)

	if err := s.roadmaps.Save(ctx, r); err != nil {
		return nil, roadmap.BatchResult{}, err
	}

	s.metrics.BatchesApplied.Inc()
	for _, item := range result.Skipped {
		s.metrics.BatchItemsSkipped.WithLabelValues(string(item.Reason)).Inc()
	}
	s.publish(ctx, events.NewRoadmapUpdated(r.ID, len(r.Nodes), len(r.Edges), len(result.Skipped)))

	s.logger.Info("mutation batch applied",
		zap.String("roadmapID", r.ID),
		zap.Int("nodes", len(r.Nodes)),
		zap.Int("edges", len(r.Edges)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return r, result, nil
}

// DeleteEdges removes edges by their own ids
func (s *RoadmapService) DeleteEdges(ctx context.Context, id string, edgeIDs []string) (*roadmap.Roadmap, int, error) {
	r, err := s.roadmaps.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	removed := r.DeleteEdgesByID(edgeIDs)
	if removed > 0 {
		if err := s.roadmaps.Save(ctx, r); err != nil {
			return nil, 0, err
		}
		s.publish(ctx, events.NewRoadmapUpdated(r.ID, len(r.Nodes), len(r.Edges), 0))
	}
	return r, removed, nil
}

// Delete removes a roadmap
func (s *RoadmapService) Delete(ctx context.Context, id string) error {
	if _, err := s.roadmaps.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.roadmaps.Delete(ctx, id); err != nil {
		return err
	}

	s.metrics.RoadmapsDeleted.Inc()
	s.publish(ctx, events.NewRoadmapDeleted(id))
	return nil
}

// checkSlugFree enforces slug uniqueness across roadmaps. The id of the
// aggregate being updated is exempt from the check.
func (s *RoadmapService) checkSlugFree(ctx context.Context, slug, selfID string) error {
	existing, err := s.roadmaps.GetBySlug(ctx, slug)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return apperrors.NewConflictError("slug already in use")
	}
	return nil
}

func (s *RoadmapService) publish(ctx context.Context, event events.DomainEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("event", event.EventName()),
			zap.Error(err),
		)
	}
}
