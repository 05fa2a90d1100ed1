package services

import (
	"context"

	"go.uber.org/zap"

	"roadmaps-backend/application/ports"
	"roadmaps-backend/domain/user"
	apperrors "roadmaps-backend/pkg/errors"
	"roadmaps-backend/pkg/observability"
)

// UserService handles the per-user roadmap state: favorites and seen
// contents. Toggling a present member always removes it, even when the
// target has since been deleted; only the add path checks existence, so
// stale client ids cannot grow the stored sets.
type UserService struct {
	users    ports.UserRepository
	roadmaps ports.RoadmapRepository
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	users ports.UserRepository,
	roadmaps ports.RoadmapRepository,
	metrics *observability.Collector,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:    users,
		roadmaps: roadmaps,
		metrics:  metrics,
		logger:   logger,
	}
}

// Get returns the user with stale favorite and seen ids filtered out
// against the current roadmap catalog. Filtering is read-time only and
// does not write back.
func (s *UserService) Get(ctx context.Context, userID string) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	live, err := s.liveContents(ctx)
	if err != nil {
		// Serve the raw sets rather than failing the profile read.
		s.logger.Warn("could not load roadmaps for seen filtering", zap.Error(err))
		return u, nil
	}

	u.FilterSeen(live)
	favorites := u.FavoriteRoadmaps[:0]
	for _, id := range u.FavoriteRoadmaps {
		if _, ok := live[id]; ok {
			favorites = append(favorites, id)
		}
	}
	u.FavoriteRoadmaps = favorites
	return u, nil
}

// ToggleFavorite adds the roadmap to the user's favorites, or removes it
// when already present. Returns the resulting membership.
func (s *UserService) ToggleFavorite(ctx context.Context, userID, roadmapID string) (favorited bool, err error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	// Removal must work even for a roadmap that no longer exists,
	// otherwise a stale favorite could never be untoggled.
	if !u.HasFavorite(roadmapID) {
		if _, err := s.roadmaps.GetByID(ctx, roadmapID); err != nil {
			return false, err
		}
	}

	added := u.ToggleFavorite(roadmapID)
	if err := s.users.Save(ctx, u); err != nil {
		return false, err
	}

	s.metrics.FavoriteToggles.Inc()
	return added, nil
}

// ToggleSeen flips the seen mark for one content. When marking, the
// content is located by id across all current roadmaps and an id no
// roadmap carries is NotFound. When the id is already marked it is
// removed without a lookup, so deleted contents can still be untoggled.
func (s *UserService) ToggleSeen(ctx context.Context, userID, contentID string) (seen bool, err error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	roadmapID, marked := u.SeenGroupFor(contentID)
	if !marked {
		live, err := s.liveContents(ctx)
		if err != nil {
			return false, err
		}
		for id, contents := range live {
			if _, ok := contents[contentID]; ok {
				roadmapID = id
				break
			}
		}
		if roadmapID == "" {
			return false, apperrors.NewNotFoundError("content")
		}
	}

	added := u.ToggleSeen(roadmapID, contentID)
	if err := s.users.Save(ctx, u); err != nil {
		return false, err
	}

	s.metrics.SeenToggles.Inc()
	return added, nil
}

// ReplaceSets overwrites the user's favorite and seen sets wholesale.
// A nil slice leaves the corresponding set untouched.
func (s *UserService) ReplaceSets(ctx context.Context, userID string, favorites []string, seen []user.SeenContents) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	u.ReplaceSets(favorites, seen)
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) liveContents(ctx context.Context) (map[string]map[string]struct{}, error) {
	all, err := s.roadmaps.List(ctx)
	if err != nil {
		return nil, err
	}
	live := make(map[string]map[string]struct{}, len(all))
	for _, r := range all {
		live[r.ID] = r.ContentIDs()
	}
	return live, nil
}
