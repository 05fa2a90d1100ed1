// Package user holds the user entity and its set-membership relations:
// favorite roadmaps and seen contents grouped by roadmap.
package user

import (
	"time"

	"github.com/google/uuid"

	apperrors "roadmaps-backend/pkg/errors"
)

// SeenContents holds the content ids a user marked as seen within one
// roadmap
type SeenContents struct {
	RoadmapID  string   `json:"roadmapId" dynamodbav:"RoadmapID"`
	ContentIDs []string `json:"contentIds" dynamodbav:"ContentIDs"`
}

// User is the account entity. PasswordHash and Admin never serialize into
// API responses.
type User struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	PasswordHash     string         `json:"-"`
	Admin            bool           `json:"-"`
	FavoriteRoadmaps []string       `json:"favoriteRoadmaps"`
	SeenContents     []SeenContents `json:"seenContents"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// New creates a user with an assigned id and empty relation sets
func New(name, email, passwordHash string) (*User, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if email == "" {
		return nil, apperrors.NewValidationError("email is required")
	}
	if passwordHash == "" {
		return nil, apperrors.NewValidationError("password hash is required")
	}
	now := time.Now().UTC()
	return &User{
		ID:               uuid.New().String(),
		Name:             name,
		Email:            email,
		PasswordHash:     passwordHash,
		FavoriteRoadmaps: []string{},
		SeenContents:     []SeenContents{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// ToggleFavorite flips roadmapID's membership in the favorite set and
// reports whether it was added
func (u *User) ToggleFavorite(roadmapID string) (added bool) {
	for i, id := range u.FavoriteRoadmaps {
		if id == roadmapID {
			u.FavoriteRoadmaps = append(u.FavoriteRoadmaps[:i], u.FavoriteRoadmaps[i+1:]...)
			u.UpdatedAt = time.Now().UTC()
			return false
		}
	}
	u.FavoriteRoadmaps = append(u.FavoriteRoadmaps, roadmapID)
	u.UpdatedAt = time.Now().UTC()
	return true
}

// HasFavorite reports membership in the favorite set
func (u *User) HasFavorite(roadmapID string) bool {
	for _, id := range u.FavoriteRoadmaps {
		if id == roadmapID {
			return true
		}
	}
	return false
}

// HasSeen reports whether contentID is marked seen under roadmapID
func (u *User) HasSeen(roadmapID, contentID string) bool {
	for _, sc := range u.SeenContents {
		if sc.RoadmapID != roadmapID {
			continue
		}
		for _, id := range sc.ContentIDs {
			if id == contentID {
				return true
			}
		}
	}
	return false
}

// SeenGroupFor returns the roadmap id under which contentID is marked
// seen, if any
func (u *User) SeenGroupFor(contentID string) (roadmapID string, ok bool) {
	for _, sc := range u.SeenContents {
		for _, id := range sc.ContentIDs {
			if id == contentID {
				return sc.RoadmapID, true
			}
		}
	}
	return "", false
}

// ToggleSeen flips contentID's membership in the seen set under roadmapID.
// Emptied roadmap groups are dropped.
func (u *User) ToggleSeen(roadmapID, contentID string) (added bool) {
	u.UpdatedAt = time.Now().UTC()
	for i := range u.SeenContents {
		sc := &u.SeenContents[i]
		if sc.RoadmapID != roadmapID {
			continue
		}
		for j, id := range sc.ContentIDs {
			if id == contentID {
				sc.ContentIDs = append(sc.ContentIDs[:j], sc.ContentIDs[j+1:]...)
				if len(sc.ContentIDs) == 0 {
					u.SeenContents = append(u.SeenContents[:i], u.SeenContents[i+1:]...)
				}
				return false
			}
		}
		sc.ContentIDs = append(sc.ContentIDs, contentID)
		return true
	}
	u.SeenContents = append(u.SeenContents, SeenContents{
		RoadmapID:  roadmapID,
		ContentIDs: []string{contentID},
	})
	return true
}

// ReplaceSets bulk-replaces the favorite and seen relations, deduplicating
// to preserve set semantics. A nil slice leaves the corresponding relation
// untouched.
func (u *User) ReplaceSets(favorites []string, seen []SeenContents) {
	if favorites != nil {
		u.FavoriteRoadmaps = dedupe(favorites)
	}
	if seen != nil {
		replaced := make([]SeenContents, 0, len(seen))
		byRoadmap := make(map[string]int)
		for _, sc := range seen {
			idx, ok := byRoadmap[sc.RoadmapID]
			if !ok {
				byRoadmap[sc.RoadmapID] = len(replaced)
				replaced = append(replaced, SeenContents{RoadmapID: sc.RoadmapID, ContentIDs: dedupe(sc.ContentIDs)})
				continue
			}
			replaced[idx].ContentIDs = dedupe(append(replaced[idx].ContentIDs, sc.ContentIDs...))
		}
		u.SeenContents = replaced
	}
	u.UpdatedAt = time.Now().UTC()
}

// FilterSeen drops seen-content ids that no longer exist in the given live
// sets, keyed by roadmap id. Stale ids from storage are never trusted.
func (u *User) FilterSeen(liveContents map[string]map[string]struct{}) {
	filtered := u.SeenContents[:0]
	for _, sc := range u.SeenContents {
		live, ok := liveContents[sc.RoadmapID]
		if !ok {
			continue
		}
		keptIDs := sc.ContentIDs[:0]
		for _, id := range sc.ContentIDs {
			if _, alive := live[id]; alive {
				keptIDs = append(keptIDs, id)
			}
		}
		if len(keptIDs) > 0 {
			sc.ContentIDs = keptIDs
			filtered = append(filtered, sc)
		}
	}
	u.SeenContents = filtered
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
