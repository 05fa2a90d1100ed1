package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"roadmaps-backend/application/services"
	"roadmaps-backend/domain/user"
	"roadmaps-backend/pkg/auth"
	"roadmaps-backend/pkg/common"
	"roadmaps-backend/pkg/utils"
)

// UserHandler handles the current-user endpoints
type UserHandler struct {
	service *services.UserService
	logger  *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

// ToggleFavoriteRequest is the request body for the favorite toggle
type ToggleFavoriteRequest struct {
	RoadmapID string `json:"roadmapId" validate:"required"`
}

// ToggleSeenRequest is the request body for the seen toggle
type ToggleSeenRequest struct {
	ContentID string `json:"contentId" validate:"required"`
}

// ReplaceSetsRequest is the request body for the bulk replace. Nil fields
// leave the corresponding set untouched.
type ReplaceSetsRequest struct {
	FavoriteRoadmaps []string            `json:"favoriteRoadmaps"`
	SeenContents     []user.SeenContents `json:"seenContents"`
}

// ToggleResponse reports the resulting membership after a toggle
type ToggleResponse struct {
	Active bool `json:"active"`
}

// Me handles GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.service.Get(r.Context(), userCtx.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, u)
}

// ReplaceSets handles PUT /users/me
func (h *UserHandler) ReplaceSets(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ReplaceSetsRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.service.ReplaceSets(r.Context(), userCtx.UserID, req.FavoriteRoadmaps, req.SeenContents)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, u)
}

// ToggleFavorite handles POST /users/me/favorites/toggle
func (h *UserHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ToggleFavoriteRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	active, err := h.service.ToggleFavorite(r.Context(), userCtx.UserID, req.RoadmapID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, ToggleResponse{Active: active})
}

// ToggleSeen handles POST /users/me/seen/toggle
func (h *UserHandler) ToggleSeen(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ToggleSeenRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	active, err := h.service.ToggleSeen(r.Context(), userCtx.UserID, req.ContentID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, ToggleResponse{Active: active})
}
