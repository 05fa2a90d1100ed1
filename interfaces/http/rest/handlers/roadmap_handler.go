// Package handlers contains the HTTP handlers for the REST API.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"roadmaps-backend/application/services"
	"roadmaps-backend/domain/roadmap"
	"roadmaps-backend/pkg/common"
	"roadmaps-backend/pkg/utils"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// RoadmapHandler handles roadmap-related HTTP requests
type RoadmapHandler struct {
	service *services.RoadmapService
	logger  *zap.Logger
}

// NewRoadmapHandler creates a new roadmap handler
func NewRoadmapHandler(service *services.RoadmapService, logger *zap.Logger) *RoadmapHandler {
	return &RoadmapHandler{service: service, logger: logger}
}

// CreateRoadmapRequest is the request body for creating a roadmap
type CreateRoadmapRequest struct {
	Name  string            `json:"name" validate:"required,min=1,max=200"`
	Slug  string            `json:"nameSlug" validate:"required,min=1,max=200"`
	Nodes []roadmap.NewNode `json:"nodes" validate:"required,min=1,dive"`
}

// ReplaceRoadmapRequest is the request body for a full replace
type ReplaceRoadmapRequest struct {
	Name  string         `json:"name" validate:"required,min=1,max=200"`
	Slug  string         `json:"nameSlug" validate:"required,min=1,max=200"`
	Nodes []roadmap.Node `json:"nodes" validate:"required,min=1"`
	Edges []roadmap.Edge `json:"edges"`
}

// DeleteEdgesRequest is the request body for edge deletion by id
type DeleteEdgesRequest struct {
	EdgeIDs []string `json:"edgeIds" validate:"required,min=1"`
}

// BatchResponse pairs the updated roadmap with the batch outcome
type BatchResponse struct {
	Roadmap *roadmap.Roadmap    `json:"roadmap"`
	Result  roadmap.BatchResult `json:"result"`
}

// List handles GET /roadmaps
func (h *RoadmapHandler) List(w http.ResponseWriter, r *http.Request) {
	roadmaps, err := h.service.List(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, roadmaps)
}

// Get handles GET /roadmaps/{roadmapID}
func (h *RoadmapHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "roadmapID")
	rm, err := h.service.Get(r.Context(), id)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, rm)
}

// GetBySlug handles GET /roadmaps/slug/{slug}
func (h *RoadmapHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	rm, err := h.service.GetBySlug(r.Context(), slug)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, rm)
}

// Create handles POST /roadmaps
func (h *RoadmapHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoadmapRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rm, err := h.service.Create(r.Context(), req.Name, req.Slug, req.Nodes)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, rm)
}

// Replace handles PUT /roadmaps/{roadmapID}
func (h *RoadmapHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req ReplaceRoadmapRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := chi.URLParam(r, "roadmapID")
	rm, err := h.service.Replace(r.Context(), id, req.Name, req.Slug, req.Nodes, req.Edges)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, rm)
}

// ApplyBatch handles PATCH /roadmaps/{roadmapID}
func (h *RoadmapHandler) ApplyBatch(w http.ResponseWriter, r *http.Request) {
	var batch roadmap.EditBatch
	if err := common.ParseJSONBody(r, &batch, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(batch); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := chi.URLParam(r, "roadmapID")
	rm, result, err := h.service.ApplyBatch(r.Context(), id, batch)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, BatchResponse{Roadmap: rm, Result: result})
}

// DeleteEdges handles DELETE /roadmaps/{roadmapID}/edges
func (h *RoadmapHandler) DeleteEdges(w http.ResponseWriter, r *http.Request) {
	var req DeleteEdgesRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := chi.URLParam(r, "roadmapID")
	rm, removed, err := h.service.DeleteEdges(r.Context(), id, req.EdgeIDs)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"roadmap": rm,
		"removed": removed,
	})
}

// Delete handles DELETE /roadmaps/{roadmapID}
func (h *RoadmapHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "roadmapID")
	if err := h.service.Delete(r.Context(), id); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
