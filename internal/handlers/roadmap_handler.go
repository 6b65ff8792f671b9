package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mentorbridge/mentorbridge-api/internal/models"
	"github.com/mentorbridge/mentorbridge-api/internal/services"
)

// RoadmapHandler handles learning roadmap endpoints
type RoadmapHandler struct {
	service services.RoadmapServiceInterface
}

// NewRoadmapHandler creates a new RoadmapHandler
func NewRoadmapHandler(service services.RoadmapServiceInterface) *RoadmapHandler {
	return &RoadmapHandler{
		service: service,
	}
}

// GetRoadmap handles GET /api/v1/roadmaps/:year/:language
func (h *RoadmapHandler) GetRoadmap(c *gin.Context) {
	year, ok := h.parseYear(c)
	if !ok {
		return
	}

	language := c.Param("language")

	roadmap, err := h.service.GetRoadmap(c.Request.Context(), year, language)
	if err != nil {
		h.handleRoadmapError(c, err, "Failed to fetch roadmap")
		return
	}

	c.JSON(http.StatusOK, roadmap)
}

// CreateStep handles POST /api/v1/admin/roadmaps/steps
// Admin-only: adds a step to one roadmap, or to all languages at once
func (h *RoadmapHandler) CreateStep(c *gin.Context) {
	var req models.CreateStepRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", ParseValidationErrors(bindErr), bindErr)
		return
	}

	result, err := h.service.CreateStep(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrPartialFanout) {
			// Partial failure: report what was applied so the caller can retry
			attachError(c, err)
			c.JSON(http.StatusMultiStatus, result)
			return
		}
		h.handleRoadmapError(c, err, "Failed to create step")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// UpdateStep handles PUT /api/v1/admin/roadmaps/steps/:stepId
// Admin-only: edits a step, handling scope changes between one language and all
func (h *RoadmapHandler) UpdateStep(c *gin.Context) {
	stepID := c.Param("stepId")
	if stepID == "" {
		respondError(c, http.StatusBadRequest, "Invalid step ID", nil)
		return
	}

	var req models.UpdateStepRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", ParseValidationErrors(bindErr), bindErr)
		return
	}

	result, err := h.service.UpdateStep(c.Request.Context(), stepID, &req)
	if err != nil {
		if errors.Is(err, services.ErrPartialFanout) {
			attachError(c, err)
			c.JSON(http.StatusMultiStatus, result)
			return
		}
		h.handleRoadmapError(c, err, "Failed to update step")
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteStep handles DELETE /api/v1/admin/roadmaps/:year/:language/steps/:stepId
// Admin-only: removes a step; all-languages steps are removed everywhere
func (h *RoadmapHandler) DeleteStep(c *gin.Context) {
	year, ok := h.parseYear(c)
	if !ok {
		return
	}

	language := c.Param("language")
	stepID := c.Param("stepId")
	if stepID == "" {
		respondError(c, http.StatusBadRequest, "Invalid step ID", nil)
		return
	}

	result, err := h.service.DeleteStep(c.Request.Context(), year, language, stepID)
	if err != nil {
		if errors.Is(err, services.ErrPartialFanout) {
			attachError(c, err)
			c.JSON(http.StatusMultiStatus, result)
			return
		}
		h.handleRoadmapError(c, err, "Failed to delete step")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *RoadmapHandler) parseYear(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 || year > 4 {
		respondError(c, http.StatusBadRequest, "Year must be a number between 1 and 4", err)
		return 0, false
	}
	return year, true
}

// handleRoadmapError maps service errors to HTTP status codes
func (h *RoadmapHandler) handleRoadmapError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrUnsupportedLanguage):
		respondError(c, http.StatusBadRequest, "Unsupported language", err)
	case errors.Is(err, services.ErrRoadmapNotFound):
		respondError(c, http.StatusNotFound, "Roadmap not found", err)
	case errors.Is(err, services.ErrStepNotFound):
		respondError(c, http.StatusNotFound, "Step not found", err)
	default:
		respondError(c, http.StatusInternalServerError, fallback, err)
	}
}
