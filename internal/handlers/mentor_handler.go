package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentorbridge/mentorbridge-api/internal/services"
)

// MentorHandler handles mentor profile endpoints
type MentorHandler struct {
	service services.MentorServiceInterface
}

// NewMentorHandler creates a new MentorHandler
func NewMentorHandler(service services.MentorServiceInterface) *MentorHandler {
	return &MentorHandler{
		service: service,
	}
}

// GetMentorByID handles GET /api/v1/mentors/:id
// Returns a mentor's public profile with aggregate stats
func (h *MentorHandler) GetMentorByID(c *gin.Context) {
	mentorID := c.Param("id")
	if mentorID == "" {
		respondError(c, http.StatusBadRequest, "Invalid mentor ID", nil)
		return
	}

	mentor, err := h.service.GetMentorByID(c.Request.Context(), mentorID)
	if err != nil {
		if errors.Is(err, services.ErrMentorNotFound) {
			respondError(c, http.StatusNotFound, "Mentor not found", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to fetch mentor", err)
		return
	}

	c.JSON(http.StatusOK, mentor)
}

// GetInternalMentorByID handles GET /api/v1/internal/mentors/:id
// Token-authenticated endpoint for internal automations; returns the mentor
// even when the profile is hidden from the public listing
func (h *MentorHandler) GetInternalMentorByID(c *gin.Context) {
	mentorID := c.Param("id")
	if mentorID == "" {
		respondError(c, http.StatusBadRequest, "Invalid mentor ID", nil)
		return
	}

	mentor, err := h.service.GetMentorInternal(c.Request.Context(), mentorID)
	if err != nil {
		if errors.Is(err, services.ErrMentorNotFound) {
			respondError(c, http.StatusNotFound, "Mentor not found", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to fetch mentor", err)
		return
	}

	c.JSON(http.StatusOK, mentor)
}
