package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentorbridge/mentorbridge-api/internal/middleware"
	"github.com/mentorbridge/mentorbridge-api/internal/models"
	"github.com/mentorbridge/mentorbridge-api/internal/services"
)

// SessionHandler handles mentoring session endpoints
type SessionHandler struct {
	service services.SessionServiceInterface
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(service services.SessionServiceInterface) *SessionHandler {
	return &SessionHandler{
		service: service,
	}
}

// CreateSession handles POST /api/v1/sessions
// A student requests a session with a mentor
func (h *SessionHandler) CreateSession(c *gin.Context) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req models.CreateSessionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", ParseValidationErrors(bindErr), bindErr)
		return
	}

	created, err := h.service.CreateSession(c.Request.Context(), session.UserID, &req)
	if err != nil {
		if errors.Is(err, services.ErrMentorNotFound) {
			respondError(c, http.StatusNotFound, "Mentor not found", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to create session", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetSessions handles GET /api/v1/sessions
// Returns the caller's sessions filtered by group (active/past)
func (h *SessionHandler) GetSessions(c *gin.Context) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	group := c.Query("group")
	if group == "" {
		respondError(c, http.StatusBadRequest, "Missing required parameter: group", nil)
		return
	}

	response, err := h.service.GetSessions(c.Request.Context(), session, group)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSessionGroup) {
			respondError(c, http.StatusBadRequest, "Invalid group value. Must be 'active' or 'past'", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to fetch sessions", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetSessionByID handles GET /api/v1/sessions/:id
func (h *SessionHandler) GetSessionByID(c *gin.Context) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	sessionID := c.Param("id")
	if sessionID == "" {
		respondError(c, http.StatusBadRequest, "Invalid session ID", nil)
		return
	}

	result, err := h.service.GetSessionByID(c.Request.Context(), session, sessionID)
	if err != nil {
		h.handleSessionError(c, err, "Failed to fetch session")
		return
	}

	c.JSON(http.StatusOK, result)
}

// AcceptSession handles POST /api/v1/sessions/:id/accept
func (h *SessionHandler) AcceptSession(c *gin.Context) {
	session, sessionID, ok := h.mentorAndID(c)
	if !ok {
		return
	}

	var req models.AcceptSessionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", ParseValidationErrors(bindErr), bindErr)
		return
	}

	result, err := h.service.AcceptSession(c.Request.Context(), session.UserID, sessionID, &req)
	if err != nil {
		h.handleSessionError(c, err, "Failed to accept session")
		return
	}

	c.JSON(http.StatusOK, result)
}

// RejectSession handles POST /api/v1/sessions/:id/reject
func (h *SessionHandler) RejectSession(c *gin.Context) {
	session, sessionID, ok := h.mentorAndID(c)
	if !ok {
		return
	}

	var req models.RejectSessionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", ParseValidationErrors(bindErr), bindErr)
		return
	}

	result, err := h.service.RejectSession(c.Request.Context(), session.UserID, sessionID, &req)
	if err != nil {
		h.handleSessionError(c, err, "Failed to reject session")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ScheduleSession handles POST /api/v1/sessions/:id/schedule
func (h *SessionHandler) ScheduleSession(c *gin.Context) {
	session, sessionID, ok := h.mentorAndID(c)
	if !ok {
		return
	}

	var req models.ScheduleSessionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", ParseValidationErrors(bindErr), bindErr)
		return
	}

	result, err := h.service.ScheduleSession(c.Request.Context(), session.UserID, sessionID, &req)
	if err != nil {
		h.handleSessionError(c, err, "Failed to schedule session")
		return
	}

	c.JSON(http.StatusOK, result)
}

// CompleteSession handles POST /api/v1/sessions/:id/complete
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	session, sessionID, ok := h.mentorAndID(c)
	if !ok {
		return
	}

	result, err := h.service.CompleteSession(c.Request.Context(), session.UserID, sessionID)
	if err != nil {
		h.handleSessionError(c, err, "Failed to complete session")
		return
	}

	c.JSON(http.StatusOK, result)
}

// CancelSession handles POST /api/v1/sessions/:id/cancel
// Either participant may cancel before the session is scheduled
func (h *SessionHandler) CancelSession(c *gin.Context) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	sessionID := c.Param("id")
	if sessionID == "" {
		respondError(c, http.StatusBadRequest, "Invalid session ID", nil)
		return
	}

	var req models.CancelSessionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", ParseValidationErrors(bindErr), bindErr)
		return
	}

	result, err := h.service.CancelSession(c.Request.Context(), session, sessionID, &req)
	if err != nil {
		h.handleSessionError(c, err, "Failed to cancel session")
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitFeedback handles POST /api/v1/sessions/:id/feedback
func (h *SessionHandler) SubmitFeedback(c *gin.Context) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	sessionID := c.Param("id")
	if sessionID == "" {
		respondError(c, http.StatusBadRequest, "Invalid session ID", nil)
		return
	}

	var req models.SubmitFeedbackRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", ParseValidationErrors(bindErr), bindErr)
		return
	}

	result, err := h.service.SubmitFeedback(c.Request.Context(), session, sessionID, &req)
	if err != nil {
		h.handleSessionError(c, err, "Failed to submit feedback")
		return
	}

	c.JSON(http.StatusOK, result)
}

// mentorAndID extracts the authenticated session and the :id route param for
// mentor-only actions. Writes the error response itself when either is missing.
func (h *SessionHandler) mentorAndID(c *gin.Context) (*models.UserSession, string, bool) {
	session, err := middleware.GetUserSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return nil, "", false
	}

	sessionID := c.Param("id")
	if sessionID == "" {
		respondError(c, http.StatusBadRequest, "Invalid session ID", nil)
		return nil, "", false
	}

	return session, sessionID, true
}

// handleSessionError maps service errors to HTTP status codes
func (h *SessionHandler) handleSessionError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		respondError(c, http.StatusNotFound, "Session not found", err)
	case errors.Is(err, services.ErrAccessDenied):
		respondError(c, http.StatusForbidden, "Access denied", err)
	case errors.Is(err, services.ErrInvalidStatusTransition):
		respondError(c, http.StatusConflict, "Action not allowed in the session's current status", err)
	case errors.Is(err, services.ErrSessionNotCompleted):
		respondError(c, http.StatusConflict, "Feedback is only accepted for completed sessions", err)
	case errors.Is(err, services.ErrFeedbackAlreadyGiven):
		respondError(c, http.StatusConflict, "Feedback already submitted", err)
	default:
		respondError(c, http.StatusInternalServerError, fallback, err)
	}
}
