package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mentorbridge/mentorbridge-api/config"
	"github.com/mentorbridge/mentorbridge-api/internal/models"
	"github.com/mentorbridge/mentorbridge-api/internal/repository"
	pkgerrors "github.com/mentorbridge/mentorbridge-api/pkg/errors"
	"github.com/mentorbridge/mentorbridge-api/pkg/httpclient"
	"github.com/mentorbridge/mentorbridge-api/pkg/logger"
	"github.com/mentorbridge/mentorbridge-api/pkg/metrics"
	"github.com/mentorbridge/mentorbridge-api/pkg/trigger"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound         = errors.New("session not found")
	ErrMentorNotFound          = errors.New("mentor not found")
	ErrAccessDenied            = errors.New("access denied")
	ErrInvalidStatusTransition = pkgerrors.ErrInvalidTransition
	ErrInvalidSessionGroup     = errors.New("invalid session group")
	ErrSessionNotCompleted     = errors.New("session not completed")
	ErrFeedbackAlreadyGiven    = errors.New("feedback already submitted")
)

// SessionService drives the session lifecycle: creation, the status state
// machine, the mentor stat side effects, and post-completion feedback.
type SessionService struct {
	sessionRepo SessionRepositoryInterface
	mentorRepo  MentorRepositoryInterface
	config      *config.Config
	httpClient  httpclient.Client
}

// NewSessionService creates a new SessionService
func NewSessionService(sessionRepo SessionRepositoryInterface, mentorRepo MentorRepositoryInterface, cfg *config.Config, httpClient httpclient.Client) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		mentorRepo:  mentorRepo,
		config:      cfg,
		httpClient:  httpClient,
	}
}

// CreateSession creates a session request in status "requested". When
// configured, it fires the requested-session trigger URL asynchronously so the
// mentor can be notified.
func (s *SessionService) CreateSession(ctx context.Context, studentID string, req *models.CreateSessionRequest) (*models.Session, error) {
	exists, err := s.mentorRepo.Exists(ctx, req.MentorID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify mentor: %w", err)
	}
	if !exists {
		return nil, ErrMentorNotFound
	}

	session, err := s.sessionRepo.Create(ctx, studentID, req)
	if err != nil {
		logger.Error("Failed to create session",
			zap.String("student_id", studentID),
			zap.String("mentor_id", req.MentorID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	metrics.SessionsCreated.WithLabelValues(string(req.SessionType)).Inc()

	if s.config.EventTriggers.SessionRequestedTriggerURL != "" {
		trigger.CallAsync(s.config.EventTriggers.SessionRequestedTriggerURL, session.ID, s.httpClient)
	}

	logger.Info("Session requested",
		zap.String("session_id", session.ID),
		zap.String("student_id", studentID),
		zap.String("mentor_id", req.MentorID),
		zap.String("session_type", string(req.SessionType)))

	return session, nil
}

// GetSessions retrieves sessions for the authenticated user filtered by group.
// Mentors see sessions addressed to them, students the ones they requested.
func (s *SessionService) GetSessions(ctx context.Context, session *models.UserSession, group string) (*models.SessionsResponse, error) {
	start := time.Now()

	statuses := models.SessionGroup(group).GetStatuses()
	if statuses == nil {
		return nil, ErrInvalidSessionGroup
	}

	var sessions []*models.Session
	var err error
	if session.IsMentor() {
		sessions, err = s.sessionRepo.GetByMentor(ctx, session.UserID, statuses)
	} else {
		sessions, err = s.sessionRepo.GetByStudent(ctx, session.UserID, statuses)
	}
	if err != nil {
		logger.Error("Failed to fetch sessions",
			zap.String("user_id", session.UserID),
			zap.String("role", session.Role),
			zap.String("group", group),
			zap.Error(err))
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}

	responseSessions := make([]models.Session, 0, len(sessions))
	for _, sess := range sessions {
		responseSessions = append(responseSessions, *sess)
	}

	duration := metrics.MeasureDuration(start)
	metrics.SessionListDuration.Observe(duration)
	metrics.SessionListTotal.WithLabelValues(group).Inc()

	logger.Info("Fetched sessions",
		zap.String("user_id", session.UserID),
		zap.String("group", group),
		zap.Int("count", len(responseSessions)),
		zap.Duration("duration", time.Since(start)))

	return &models.SessionsResponse{
		Sessions: responseSessions,
		Total:    len(responseSessions),
	}, nil
}

// GetSessionByID retrieves a single session and verifies the caller
// participates in it
func (s *SessionService) GetSessionByID(ctx context.Context, userSession *models.UserSession, sessionID string) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			logger.Warn("Session not found", zap.String("session_id", sessionID))
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	if session.MentorID != userSession.UserID && session.StudentID != userSession.UserID {
		logger.Warn("Access denied to session",
			zap.String("session_id", sessionID),
			zap.String("user_id", userSession.UserID))
		return nil, ErrAccessDenied
	}

	return session, nil
}

// AcceptSession transitions requested -> accepted and credits the mentor
func (s *SessionService) AcceptSession(ctx context.Context, mentorID, sessionID string, req *models.AcceptSessionRequest) (*models.Session, error) {
	return s.applyMentorAction(ctx, mentorID, sessionID, models.ActionAccept, repository.TransitionUpdate{
		MentorNotes: nilIfEmpty(req.MentorNotes),
		MentorPlan:  nilIfEmpty(req.MentorPlan),
	})
}

// RejectSession transitions requested -> rejected
func (s *SessionService) RejectSession(ctx context.Context, mentorID, sessionID string, req *models.RejectSessionRequest) (*models.Session, error) {
	return s.applyMentorAction(ctx, mentorID, sessionID, models.ActionReject, repository.TransitionUpdate{
		MentorNotes: nilIfEmpty(req.MentorNotes),
	})
}

// ScheduleSession transitions accepted -> scheduled with a concrete date
func (s *SessionService) ScheduleSession(ctx context.Context, mentorID, sessionID string, req *models.ScheduleSessionRequest) (*models.Session, error) {
	scheduledDate := req.ScheduledDate
	return s.applyMentorAction(ctx, mentorID, sessionID, models.ActionSchedule, repository.TransitionUpdate{
		ScheduledDate: &scheduledDate,
		MeetingLink:   nilIfEmpty(req.MeetingLink),
		MentorNotes:   nilIfEmpty(req.MentorNotes),
	})
}

// CompleteSession transitions scheduled -> completed and credits the mentor.
// When configured, it also fires the completion trigger URL asynchronously.
func (s *SessionService) CompleteSession(ctx context.Context, mentorID, sessionID string) (*models.Session, error) {
	session, err := s.applyMentorAction(ctx, mentorID, sessionID, models.ActionComplete, repository.TransitionUpdate{})
	if err != nil {
		return nil, err
	}

	if s.config.EventTriggers.SessionCompletedTriggerURL != "" {
		trigger.CallAsync(s.config.EventTriggers.SessionCompletedTriggerURL, sessionID, s.httpClient)
	}

	return session, nil
}

// CancelSession transitions requested|accepted -> cancelled. Either
// participant may cancel.
func (s *SessionService) CancelSession(ctx context.Context, userSession *models.UserSession, sessionID string, req *models.CancelSessionRequest) (*models.Session, error) {
	session, err := s.GetSessionByID(ctx, userSession, sessionID)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, session, models.ActionCancel, repository.TransitionUpdate{
		MentorNotes: nilIfEmpty(req.MentorNotes),
	})
}

// applyMentorAction fetches the session, verifies mentor ownership and applies
// the action through the transition table
func (s *SessionService) applyMentorAction(ctx context.Context, mentorID, sessionID string, action models.SessionAction, upd repository.TransitionUpdate) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			logger.Warn("Session not found", zap.String("session_id", sessionID))
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	if session.MentorID != mentorID {
		logger.Warn("Access denied to session",
			zap.String("session_id", sessionID),
			zap.String("session_mentor", session.MentorID),
			zap.String("requesting_mentor", mentorID))
		return nil, ErrAccessDenied
	}

	return s.transition(ctx, session, action, upd)
}

// transition validates the action against the current status and persists the
// transition together with its mentor stat increments
func (s *SessionService) transition(ctx context.Context, session *models.Session, action models.SessionAction, upd repository.TransitionUpdate) (*models.Session, error) {
	newStatus, ok := session.Status.Apply(action)
	if !ok {
		metrics.SessionTransitionRejects.WithLabelValues(string(session.Status), string(action)).Inc()
		logger.Warn("Invalid status transition",
			zap.String("session_id", session.ID),
			zap.String("from_status", string(session.Status)),
			zap.String("action", string(action)))
		return nil, pkgerrors.InvalidTransitionError(string(session.Status), string(action))
	}

	oldStatus := session.Status
	upd.From = oldStatus
	upd.Status = newStatus

	updated, err := s.sessionRepo.Transition(ctx, session.ID, upd, models.StatDeltasFor(newStatus))
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			// The guarded UPDATE matched no row: either the session vanished
			// or a concurrent transition already moved it out of oldStatus.
			current, fetchErr := s.sessionRepo.GetByID(ctx, session.ID)
			if fetchErr != nil {
				return nil, ErrSessionNotFound
			}
			metrics.SessionTransitionRejects.WithLabelValues(string(current.Status), string(action)).Inc()
			logger.Warn("Concurrent status transition detected",
				zap.String("session_id", session.ID),
				zap.String("expected_status", string(oldStatus)),
				zap.String("current_status", string(current.Status)))
			return nil, pkgerrors.InvalidTransitionError(string(current.Status), string(action))
		}
		logger.Error("Failed to apply session transition",
			zap.String("session_id", session.ID),
			zap.String("action", string(action)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to apply transition: %w", err)
	}

	metrics.SessionTransitions.WithLabelValues(string(oldStatus), string(newStatus)).Inc()

	logger.Info("Session status updated",
		zap.String("session_id", session.ID),
		zap.String("from_status", string(oldStatus)),
		zap.String("to_status", string(newStatus)))

	return updated, nil
}

// SubmitFeedback stores a participant's rating for a completed session
func (s *SessionService) SubmitFeedback(ctx context.Context, userSession *models.UserSession, sessionID string, req *models.SubmitFeedbackRequest) (*models.Session, error) {
	session, err := s.GetSessionByID(ctx, userSession, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status != models.StatusCompleted {
		metrics.FeedbackSubmissions.WithLabelValues(userSession.Role, "rejected").Inc()
		return nil, fmt.Errorf("%w: session status is '%s'", ErrSessionNotCompleted, session.Status)
	}

	role := models.RoleMentor
	if session.StudentID == userSession.UserID {
		role = models.RoleStudent
	}

	feedback := &models.SessionFeedback{
		Rating:      req.Rating,
		Comment:     req.Comment,
		SubmittedAt: time.Now().UTC(),
	}

	updated, err := s.sessionRepo.SetFeedback(ctx, sessionID, role, feedback)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrConflict) {
			metrics.FeedbackSubmissions.WithLabelValues(role, "duplicate").Inc()
			return nil, ErrFeedbackAlreadyGiven
		}
		logger.Error("Failed to store feedback",
			zap.String("session_id", sessionID),
			zap.String("role", role),
			zap.Error(err))
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}

	metrics.FeedbackSubmissions.WithLabelValues(role, "success").Inc()

	logger.Info("Session feedback submitted",
		zap.String("session_id", sessionID),
		zap.String("role", role),
		zap.Int("rating", req.Rating))

	return updated, nil
}

// nilIfEmpty returns nil for empty strings so COALESCE keeps existing values
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
