package services

import (
	"context"

	"github.com/mentorbridge/mentorbridge-api/internal/models"
	"github.com/mentorbridge/mentorbridge-api/internal/repository"
)

// SessionRepositoryInterface defines the session data access the services need
type SessionRepositoryInterface interface {
	Create(ctx context.Context, studentID string, req *models.CreateSessionRequest) (*models.Session, error)
	GetByID(ctx context.Context, id string) (*models.Session, error)
	GetByMentor(ctx context.Context, mentorID string, statuses []models.SessionStatus) ([]*models.Session, error)
	GetByStudent(ctx context.Context, studentID string, statuses []models.SessionStatus) ([]*models.Session, error)
	Transition(ctx context.Context, id string, upd repository.TransitionUpdate, deltas models.StatDeltas) (*models.Session, error)
	SetFeedback(ctx context.Context, id, role string, feedback *models.SessionFeedback) (*models.Session, error)
}

// MentorRepositoryInterface defines the mentor data access the services need
type MentorRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*models.Mentor, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// RoadmapRepositoryInterface defines the roadmap data access the services need
type RoadmapRepositoryInterface interface {
	GetByYearLanguage(ctx context.Context, year int, language string) (*models.Roadmap, error)
	GetOrCreate(ctx context.Context, year int, language string) (*models.Roadmap, error)
	SaveSteps(ctx context.Context, roadmapID string, steps []models.RoadmapStep) error
}

// RoadmapCacheInterface defines the read-through cache the roadmap service uses
type RoadmapCacheInterface interface {
	Get(ctx context.Context, year int, language string) (*models.Roadmap, error)
	Invalidate(year int, language string)
	IsReady() bool
}

// SessionServiceInterface defines the interface for session lifecycle operations
type SessionServiceInterface interface {
	CreateSession(ctx context.Context, studentID string, req *models.CreateSessionRequest) (*models.Session, error)
	GetSessions(ctx context.Context, session *models.UserSession, group string) (*models.SessionsResponse, error)
	GetSessionByID(ctx context.Context, session *models.UserSession, sessionID string) (*models.Session, error)
	AcceptSession(ctx context.Context, mentorID, sessionID string, req *models.AcceptSessionRequest) (*models.Session, error)
	RejectSession(ctx context.Context, mentorID, sessionID string, req *models.RejectSessionRequest) (*models.Session, error)
	ScheduleSession(ctx context.Context, mentorID, sessionID string, req *models.ScheduleSessionRequest) (*models.Session, error)
	CompleteSession(ctx context.Context, mentorID, sessionID string) (*models.Session, error)
	CancelSession(ctx context.Context, session *models.UserSession, sessionID string, req *models.CancelSessionRequest) (*models.Session, error)
	SubmitFeedback(ctx context.Context, session *models.UserSession, sessionID string, req *models.SubmitFeedbackRequest) (*models.Session, error)
}

// RoadmapServiceInterface defines the interface for roadmap content management
type RoadmapServiceInterface interface {
	GetRoadmap(ctx context.Context, year int, language string) (*models.Roadmap, error)
	CreateStep(ctx context.Context, req *models.CreateStepRequest) (*models.StepWriteResult, error)
	UpdateStep(ctx context.Context, stepID string, req *models.UpdateStepRequest) (*models.StepWriteResult, error)
	DeleteStep(ctx context.Context, year int, language, stepID string) (*models.StepWriteResult, error)
}

// MentorServiceInterface defines the interface for mentor profile reads
type MentorServiceInterface interface {
	GetMentorByID(ctx context.Context, id string) (*models.Mentor, error)
	GetMentorInternal(ctx context.Context, id string) (*models.Mentor, error)
}

// Ensure services implement their interfaces
var _ SessionServiceInterface = (*SessionService)(nil)
var _ RoadmapServiceInterface = (*RoadmapService)(nil)
var _ MentorServiceInterface = (*MentorService)(nil)
