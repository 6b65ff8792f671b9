package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// SessionStatus represents the lifecycle status of a mentoring session
type SessionStatus string

const (
	StatusRequested SessionStatus = "requested"
	StatusAccepted  SessionStatus = "accepted"
	StatusScheduled SessionStatus = "scheduled"
	StatusCompleted SessionStatus = "completed"
	StatusCancelled SessionStatus = "cancelled"
	StatusRejected  SessionStatus = "rejected"
)

// SessionAction is a lifecycle action a mentor applies to a session
type SessionAction string

const (
	ActionAccept   SessionAction = "accept"
	ActionReject   SessionAction = "reject"
	ActionSchedule SessionAction = "schedule"
	ActionComplete SessionAction = "complete"
	ActionCancel   SessionAction = "cancel"
)

// SessionType classifies what a mentoring session is about
type SessionType string

const (
	TypeHigherEducation SessionType = "higher-education"
	TypeCareerGuidance  SessionType = "career-guidance"
	TypeTechnical       SessionType = "technical"
	TypePlacementPrep   SessionType = "placement-prep"
	TypeStudyAbroad     SessionType = "study-abroad"
)

// ActiveStatuses are statuses shown on the active sessions page
var ActiveStatuses = []SessionStatus{StatusRequested, StatusAccepted, StatusScheduled}

// PastStatuses are statuses shown on the past sessions page
var PastStatuses = []SessionStatus{StatusCompleted, StatusCancelled, StatusRejected}

// transitions is the lifecycle table: which action is allowed in which status,
// and the status it leads to. Any (status, action) pair missing here is invalid.
var transitions = map[SessionStatus]map[SessionAction]SessionStatus{
	StatusRequested: {
		ActionAccept: StatusAccepted,
		ActionReject: StatusRejected,
		ActionCancel: StatusCancelled,
	},
	StatusAccepted: {
		ActionSchedule: StatusScheduled,
		ActionCancel:   StatusCancelled,
	},
	StatusScheduled: {
		ActionComplete: StatusCompleted,
	},
}

// IsTerminalStatus returns true if the status is terminal (no further transitions allowed)
func (s SessionStatus) IsTerminalStatus() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRejected
}

// CanApply checks whether the action is a valid transition out of this status
func (s SessionStatus) CanApply(action SessionAction) bool {
	_, ok := transitions[s][action]
	return ok
}

// Apply returns the status the action leads to from this status.
// The boolean is false when the transition is not allowed.
func (s SessionStatus) Apply(action SessionAction) (SessionStatus, bool) {
	next, ok := transitions[s][action]
	return next, ok
}

// ValidAction reports whether the string names a known lifecycle action
func ValidAction(action string) bool {
	switch SessionAction(action) {
	case ActionAccept, ActionReject, ActionSchedule, ActionComplete, ActionCancel:
		return true
	default:
		return false
	}
}

// SessionFeedback is a post-completion rating from one participant
type SessionFeedback struct {
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Session represents one mentoring engagement between a student and a mentor
type Session struct {
	ID              string           `json:"id"`
	StudentID       string           `json:"studentId"`
	MentorID        string           `json:"mentorId"`
	SessionType     SessionType      `json:"sessionType"`
	Topic           string           `json:"topic"`
	Status          SessionStatus    `json:"status"`
	ProposedDates   []time.Time      `json:"proposedDates"`
	ScheduledDate   *time.Time       `json:"scheduledDate,omitempty"`
	MeetingLink     *string          `json:"meetingLink,omitempty"`
	MentorNotes     *string          `json:"mentorNotes,omitempty"`
	MentorPlan      *string          `json:"mentorPlan,omitempty"`
	StudentFeedback *SessionFeedback `json:"studentFeedback,omitempty"`
	MentorFeedback  *SessionFeedback `json:"mentorFeedback,omitempty"`
	RequestedAt     time.Time        `json:"requestedAt"`
	AcceptedAt      *time.Time       `json:"acceptedAt,omitempty"`
	ScheduledAt     *time.Time       `json:"scheduledAt,omitempty"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
	CancelledAt     *time.Time       `json:"cancelledAt,omitempty"`
	RejectedAt      *time.Time       `json:"rejectedAt,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// CreateSessionRequest is the payload a student submits to request a session
type CreateSessionRequest struct {
	MentorID      string      `json:"mentorId" binding:"required,uuid"`
	SessionType   SessionType `json:"sessionType" binding:"required,oneof=higher-education career-guidance technical placement-prep study-abroad"`
	Topic         string      `json:"topic" binding:"required,min=3,max=300"`
	ProposedDates []time.Time `json:"proposedDates" binding:"required,min=1,max=5"`
}

// Per-action payloads. Each action only accepts the fields its transition
// is allowed to set, so illegal merges are unrepresentable.

// AcceptSessionRequest is the payload for the accept action
type AcceptSessionRequest struct {
	MentorNotes string `json:"mentorNotes" binding:"max=2000"`
	MentorPlan  string `json:"mentorPlan" binding:"max=5000"`
}

// RejectSessionRequest is the payload for the reject action
type RejectSessionRequest struct {
	MentorNotes string `json:"mentorNotes" binding:"max=2000"`
}

// CancelSessionRequest is the payload for the cancel action
type CancelSessionRequest struct {
	MentorNotes string `json:"mentorNotes" binding:"max=2000"`
}

// ScheduleSessionRequest is the payload for the schedule action
type ScheduleSessionRequest struct {
	ScheduledDate time.Time `json:"scheduledDate" binding:"required"`
	MeetingLink   string    `json:"meetingLink" binding:"omitempty,url,max=500"`
	MentorNotes   string    `json:"mentorNotes" binding:"max=2000"`
}

// SubmitFeedbackRequest is the payload for post-completion feedback
type SubmitFeedbackRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// SessionsResponse is the response for listing sessions
type SessionsResponse struct {
	Sessions []Session `json:"sessions"`
	Total    int       `json:"total"`
}

// SessionGroup represents the type of sessions to fetch
type SessionGroup string

const (
	SessionGroupActive SessionGroup = "active"
	SessionGroupPast   SessionGroup = "past"
)

// GetStatuses returns the statuses for a session group
func (g SessionGroup) GetStatuses() []SessionStatus {
	switch g {
	case SessionGroupActive:
		return ActiveStatuses
	case SessionGroupPast:
		return PastStatuses
	default:
		return nil
	}
}

// ScanSession scans a single PostgreSQL row into a Session struct
// Expected columns: id, student_id, mentor_id, session_type, topic, status,
// proposed_dates, scheduled_date, meeting_link, mentor_notes, mentor_plan,
// student_feedback, mentor_feedback, requested_at, accepted_at, scheduled_at,
// completed_at, cancelled_at, rejected_at, created_at, updated_at
func ScanSession(row pgx.Row) (*Session, error) {
	var s Session

	err := row.Scan(
		&s.ID,
		&s.StudentID,
		&s.MentorID,
		&s.SessionType,
		&s.Topic,
		&s.Status,
		&s.ProposedDates,
		&s.ScheduledDate,
		&s.MeetingLink,
		&s.MentorNotes,
		&s.MentorPlan,
		&s.StudentFeedback,
		&s.MentorFeedback,
		&s.RequestedAt,
		&s.AcceptedAt,
		&s.ScheduledAt,
		&s.CompletedAt,
		&s.CancelledAt,
		&s.RejectedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// ScanSessions scans multiple PostgreSQL rows into a slice of Session structs
func ScanSessions(rows pgx.Rows) ([]*Session, error) {
	defer rows.Close()

	sessions := []*Session{}
	for rows.Next() {
		session, err := ScanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}
