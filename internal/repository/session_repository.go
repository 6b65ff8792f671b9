package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorbridge/mentorbridge-api/internal/models"
	pkgerrors "github.com/mentorbridge/mentorbridge-api/pkg/errors"
	"github.com/mentorbridge/mentorbridge-api/pkg/logger"
	"github.com/mentorbridge/mentorbridge-api/pkg/metrics"
	"go.uber.org/zap"
)

const sessionColumns = `id, student_id, mentor_id, session_type, topic, status,
	proposed_dates, scheduled_date, meeting_link, mentor_notes, mentor_plan,
	student_feedback, mentor_feedback, requested_at, accepted_at, scheduled_at,
	completed_at, cancelled_at, rejected_at, created_at, updated_at`

// TransitionUpdate is the set of fields a validated transition writes.
// Status determines which per-status timestamp column gets stamped. From is
// the status the caller validated against; the UPDATE is guarded on it so a
// concurrent transition cannot commit twice from the same status.
type TransitionUpdate struct {
	From          models.SessionStatus
	Status        models.SessionStatus
	ScheduledDate *time.Time
	MeetingLink   *string
	MentorNotes   *string
	MentorPlan    *string
}

// statusTimestampColumn maps a status to the column stamped on first entry
var statusTimestampColumn = map[models.SessionStatus]string{
	models.StatusAccepted:  "accepted_at",
	models.StatusScheduled: "scheduled_at",
	models.StatusCompleted: "completed_at",
	models.StatusCancelled: "cancelled_at",
	models.StatusRejected:  "rejected_at",
}

// SessionRepository handles session data access
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts a new session in status "requested"
func (r *SessionRepository) Create(ctx context.Context, studentID string, req *models.CreateSessionRequest) (*models.Session, error) {
	start := time.Now()
	operation := "createSession"

	query := fmt.Sprintf(`
		INSERT INTO sessions (id, student_id, mentor_id, session_type, topic, status, proposed_dates, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		RETURNING %s
	`, sessionColumns)

	row := r.pool.QueryRow(ctx, query,
		uuid.NewString(),
		studentID,
		req.MentorID,
		req.SessionType,
		req.Topic,
		models.StatusRequested,
		req.ProposedDates,
	)

	session, err := models.ScanSession(row)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogDBCall(operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogDBCall(operation, "success", duration)

	return session, nil
}

// GetByID retrieves a single session by id
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	start := time.Now()
	operation := "getSessionByID"

	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE id = $1`, sessionColumns)

	session, err := models.ScanSession(r.pool.QueryRow(ctx, query, id))
	duration := metrics.MeasureDuration(start)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			recordMetrics(operation, "not_found", duration)
			return nil, pkgerrors.NotFoundError("session")
		}
		recordMetrics(operation, "error", duration)
		logger.LogDBCall(operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return session, nil
}

// GetByMentor retrieves sessions for a mentor filtered by statuses, newest first
func (r *SessionRepository) GetByMentor(ctx context.Context, mentorID string, statuses []models.SessionStatus) ([]*models.Session, error) {
	return r.getByParticipant(ctx, "getSessionsByMentor", "mentor_id", mentorID, statuses)
}

// GetByStudent retrieves sessions for a student filtered by statuses, newest first
func (r *SessionRepository) GetByStudent(ctx context.Context, studentID string, statuses []models.SessionStatus) ([]*models.Session, error) {
	return r.getByParticipant(ctx, "getSessionsByStudent", "student_id", studentID, statuses)
}

func (r *SessionRepository) getByParticipant(ctx context.Context, operation, column, userID string, statuses []models.SessionStatus) ([]*models.Session, error) {
	start := time.Now()

	query := fmt.Sprintf(`
		SELECT %s FROM sessions
		WHERE %s = $1 AND status = ANY($2)
		ORDER BY requested_at DESC
	`, sessionColumns, column)

	rows, err := r.pool.Query(ctx, query, userID, statuses)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogDBCall(operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}

	sessions, err := models.ScanSessions(rows)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogDBCall(operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogDBCall(operation, "success", duration, zap.Int("count", len(sessions)))

	return sessions, nil
}

// Transition applies a validated status transition and the mentor stat
// increments it carries in a single transaction. The status timestamp column
// is only stamped when still NULL, so a timestamp is set exactly once.
func (r *SessionRepository) Transition(ctx context.Context, id string, upd TransitionUpdate, deltas models.StatDeltas) (*models.Session, error) {
	start := time.Now()
	operation := "transitionSession"

	tsColumn, ok := statusTimestampColumn[upd.Status]
	if !ok {
		return nil, fmt.Errorf("no timestamp column for status %q", upd.Status)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	query := fmt.Sprintf(`
		UPDATE sessions SET
			status = $2,
			%s = COALESCE(%s, now()),
			scheduled_date = COALESCE($3, scheduled_date),
			meeting_link   = COALESCE($4, meeting_link),
			mentor_notes   = COALESCE($5, mentor_notes),
			mentor_plan    = COALESCE($6, mentor_plan),
			updated_at     = now()
		WHERE id = $1 AND status = $7
		RETURNING %s
	`, tsColumn, tsColumn, sessionColumns)

	session, err := models.ScanSession(tx.QueryRow(ctx, query,
		id,
		upd.Status,
		upd.ScheduledDate,
		upd.MeetingLink,
		upd.MentorNotes,
		upd.MentorPlan,
		upd.From,
	))
	if err != nil {
		duration := metrics.MeasureDuration(start)
		if errors.Is(err, pgx.ErrNoRows) {
			recordMetrics(operation, "not_found", duration)
			return nil, pkgerrors.NotFoundError("session")
		}
		recordMetrics(operation, "error", duration)
		logger.LogDBCall(operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if !deltas.IsZero() {
		_, err = tx.Exec(ctx, `
			UPDATE mentors SET
				sessions_accepted  = sessions_accepted + $2,
				sessions_completed = sessions_completed + $3,
				students_helped    = students_helped + $4,
				total_sessions     = total_sessions + $5,
				updated_at         = now()
			WHERE id = $1
		`, session.MentorID,
			deltas.SessionsAccepted,
			deltas.SessionsCompleted,
			deltas.StudentsHelped,
			deltas.TotalSessions,
		)
		if err != nil {
			duration := metrics.MeasureDuration(start)
			recordMetrics(operation, "error", duration)
			logger.LogDBCall(operation, "error", duration, zap.Error(err))
			return nil, fmt.Errorf("failed to increment mentor stats: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to commit transition: %w", err)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogDBCall(operation, "success", duration,
		zap.String("session_id", id),
		zap.String("status", string(upd.Status)))

	return session, nil
}

// SetFeedback stores one participant's post-completion feedback. The column is
// only written when still NULL so feedback cannot be overwritten. A student
// rating also folds into the mentor's running average within the same
// transaction.
func (r *SessionRepository) SetFeedback(ctx context.Context, id, role string, feedback *models.SessionFeedback) (*models.Session, error) {
	start := time.Now()
	operation := "setSessionFeedback"

	column := "mentor_feedback"
	if role == models.RoleStudent {
		column = "student_feedback"
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	query := fmt.Sprintf(`
		UPDATE sessions SET %s = $2, updated_at = now()
		WHERE id = $1 AND %s IS NULL
		RETURNING %s
	`, column, column, sessionColumns)

	session, err := models.ScanSession(tx.QueryRow(ctx, query, id, feedback))
	if err != nil {
		duration := metrics.MeasureDuration(start)
		if errors.Is(err, pgx.ErrNoRows) {
			recordMetrics(operation, "conflict", duration)
			return nil, fmt.Errorf("feedback already submitted: %w", pkgerrors.ErrConflict)
		}
		recordMetrics(operation, "error", duration)
		logger.LogDBCall(operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}

	if role == models.RoleStudent {
		_, err = tx.Exec(ctx, `
			UPDATE mentors SET
				average_rating = (average_rating * rating_count + $2) / (rating_count + 1),
				rating_count   = rating_count + 1,
				updated_at     = now()
			WHERE id = $1
		`, session.MentorID, feedback.Rating)
		if err != nil {
			duration := metrics.MeasureDuration(start)
			recordMetrics(operation, "error", duration)
			logger.LogDBCall(operation, "error", duration, zap.Error(err))
			return nil, fmt.Errorf("failed to update mentor rating: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to commit feedback: %w", err)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)

	return session, nil
}
