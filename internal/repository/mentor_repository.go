package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorbridge/mentorbridge-api/internal/models"
	pkgerrors "github.com/mentorbridge/mentorbridge-api/pkg/errors"
	"github.com/mentorbridge/mentorbridge-api/pkg/logger"
	"github.com/mentorbridge/mentorbridge-api/pkg/metrics"
	"go.uber.org/zap"
)

const mentorColumns = `id, name, email, headline, about, expertise,
	sessions_accepted, sessions_completed, students_helped, total_sessions,
	average_rating, rating_count, is_visible, created_at, updated_at`

// MentorRepository handles mentor data access
type MentorRepository struct {
	pool *pgxpool.Pool
}

// NewMentorRepository creates a new mentor repository
func NewMentorRepository(pool *pgxpool.Pool) *MentorRepository {
	return &MentorRepository{pool: pool}
}

// GetByID retrieves a mentor by id
func (r *MentorRepository) GetByID(ctx context.Context, id string) (*models.Mentor, error) {
	start := time.Now()
	operation := "getMentorByID"

	query := fmt.Sprintf(`SELECT %s FROM mentors WHERE id = $1`, mentorColumns)

	mentor, err := models.ScanMentor(r.pool.QueryRow(ctx, query, id))
	duration := metrics.MeasureDuration(start)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			recordMetrics(operation, "not_found", duration)
			return nil, pkgerrors.NotFoundError("mentor")
		}
		recordMetrics(operation, "error", duration)
		logger.LogDBCall(operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to fetch mentor: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return mentor, nil
}

// Exists reports whether a visible mentor with the id exists
func (r *MentorRepository) Exists(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	operation := "mentorExists"

	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM mentors WHERE id = $1 AND is_visible)`, id).Scan(&exists)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogDBCall(operation, "error", duration, zap.Error(err))
		return false, fmt.Errorf("failed to check mentor: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return exists, nil
}
