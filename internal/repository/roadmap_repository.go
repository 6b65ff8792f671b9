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

const roadmapColumns = `id, year, language, steps, created_at, updated_at`

// RoadmapRepository handles roadmap document data access
type RoadmapRepository struct {
	pool *pgxpool.Pool
}

// NewRoadmapRepository creates a new roadmap repository
func NewRoadmapRepository(pool *pgxpool.Pool) *RoadmapRepository {
	return &RoadmapRepository{pool: pool}
}

// GetByYearLanguage retrieves the roadmap document for a (year, language) pair
func (r *RoadmapRepository) GetByYearLanguage(ctx context.Context, year int, language string) (*models.Roadmap, error) {
	start := time.Now()
	operation := "getRoadmap"

	query := fmt.Sprintf(`SELECT %s FROM roadmaps WHERE year = $1 AND language = $2`, roadmapColumns)

	roadmap, err := models.ScanRoadmap(r.pool.QueryRow(ctx, query, year, language))
	duration := metrics.MeasureDuration(start)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			recordMetrics(operation, "not_found", duration)
			return nil, pkgerrors.NotFoundError("roadmap")
		}
		recordMetrics(operation, "error", duration)
		logger.LogDBCall(operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to fetch roadmap: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return roadmap, nil
}

// GetOrCreate retrieves the roadmap document for a (year, language) pair,
// creating an empty one if none exists yet
func (r *RoadmapRepository) GetOrCreate(ctx context.Context, year int, language string) (*models.Roadmap, error) {
	start := time.Now()
	operation := "getOrCreateRoadmap"

	query := fmt.Sprintf(`
		INSERT INTO roadmaps (id, year, language, steps)
		VALUES ($1, $2, $3, '[]'::jsonb)
		ON CONFLICT (year, language) DO UPDATE SET year = EXCLUDED.year
		RETURNING %s
	`, roadmapColumns)

	roadmap, err := models.ScanRoadmap(r.pool.QueryRow(ctx, query, uuid.NewString(), year, language))
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogDBCall(operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to get or create roadmap: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return roadmap, nil
}

// SaveSteps replaces the embedded steps array of a roadmap document
func (r *RoadmapRepository) SaveSteps(ctx context.Context, roadmapID string, steps []models.RoadmapStep) error {
	start := time.Now()
	operation := "saveRoadmapSteps"

	if steps == nil {
		steps = []models.RoadmapStep{}
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE roadmaps SET steps = $2, updated_at = now() WHERE id = $1`,
		roadmapID, steps)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogDBCall(operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to save roadmap steps: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return pkgerrors.NotFoundError("roadmap")
	}

	recordMetrics(operation, "success", duration)
	logger.LogDBCall(operation, "success", duration,
		zap.String("roadmap_id", roadmapID),
		zap.Int("steps", len(steps)))

	return nil
}
