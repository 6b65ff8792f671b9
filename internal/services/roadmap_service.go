package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mentorbridge/mentorbridge-api/internal/models"
	pkgerrors "github.com/mentorbridge/mentorbridge-api/pkg/errors"
	"github.com/mentorbridge/mentorbridge-api/pkg/logger"
	"github.com/mentorbridge/mentorbridge-api/pkg/metrics"
	"go.uber.org/zap"
)

var (
	ErrRoadmapNotFound     = errors.New("roadmap not found")
	ErrStepNotFound        = errors.New("roadmap step not found")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrPartialFanout       = errors.New("fan-out partially applied")
)

// RoadmapService manages roadmap step content, including the fan-out of
// all-languages steps across every supported language's roadmap document.
// Fan-out copies share a GroupID stamped at creation; detach and attach match
// on it, never on titles.
type RoadmapService struct {
	roadmapRepo RoadmapRepositoryInterface
	cache       RoadmapCacheInterface
}

// NewRoadmapService creates a new RoadmapService
func NewRoadmapService(roadmapRepo RoadmapRepositoryInterface, cache RoadmapCacheInterface) *RoadmapService {
	return &RoadmapService{
		roadmapRepo: roadmapRepo,
		cache:       cache,
	}
}

// GetRoadmap returns the roadmap document for (year, language), served from
// the read-through cache
func (s *RoadmapService) GetRoadmap(ctx context.Context, year int, language string) (*models.Roadmap, error) {
	if !models.IsSupportedLanguage(language) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
	}

	roadmap, err := s.cache.Get(ctx, year, language)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrRoadmapNotFound
		}
		return nil, fmt.Errorf("failed to fetch roadmap: %w", err)
	}

	return roadmap, nil
}

// CreateStep adds a step to one roadmap, or fans it out across every
// supported language when applyToAllLanguages is set. Fan-out is applied
// per document with no rollback: on partial failure the result carries the
// exact applied count and the failed languages alongside ErrPartialFanout.
func (s *RoadmapService) CreateStep(ctx context.Context, req *models.CreateStepRequest) (*models.StepWriteResult, error) {
	now := time.Now().UTC()
	step := models.RoadmapStep{
		ID:                  uuid.NewString(),
		GroupID:             uuid.NewString(),
		Title:               req.Title,
		Description:         req.Description,
		Resources:           req.Resources,
		DurationWeeks:       req.DurationWeeks,
		LanguageSpecific:    !req.ApplyToAllLanguages,
		ApplyToAllLanguages: req.ApplyToAllLanguages,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if !req.ApplyToAllLanguages {
		if err := s.appendStep(ctx, req.Year, req.Language, step); err != nil {
			metrics.RoadmapStepWrites.WithLabelValues("create", "error").Inc()
			return nil, err
		}

		metrics.RoadmapStepWrites.WithLabelValues("create", "success").Inc()
		logger.Info("Roadmap step created",
			zap.String("step_id", step.ID),
			zap.Int("year", req.Year),
			zap.String("language", req.Language))

		return &models.StepWriteResult{StepID: step.ID, GroupID: step.GroupID, AppliedCount: 1}, nil
	}

	result := &models.StepWriteResult{StepID: step.ID, GroupID: step.GroupID}
	for _, language := range models.SupportedLanguages {
		copy := step
		copy.ID = uuid.NewString()
		if language == req.Language {
			// The origin language keeps the id reported to the caller
			copy.ID = step.ID
		}

		if err := s.appendStep(ctx, req.Year, language, copy); err != nil {
			logger.Error("Fan-out write failed",
				zap.String("group_id", step.GroupID),
				zap.Int("year", req.Year),
				zap.String("language", language),
				zap.Error(err))
			result.Failed = append(result.Failed, language)
			continue
		}
		result.AppliedCount++
	}

	metrics.RoadmapFanoutApplied.WithLabelValues("create").Observe(float64(result.AppliedCount))

	if len(result.Failed) > 0 {
		metrics.RoadmapStepWrites.WithLabelValues("create", "partial").Inc()
		return result, fmt.Errorf("%w: applied %d of %d languages", ErrPartialFanout, result.AppliedCount, len(models.SupportedLanguages))
	}

	metrics.RoadmapStepWrites.WithLabelValues("create", "success").Inc()
	logger.Info("Roadmap step fanned out",
		zap.String("group_id", step.GroupID),
		zap.Int("year", req.Year),
		zap.Int("applied", result.AppliedCount))

	return result, nil
}

// UpdateStep edits a step in place, or migrates it between the
// single-language and all-languages representations when the flag flips
func (s *RoadmapService) UpdateStep(ctx context.Context, stepID string, req *models.UpdateStepRequest) (*models.StepWriteResult, error) {
	origin, err := s.roadmapRepo.GetByYearLanguage(ctx, req.Year, req.Language)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrRoadmapNotFound
		}
		return nil, fmt.Errorf("failed to fetch roadmap: %w", err)
	}

	idx := origin.StepByID(stepID)
	if idx == -1 {
		return nil, ErrStepNotFound
	}
	current := origin.Steps[idx]

	switch {
	case current.ApplyToAllLanguages && !req.ApplyToAllLanguages:
		return s.detachStep(ctx, origin, idx, req)
	case !current.ApplyToAllLanguages && req.ApplyToAllLanguages:
		return s.attachStep(ctx, origin, idx, req)
	default:
		return s.patchStep(ctx, origin, idx, req)
	}
}

// detachStep converts an all-languages step into a single-language step:
// the copies in every other language's document are removed by GroupID and
// the local copy becomes language-specific.
func (s *RoadmapService) detachStep(ctx context.Context, origin *models.Roadmap, idx int, req *models.UpdateStepRequest) (*models.StepWriteResult, error) {
	step := origin.Steps[idx]
	result := &models.StepWriteResult{StepID: step.ID, GroupID: step.GroupID}

	for _, language := range models.SupportedLanguages {
		if language == origin.Language {
			continue
		}

		if err := s.removeGroupCopy(ctx, req.Year, language, step.GroupID); err != nil {
			logger.Error("Detach removal failed",
				zap.String("group_id", step.GroupID),
				zap.String("language", language),
				zap.Error(err))
			result.Failed = append(result.Failed, language)
			continue
		}
		result.AppliedCount++
	}

	applyPatch(&origin.Steps[idx], req)
	origin.Steps[idx].LanguageSpecific = true
	origin.Steps[idx].ApplyToAllLanguages = false

	if err := s.saveAndInvalidate(ctx, origin); err != nil {
		logger.Error("Detach origin write failed",
			zap.String("group_id", step.GroupID),
			zap.String("language", origin.Language),
			zap.Error(err))
		metrics.RoadmapStepWrites.WithLabelValues("detach", "partial").Inc()
		result.Failed = append(result.Failed, origin.Language)
		return result, fmt.Errorf("%w: applied %d of %d languages", ErrPartialFanout, result.AppliedCount, len(models.SupportedLanguages))
	}
	result.AppliedCount++

	metrics.RoadmapFanoutApplied.WithLabelValues("detach").Observe(float64(result.AppliedCount))

	if len(result.Failed) > 0 {
		metrics.RoadmapStepWrites.WithLabelValues("detach", "partial").Inc()
		return result, fmt.Errorf("%w: applied %d of %d languages", ErrPartialFanout, result.AppliedCount, len(models.SupportedLanguages))
	}

	metrics.RoadmapStepWrites.WithLabelValues("detach", "success").Inc()
	logger.Info("Roadmap step detached",
		zap.String("step_id", step.ID),
		zap.String("language", origin.Language))

	return result, nil
}

// attachStep converts a single-language step into an all-languages step:
// a copy is fanned out into every supported language's document, updating
// in place where a copy of the same group already exists.
func (s *RoadmapService) attachStep(ctx context.Context, origin *models.Roadmap, idx int, req *models.UpdateStepRequest) (*models.StepWriteResult, error) {
	step := origin.Steps[idx]
	result := &models.StepWriteResult{StepID: step.ID, GroupID: step.GroupID}
	now := time.Now().UTC()

	for _, language := range models.SupportedLanguages {
		target := origin
		var err error
		if language != origin.Language {
			target, err = s.roadmapRepo.GetOrCreate(ctx, req.Year, language)
			if err != nil {
				logger.Error("Attach fan-out fetch failed",
					zap.String("group_id", step.GroupID),
					zap.String("language", language),
					zap.Error(err))
				result.Failed = append(result.Failed, language)
				continue
			}
		}

		existing := target.StepByGroupID(step.GroupID)
		if existing == -1 {
			copy := step
			copy.ID = uuid.NewString()
			copy.GroupID = step.GroupID
			target.Steps = append(target.Steps, copy)
			existing = len(target.Steps) - 1
		}

		applyPatch(&target.Steps[existing], req)
		target.Steps[existing].LanguageSpecific = false
		target.Steps[existing].ApplyToAllLanguages = true
		target.Steps[existing].UpdatedAt = now

		if err := s.saveAndInvalidate(ctx, target); err != nil {
			logger.Error("Attach fan-out write failed",
				zap.String("group_id", step.GroupID),
				zap.String("language", language),
				zap.Error(err))
			result.Failed = append(result.Failed, language)
			continue
		}
		result.AppliedCount++
	}

	metrics.RoadmapFanoutApplied.WithLabelValues("attach").Observe(float64(result.AppliedCount))

	if len(result.Failed) > 0 {
		metrics.RoadmapStepWrites.WithLabelValues("attach", "partial").Inc()
		return result, fmt.Errorf("%w: applied %d of %d languages", ErrPartialFanout, result.AppliedCount, len(models.SupportedLanguages))
	}

	metrics.RoadmapStepWrites.WithLabelValues("attach", "success").Inc()
	logger.Info("Roadmap step attached to all languages",
		zap.String("step_id", step.ID),
		zap.String("group_id", step.GroupID))

	return result, nil
}

// patchStep edits a step in its own document only
func (s *RoadmapService) patchStep(ctx context.Context, origin *models.Roadmap, idx int, req *models.UpdateStepRequest) (*models.StepWriteResult, error) {
	step := &origin.Steps[idx]
	applyPatch(step, req)

	if err := s.saveAndInvalidate(ctx, origin); err != nil {
		metrics.RoadmapStepWrites.WithLabelValues("update", "error").Inc()
		return nil, err
	}

	metrics.RoadmapStepWrites.WithLabelValues("update", "success").Inc()
	logger.Info("Roadmap step updated",
		zap.String("step_id", step.ID),
		zap.Int("year", origin.Year),
		zap.String("language", origin.Language))

	return &models.StepWriteResult{StepID: step.ID, GroupID: step.GroupID, AppliedCount: 1}, nil
}

// DeleteStep removes a step from its document. An all-languages step is
// removed from every language's document by GroupID.
func (s *RoadmapService) DeleteStep(ctx context.Context, year int, language, stepID string) (*models.StepWriteResult, error) {
	if !models.IsSupportedLanguage(language) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
	}

	roadmap, err := s.roadmapRepo.GetByYearLanguage(ctx, year, language)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrRoadmapNotFound
		}
		return nil, fmt.Errorf("failed to fetch roadmap: %w", err)
	}

	idx := roadmap.StepByID(stepID)
	if idx == -1 {
		return nil, ErrStepNotFound
	}
	step := roadmap.Steps[idx]

	result := &models.StepWriteResult{StepID: step.ID, GroupID: step.GroupID}

	roadmap.Steps = append(roadmap.Steps[:idx], roadmap.Steps[idx+1:]...)
	if err := s.saveAndInvalidate(ctx, roadmap); err != nil {
		metrics.RoadmapStepWrites.WithLabelValues("delete", "error").Inc()
		return nil, err
	}
	result.AppliedCount++

	if step.ApplyToAllLanguages {
		for _, other := range models.SupportedLanguages {
			if other == language {
				continue
			}
			if err := s.removeGroupCopy(ctx, year, other, step.GroupID); err != nil {
				logger.Error("Group delete failed",
					zap.String("group_id", step.GroupID),
					zap.String("language", other),
					zap.Error(err))
				result.Failed = append(result.Failed, other)
				continue
			}
			result.AppliedCount++
		}

		metrics.RoadmapFanoutApplied.WithLabelValues("delete").Observe(float64(result.AppliedCount))

		if len(result.Failed) > 0 {
			metrics.RoadmapStepWrites.WithLabelValues("delete", "partial").Inc()
			return result, fmt.Errorf("%w: applied %d of %d languages", ErrPartialFanout, result.AppliedCount, len(models.SupportedLanguages))
		}
	}

	metrics.RoadmapStepWrites.WithLabelValues("delete", "success").Inc()
	logger.Info("Roadmap step deleted",
		zap.String("step_id", stepID),
		zap.Int("year", year),
		zap.String("language", language))

	return result, nil
}

// appendStep adds a step to the (year, language) document, creating it if needed
func (s *RoadmapService) appendStep(ctx context.Context, year int, language string, step models.RoadmapStep) error {
	roadmap, err := s.roadmapRepo.GetOrCreate(ctx, year, language)
	if err != nil {
		return fmt.Errorf("failed to get roadmap: %w", err)
	}

	step.Order = len(roadmap.Steps) + 1
	roadmap.Steps = append(roadmap.Steps, step)

	return s.saveAndInvalidate(ctx, roadmap)
}

// removeGroupCopy removes the GroupID-matched copy from one document.
// Documents or copies that don't exist are fine, removal is idempotent.
func (s *RoadmapService) removeGroupCopy(ctx context.Context, year int, language, groupID string) error {
	roadmap, err := s.roadmapRepo.GetByYearLanguage(ctx, year, language)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil
		}
		return err
	}

	idx := roadmap.StepByGroupID(groupID)
	if idx == -1 {
		return nil
	}

	roadmap.Steps = append(roadmap.Steps[:idx], roadmap.Steps[idx+1:]...)
	return s.saveAndInvalidate(ctx, roadmap)
}

func (s *RoadmapService) saveAndInvalidate(ctx context.Context, roadmap *models.Roadmap) error {
	if err := s.roadmapRepo.SaveSteps(ctx, roadmap.ID, roadmap.Steps); err != nil {
		return err
	}
	s.cache.Invalidate(roadmap.Year, roadmap.Language)
	return nil
}

// applyPatch copies the editable fields of the request onto the step
func applyPatch(step *models.RoadmapStep, req *models.UpdateStepRequest) {
	step.Title = req.Title
	step.Description = req.Description
	step.Resources = req.Resources
	step.DurationWeeks = req.DurationWeeks
	step.UpdatedAt = time.Now().UTC()
}
