package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mentorbridge/mentorbridge-api/internal/models"
	"github.com/mentorbridge/mentorbridge-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func emptyRoadmap(year int, language string) *models.Roadmap {
	return &models.Roadmap{
		ID:       "rm-" + language,
		Year:     year,
		Language: language,
		Steps:    []models.RoadmapStep{},
	}
}

func TestRoadmapService_GetRoadmap(t *testing.T) {
	mockRepo := new(MockRoadmapRepository)
	mockCache := new(MockRoadmapCache)
	service := services.NewRoadmapService(mockRepo, mockCache)
	ctx := context.Background()

	expected := emptyRoadmap(2, "go")
	mockCache.On("Get", ctx, 2, "go").Return(expected, nil).Once()

	roadmap, err := service.GetRoadmap(ctx, 2, "go")
	assert.NoError(t, err)
	assert.Equal(t, expected, roadmap)

	mockCache.AssertExpectations(t)
}

func TestRoadmapService_GetRoadmap_UnsupportedLanguage(t *testing.T) {
	mockRepo := new(MockRoadmapRepository)
	mockCache := new(MockRoadmapCache)
	service := services.NewRoadmapService(mockRepo, mockCache)

	roadmap, err := service.GetRoadmap(context.Background(), 2, "haskell")
	assert.ErrorIs(t, err, services.ErrUnsupportedLanguage)
	assert.Nil(t, roadmap)

	mockCache.AssertNotCalled(t, "Get")
}

func TestRoadmapService_CreateStep_SingleLanguage(t *testing.T) {
	mockRepo := new(MockRoadmapRepository)
	mockCache := new(MockRoadmapCache)
	service := services.NewRoadmapService(mockRepo, mockCache)
	ctx := context.Background()

	roadmap := emptyRoadmap(1, "python")
	mockRepo.On("GetOrCreate", ctx, 1, "python").Return(roadmap, nil).Once()
	mockRepo.On("SaveSteps", ctx, "rm-python", mock.MatchedBy(func(steps []models.RoadmapStep) bool {
		return len(steps) == 1 &&
			steps[0].Title == "Learn the basics" &&
			steps[0].LanguageSpecific &&
			!steps[0].ApplyToAllLanguages &&
			steps[0].Order == 1
	})).Return(nil).Once()
	mockCache.On("Invalidate", 1, "python").Once()

	result, err := service.CreateStep(ctx, &models.CreateStepRequest{
		Year:     1,
		Language: "python",
		Title:    "Learn the basics",
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, result.AppliedCount)
	assert.Empty(t, result.Failed)
	assert.NotEmpty(t, result.StepID)
	assert.NotEmpty(t, result.GroupID)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestRoadmapService_CreateStep_FanOut(t *testing.T) {
	mockRepo := new(MockRoadmapRepository)
	mockCache := new(MockRoadmapCache)
	service := services.NewRoadmapService(mockRepo, mockCache)
	ctx := context.Background()

	saved := make(map[string][]models.RoadmapStep)
	for _, language := range models.SupportedLanguages {
		lang := language
		roadmap := emptyRoadmap(1, lang)
		mockRepo.On("GetOrCreate", ctx, 1, lang).Return(roadmap, nil).Once()
		mockRepo.On("SaveSteps", ctx, roadmap.ID, mock.Anything).
			Run(func(args mock.Arguments) {
				saved[lang] = args.Get(2).([]models.RoadmapStep)
			}).Return(nil).Once()
		mockCache.On("Invalidate", 1, lang).Once()
	}

	result, err := service.CreateStep(ctx, &models.CreateStepRequest{
		Year:                1,
		Language:            "go",
		Title:               "Version control with git",
		ApplyToAllLanguages: true,
	})
	assert.NoError(t, err)
	assert.Equal(t, len(models.SupportedLanguages), result.AppliedCount)
	assert.Empty(t, result.Failed)

	// Every copy shares the group id; ids differ per language
	ids := make(map[string]bool)
	for _, language := range models.SupportedLanguages {
		steps := saved[language]
		assert.Len(t, steps, 1)
		assert.Equal(t, result.GroupID, steps[0].GroupID)
		assert.False(t, steps[0].LanguageSpecific)
		assert.True(t, steps[0].ApplyToAllLanguages)
		ids[steps[0].ID] = true
	}
	assert.Len(t, ids, len(models.SupportedLanguages))
	assert.True(t, ids[result.StepID])

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestRoadmapService_CreateStep_FanOutPartialFailure(t *testing.T) {
	mockRepo := new(MockRoadmapRepository)
	mockCache := new(MockRoadmapCache)
	service := services.NewRoadmapService(mockRepo, mockCache)
	ctx := context.Background()

	for _, language := range models.SupportedLanguages {
		if language == "rust" {
			mockRepo.On("GetOrCreate", ctx, 1, "rust").Return(nil, errors.New("connection reset")).Once()
			continue
		}
		roadmap := emptyRoadmap(1, language)
		mockRepo.On("GetOrCreate", ctx, 1, language).Return(roadmap, nil).Once()
		mockRepo.On("SaveSteps", ctx, roadmap.ID, mock.Anything).Return(nil).Once()
		mockCache.On("Invalidate", 1, language).Once()
	}

	result, err := service.CreateStep(ctx, &models.CreateStepRequest{
		Year:                1,
		Language:            "go",
		Title:               "Version control with git",
		ApplyToAllLanguages: true,
	})
	assert.ErrorIs(t, err, services.ErrPartialFanout)
	assert.Equal(t, 5, result.AppliedCount)
	assert.Equal(t, []string{"rust"}, result.Failed)

	mockRepo.AssertExpectations(t)
}

func TestRoadmapService_UpdateStep_InPlace(t *testing.T) {
	mockRepo := new(MockRoadmapRepository)
	mockCache := new(MockRoadmapCache)
	service := services.NewRoadmapService(mockRepo, mockCache)
	ctx := context.Background()

	roadmap := emptyRoadmap(2, "java")
	roadmap.Steps = []models.RoadmapStep{{
		ID:               "step-1",
		GroupID:          "group-1",
		Title:            "Collections",
		LanguageSpecific: true,
		Order:            1,
	}}

	mockRepo.On("GetByYearLanguage", ctx, 2, "java").Return(roadmap, nil).Once()
	mockRepo.On("SaveSteps", ctx, "rm-java", mock.MatchedBy(func(steps []models.RoadmapStep) bool {
		return len(steps) == 1 && steps[0].Title == "Collections deep dive" && steps[0].LanguageSpecific
	})).Return(nil).Once()
	mockCache.On("Invalidate", 2, "java").Once()

	result, err := service.UpdateStep(ctx, "step-1", &models.UpdateStepRequest{
		Year:     2,
		Language: "java",
		Title:    "Collections deep dive",
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, result.AppliedCount)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestRoadmapService_UpdateStep_Detach(t *testing.T) {
	mockRepo := new(MockRoadmapRepository)
	mockCache := new(MockRoadmapCache)
	service := services.NewRoadmapService(mockRepo, mockCache)
	ctx := context.Background()

	sharedStep := func(id string) models.RoadmapStep {
		return models.RoadmapStep{
			ID:                  id,
			GroupID:             "group-1",
			Title:               "Data structures",
			ApplyToAllLanguages: true,
			Order:               1,
		}
	}

	origin := emptyRoadmap(1, "go")
	origin.Steps = []models.RoadmapStep{sharedStep("step-go")}
	mockRepo.On("GetByYearLanguage", ctx, 1, "go").Return(origin, nil).Once()

	for _, language := range models.SupportedLanguages {
		if language == "go" {
			continue
		}
		other := emptyRoadmap(1, language)
		other.Steps = []models.RoadmapStep{sharedStep("step-" + language)}
		mockRepo.On("GetByYearLanguage", ctx, 1, language).Return(other, nil).Once()
		mockRepo.On("SaveSteps", ctx, other.ID, mock.MatchedBy(func(steps []models.RoadmapStep) bool {
			return len(steps) == 0
		})).Return(nil).Once()
		mockCache.On("Invalidate", 1, language).Once()
	}

	mockRepo.On("SaveSteps", ctx, "rm-go", mock.MatchedBy(func(steps []models.RoadmapStep) bool {
		return len(steps) == 1 && steps[0].LanguageSpecific && !steps[0].ApplyToAllLanguages
	})).Return(nil).Once()
	mockCache.On("Invalidate", 1, "go").Once()

	result, err := service.UpdateStep(ctx, "step-go", &models.UpdateStepRequest{
		Year:                1,
		Language:            "go",
		Title:               "Data structures",
		ApplyToAllLanguages: false,
	})
	assert.NoError(t, err)
	assert.Equal(t, len(models.SupportedLanguages), result.AppliedCount)
	assert.Empty(t, result.Failed)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestRoadmapService_UpdateStep_Detach_OriginWriteFails(t *testing.T) {
	mockRepo := new(MockRoadmapRepository)
	mockCache := new(MockRoadmapCache)
	service := services.NewRoadmapService(mockRepo, mockCache)
	ctx := context.Background()

	sharedStep := func(id string) models.RoadmapStep {
		return models.RoadmapStep{
			ID:                  id,
			GroupID:             "group-1",
			Title:               "Data structures",
			ApplyToAllLanguages: true,
			Order:               1,
		}
	}

	origin := emptyRoadmap(1, "go")
	origin.Steps = []models.RoadmapStep{sharedStep("step-go")}
	mockRepo.On("GetByYearLanguage", ctx, 1, "go").Return(origin, nil).Once()

	for _, language := range models.SupportedLanguages {
		if language == "go" {
			continue
		}
		other := emptyRoadmap(1, language)
		other.Steps = []models.RoadmapStep{sharedStep("step-" + language)}
		mockRepo.On("GetByYearLanguage", ctx, 1, language).Return(other, nil).Once()
		mockRepo.On("SaveSteps", ctx, other.ID, mock.Anything).Return(nil).Once()
		mockCache.On("Invalidate", 1, language).Once()
	}

	// All five removals land, but the origin document's write fails: the
	// outcome is reported as a partial application, not a plain error.
	mockRepo.On("SaveSteps", ctx, "rm-go", mock.Anything).
		Return(errors.New("connection reset")).Once()

	result, err := service.UpdateStep(ctx, "step-go", &models.UpdateStepRequest{
		Year:                1,
		Language:            "go",
		Title:               "Data structures",
		ApplyToAllLanguages: false,
	})
	assert.ErrorIs(t, err, services.ErrPartialFanout)
	assert.NotNil(t, result)
	assert.Equal(t, len(models.SupportedLanguages)-1, result.AppliedCount)
	assert.Equal(t, []string{"go"}, result.Failed)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestRoadmapService_UpdateStep_Attach(t *testing.T) {
	mockRepo := new(MockRoadmapRepository)
	mockCache := new(MockRoadmapCache)
	service := services.NewRoadmapService(mockRepo, mockCache)
	ctx := context.Background()

	origin := emptyRoadmap(1, "go")
	origin.Steps = []models.RoadmapStep{{
		ID:               "step-go",
		GroupID:          "group-1",
		Title:            "Testing fundamentals",
		LanguageSpecific: true,
		Order:            1,
	}}
	mockRepo.On("GetByYearLanguage", ctx, 1, "go").Return(origin, nil).Once()
	mockRepo.On("SaveSteps", ctx, "rm-go", mock.MatchedBy(func(steps []models.RoadmapStep) bool {
		return len(steps) == 1 && steps[0].ApplyToAllLanguages
	})).Return(nil).Once()
	mockCache.On("Invalidate", 1, "go").Once()

	for _, language := range models.SupportedLanguages {
		if language == "go" {
			continue
		}
		lang := language
		other := emptyRoadmap(1, lang)
		mockRepo.On("GetOrCreate", ctx, 1, lang).Return(other, nil).Once()
		mockRepo.On("SaveSteps", ctx, other.ID, mock.MatchedBy(func(steps []models.RoadmapStep) bool {
			return len(steps) == 1 &&
				steps[0].GroupID == "group-1" &&
				steps[0].ID != "step-go" &&
				steps[0].ApplyToAllLanguages
		})).Return(nil).Once()
		mockCache.On("Invalidate", 1, lang).Once()
	}

	result, err := service.UpdateStep(ctx, "step-go", &models.UpdateStepRequest{
		Year:                1,
		Language:            "go",
		Title:               "Testing fundamentals",
		ApplyToAllLanguages: true,
	})
	assert.NoError(t, err)
	assert.Equal(t, len(models.SupportedLanguages), result.AppliedCount)
	assert.Empty(t, result.Failed)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestRoadmapService_UpdateStep_NotFound(t *testing.T) {
	mockRepo := new(MockRoadmapRepository)
	mockCache := new(MockRoadmapCache)
	service := services.NewRoadmapService(mockRepo, mockCache)
	ctx := context.Background()

	mockRepo.On("GetByYearLanguage", ctx, 1, "go").Return(emptyRoadmap(1, "go"), nil).Once()

	result, err := service.UpdateStep(ctx, "step-missing", &models.UpdateStepRequest{
		Year:     1,
		Language: "go",
		Title:    "Anything",
	})
	assert.ErrorIs(t, err, services.ErrStepNotFound)
	assert.Nil(t, result)
}

func TestRoadmapService_DeleteStep_SingleLanguage(t *testing.T) {
	mockRepo := new(MockRoadmapRepository)
	mockCache := new(MockRoadmapCache)
	service := services.NewRoadmapService(mockRepo, mockCache)
	ctx := context.Background()

	roadmap := emptyRoadmap(3, "cpp")
	roadmap.Steps = []models.RoadmapStep{{
		ID:               "step-1",
		GroupID:          "group-1",
		Title:            "Templates",
		LanguageSpecific: true,
	}}

	mockRepo.On("GetByYearLanguage", ctx, 3, "cpp").Return(roadmap, nil).Once()
	mockRepo.On("SaveSteps", ctx, "rm-cpp", mock.MatchedBy(func(steps []models.RoadmapStep) bool {
		return len(steps) == 0
	})).Return(nil).Once()
	mockCache.On("Invalidate", 3, "cpp").Once()

	result, err := service.DeleteStep(ctx, 3, "cpp", "step-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, result.AppliedCount)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestRoadmapService_DeleteStep_GroupWide(t *testing.T) {
	mockRepo := new(MockRoadmapRepository)
	mockCache := new(MockRoadmapCache)
	service := services.NewRoadmapService(mockRepo, mockCache)
	ctx := context.Background()

	sharedStep := func(id string) models.RoadmapStep {
		return models.RoadmapStep{
			ID:                  id,
			GroupID:             "group-1",
			Title:               "Version control with git",
			ApplyToAllLanguages: true,
		}
	}

	origin := emptyRoadmap(1, "javascript")
	origin.Steps = []models.RoadmapStep{sharedStep("step-js")}
	mockRepo.On("GetByYearLanguage", ctx, 1, "javascript").Return(origin, nil).Once()
	mockRepo.On("SaveSteps", ctx, "rm-javascript", mock.MatchedBy(func(steps []models.RoadmapStep) bool {
		return len(steps) == 0
	})).Return(nil).Once()
	mockCache.On("Invalidate", 1, "javascript").Once()

	for _, language := range models.SupportedLanguages {
		if language == "javascript" {
			continue
		}
		other := emptyRoadmap(1, language)
		other.Steps = []models.RoadmapStep{sharedStep("step-" + language)}
		mockRepo.On("GetByYearLanguage", ctx, 1, language).Return(other, nil).Once()
		mockRepo.On("SaveSteps", ctx, other.ID, mock.MatchedBy(func(steps []models.RoadmapStep) bool {
			return len(steps) == 0
		})).Return(nil).Once()
		mockCache.On("Invalidate", 1, language).Once()
	}

	result, err := service.DeleteStep(ctx, 1, "javascript", "step-js")
	assert.NoError(t, err)
	assert.Equal(t, len(models.SupportedLanguages), result.AppliedCount)
	assert.Empty(t, result.Failed)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}
