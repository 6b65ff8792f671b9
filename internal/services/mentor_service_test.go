package services_test

import (
	"context"
	"testing"

	"github.com/mentorbridge/mentorbridge-api/internal/models"
	"github.com/mentorbridge/mentorbridge-api/internal/services"
	pkgerrors "github.com/mentorbridge/mentorbridge-api/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestMentorService_GetMentorByID(t *testing.T) {
	mockMentorRepo := new(MockMentorRepository)
	service := services.NewMentorService(mockMentorRepo)
	ctx := context.Background()

	expected := &models.Mentor{
		ID:        "mentor-1",
		Name:      "Test Mentor",
		IsVisible: true,
		Stats:     models.MentorStats{SessionsAccepted: 3, SessionsCompleted: 2, StudentsHelped: 2},
	}

	mockMentorRepo.On("GetByID", ctx, "mentor-1").Return(expected, nil).Once()

	mentor, err := service.GetMentorByID(ctx, "mentor-1")
	assert.NoError(t, err)
	assert.Equal(t, expected, mentor)

	mockMentorRepo.AssertExpectations(t)
}

func TestMentorService_GetMentorByID_NotFound(t *testing.T) {
	mockMentorRepo := new(MockMentorRepository)
	service := services.NewMentorService(mockMentorRepo)
	ctx := context.Background()

	mockMentorRepo.On("GetByID", ctx, "mentor-missing").
		Return(nil, pkgerrors.NotFoundError("mentor")).Once()

	mentor, err := service.GetMentorByID(ctx, "mentor-missing")
	assert.ErrorIs(t, err, services.ErrMentorNotFound)
	assert.Nil(t, mentor)
}

func TestMentorService_GetMentorByID_Hidden(t *testing.T) {
	mockMentorRepo := new(MockMentorRepository)
	service := services.NewMentorService(mockMentorRepo)
	ctx := context.Background()

	hidden := &models.Mentor{ID: "mentor-2", IsVisible: false}
	mockMentorRepo.On("GetByID", ctx, "mentor-2").Return(hidden, nil).Once()

	mentor, err := service.GetMentorByID(ctx, "mentor-2")
	assert.ErrorIs(t, err, services.ErrMentorNotFound)
	assert.Nil(t, mentor)
}

func TestMentorService_GetMentorInternal_IncludesHidden(t *testing.T) {
	mockMentorRepo := new(MockMentorRepository)
	service := services.NewMentorService(mockMentorRepo)
	ctx := context.Background()

	hidden := &models.Mentor{ID: "mentor-2", IsVisible: false}
	mockMentorRepo.On("GetByID", ctx, "mentor-2").Return(hidden, nil).Once()

	mentor, err := service.GetMentorInternal(ctx, "mentor-2")
	assert.NoError(t, err)
	assert.Equal(t, hidden, mentor)

	mockMentorRepo.AssertExpectations(t)
}

func TestMentorService_GetMentorInternal_NotFound(t *testing.T) {
	mockMentorRepo := new(MockMentorRepository)
	service := services.NewMentorService(mockMentorRepo)
	ctx := context.Background()

	mockMentorRepo.On("GetByID", ctx, "mentor-missing").
		Return(nil, pkgerrors.NotFoundError("mentor")).Once()

	mentor, err := service.GetMentorInternal(ctx, "mentor-missing")
	assert.ErrorIs(t, err, services.ErrMentorNotFound)
	assert.Nil(t, mentor)
}
