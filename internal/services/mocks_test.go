package services_test

import (
	"context"
	"io"
	"net/http"

	"github.com/mentorbridge/mentorbridge-api/internal/models"
	"github.com/mentorbridge/mentorbridge-api/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockSessionRepository is a mock implementation of SessionRepositoryInterface
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, studentID string, req *models.CreateSessionRequest) (*models.Session, error) {
	args := m.Called(ctx, studentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) GetByMentor(ctx context.Context, mentorID string, statuses []models.SessionStatus) ([]*models.Session, error) {
	args := m.Called(ctx, mentorID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Session), args.Error(1)
}

func (m *MockSessionRepository) GetByStudent(ctx context.Context, studentID string, statuses []models.SessionStatus) ([]*models.Session, error) {
	args := m.Called(ctx, studentID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Session), args.Error(1)
}

func (m *MockSessionRepository) Transition(ctx context.Context, id string, upd repository.TransitionUpdate, deltas models.StatDeltas) (*models.Session, error) {
	args := m.Called(ctx, id, upd, deltas)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) SetFeedback(ctx context.Context, id, role string, feedback *models.SessionFeedback) (*models.Session, error) {
	args := m.Called(ctx, id, role, feedback)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

// MockMentorRepository is a mock implementation of MentorRepositoryInterface
type MockMentorRepository struct {
	mock.Mock
}

func (m *MockMentorRepository) GetByID(ctx context.Context, id string) (*models.Mentor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Mentor), args.Error(1)
}

func (m *MockMentorRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockRoadmapRepository is a mock implementation of RoadmapRepositoryInterface
type MockRoadmapRepository struct {
	mock.Mock
}

func (m *MockRoadmapRepository) GetByYearLanguage(ctx context.Context, year int, language string) (*models.Roadmap, error) {
	args := m.Called(ctx, year, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Roadmap), args.Error(1)
}

func (m *MockRoadmapRepository) GetOrCreate(ctx context.Context, year int, language string) (*models.Roadmap, error) {
	args := m.Called(ctx, year, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Roadmap), args.Error(1)
}

func (m *MockRoadmapRepository) SaveSteps(ctx context.Context, roadmapID string, steps []models.RoadmapStep) error {
	args := m.Called(ctx, roadmapID, steps)
	return args.Error(0)
}

// MockRoadmapCache is a mock implementation of RoadmapCacheInterface
type MockRoadmapCache struct {
	mock.Mock
}

func (m *MockRoadmapCache) Get(ctx context.Context, year int, language string) (*models.Roadmap, error) {
	args := m.Called(ctx, year, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Roadmap), args.Error(1)
}

func (m *MockRoadmapCache) Invalidate(year int, language string) {
	m.Called(year, language)
}

func (m *MockRoadmapCache) IsReady() bool {
	args := m.Called()
	return args.Bool(0)
}

// stubTriggerClient implements httpclient.Client and records fired URLs so
// fire-and-forget trigger calls can be awaited in tests.
type stubTriggerClient struct {
	calls chan string
}

func newStubTriggerClient() *stubTriggerClient {
	return &stubTriggerClient{calls: make(chan string, 1)}
}

func (c *stubTriggerClient) Get(url string) (*http.Response, error) {
	c.calls <- url
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func (c *stubTriggerClient) Post(url, contentType string, body io.Reader) (*http.Response, error) {
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func (c *stubTriggerClient) Do(req *http.Request) (*http.Response, error) {
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}
