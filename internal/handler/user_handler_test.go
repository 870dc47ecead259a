package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"SparkMatchPlatform/internal/domain"
	"SparkMatchPlatform/internal/handler"
	"SparkMatchPlatform/internal/service"
	"SparkMatchPlatform/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDiscoveryService мок для DiscoveryService
type MockDiscoveryService struct {
	mock.Mock
}

func (m *MockDiscoveryService) Discover(ctx context.Context, userID string, minAge, maxAge, limit int) ([]*domain.Profile, error) {
	args := m.Called(ctx, userID, minAge, maxAge, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Profile), args.Error(1)
}

func newUserHandler(t *testing.T) (*handler.UserHandler, *MockDiscoveryService) {
	t.Helper()

	testLogger, err := logger.NewLogger("dev", "error", "test")
	require.NoError(t, err)

	discoveryService := &MockDiscoveryService{}
	return handler.NewUserHandler(testLogger, discoveryService), discoveryService
}

func TestUserHandler_Discover(t *testing.T) {
	h, discoveryService := newUserHandler(t)

	profiles := []*domain.Profile{
		{UserID: "user-2", FirstName: "Bob"},
		{UserID: "user-3", FirstName: "Carol"},
	}
	discoveryService.On("Discover", mock.Anything, "user-1", 25, 35, 10).Return(profiles, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/users/discover?min_age=25&max_age=35&limit=10", nil)
	req = withUser(req, "user-1")
	rec := httptest.NewRecorder()

	h.Discover(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user-2")
	assert.Contains(t, rec.Body.String(), "user-3")
}

func TestUserHandler_Discover_DefaultsWithoutParams(t *testing.T) {
	h, discoveryService := newUserHandler(t)

	discoveryService.On("Discover", mock.Anything, "user-1", 0, 0, 0).
		Return([]*domain.Profile{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/discover", nil)
	req = withUser(req, "user-1")
	rec := httptest.NewRecorder()

	h.Discover(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	discoveryService.AssertExpectations(t)
}

func TestUserHandler_Discover_WithoutProfile(t *testing.T) {
	h, discoveryService := newUserHandler(t)

	discoveryService.On("Discover", mock.Anything, "user-1", 0, 0, 0).
		Return(nil, service.ErrProfileRequired)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/discover", nil)
	req = withUser(req, "user-1")
	rec := httptest.NewRecorder()

	h.Discover(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_Discover_WithoutAuth(t *testing.T) {
	h, discoveryService := newUserHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/discover", nil)
	rec := httptest.NewRecorder()

	h.Discover(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	discoveryService.AssertNotCalled(t, "Discover",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
