package service_test

import (
	"context"
	"testing"
	"time"

	"SparkMatchPlatform/internal/domain"
	"SparkMatchPlatform/internal/repository"
	"SparkMatchPlatform/internal/service"
	"SparkMatchPlatform/pkg/config"
	"SparkMatchPlatform/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupDiscoveryService() (service.DiscoveryService, *MockProfileRepository) {
	profileRepo := &MockProfileRepository{}

	testLogger, _ := logger.NewLogger("dev", "error", "test")

	cfg := &config.DiscoveryConfig{
		MinAge:       18,
		MaxAge:       100,
		DefaultLimit: 20,
	}

	discoveryService := service.NewDiscoveryService(profileRepo, cfg, testLogger)

	return discoveryService, profileRepo
}

func testProfile(userID string) *domain.Profile {
	return &domain.Profile{
		UserID:       userID,
		FirstName:    "Test",
		BirthDate:    time.Date(1995, 6, 15, 0, 0, 0, 0, time.UTC),
		Gender:       domain.GenderMan,
		InterestedIn: domain.GenderWoman,
	}
}

func TestDiscoveryService_Discover_ProfileRequired(t *testing.T) {
	discoveryService, profileRepo := setupDiscoveryService()

	ctx := context.Background()
	profileRepo.On("FindByUserID", ctx, "user-1").Return(nil, repository.ErrNotFound)

	candidates, err := discoveryService.Discover(ctx, "user-1", 0, 0, 0)

	assert.Error(t, err)
	assert.Nil(t, candidates)
	assert.Equal(t, service.ErrProfileRequired, err)
}

func TestDiscoveryService_Discover_DefaultsApplied(t *testing.T) {
	discoveryService, profileRepo := setupDiscoveryService()

	ctx := context.Background()
	profile := testProfile("user-1")
	profileRepo.On("FindByUserID", ctx, "user-1").Return(profile, nil)

	var captured *domain.DiscoveryFilter
	profileRepo.On("Discover", ctx, mock.AnythingOfType("*domain.DiscoveryFilter")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*domain.DiscoveryFilter)
		}).
		Return([]*domain.Profile{}, nil)

	_, err := discoveryService.Discover(ctx, "user-1", 0, 0, 0)

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, "user-1", captured.UserID)
	assert.Equal(t, domain.GenderMan, captured.Gender)
	assert.Equal(t, domain.GenderWoman, captured.InterestedIn)
	assert.Equal(t, 18, captured.MinAge)
	assert.Equal(t, 100, captured.MaxAge)
	assert.Equal(t, 20, captured.Limit)
}

func TestDiscoveryService_Discover_BoundsClamped(t *testing.T) {
	discoveryService, profileRepo := setupDiscoveryService()

	ctx := context.Background()
	profileRepo.On("FindByUserID", ctx, "user-1").Return(testProfile("user-1"), nil)

	var captured *domain.DiscoveryFilter
	profileRepo.On("Discover", ctx, mock.AnythingOfType("*domain.DiscoveryFilter")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*domain.DiscoveryFilter)
		}).
		Return([]*domain.Profile{}, nil)

	// Возраст ниже минимума и лимит выше потолка обрезаются
	_, err := discoveryService.Discover(ctx, "user-1", 15, 200, 1000)

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, 18, captured.MinAge)
	assert.Equal(t, 100, captured.MaxAge)
	assert.Equal(t, 20, captured.Limit)
}

func TestDiscoveryService_Discover_InvertedAgeWindow(t *testing.T) {
	discoveryService, profileRepo := setupDiscoveryService()

	ctx := context.Background()
	profileRepo.On("FindByUserID", ctx, "user-1").Return(testProfile("user-1"), nil)

	candidates, err := discoveryService.Discover(ctx, "user-1", 40, 25, 0)

	assert.Error(t, err)
	assert.Nil(t, candidates)
}

func TestDiscoveryService_Discover_ReturnsCandidates(t *testing.T) {
	discoveryService, profileRepo := setupDiscoveryService()

	ctx := context.Background()
	profileRepo.On("FindByUserID", ctx, "user-1").Return(testProfile("user-1"), nil)

	expected := []*domain.Profile{testProfile("user-2"), testProfile("user-3")}
	profileRepo.On("Discover", ctx, mock.AnythingOfType("*domain.DiscoveryFilter")).Return(expected, nil)

	candidates, err := discoveryService.Discover(ctx, "user-1", 20, 35, 10)

	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}
