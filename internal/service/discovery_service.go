package service

import (
	"context"
	"errors"
	"fmt"

	"SparkMatchPlatform/internal/domain"
	"SparkMatchPlatform/internal/repository"
	"SparkMatchPlatform/pkg/config"
	apperrors "SparkMatchPlatform/pkg/errors"
	"SparkMatchPlatform/pkg/logger"
)

// ErrProfileRequired у пользователя нет анкеты для подбора кандидатов
var ErrProfileRequired = apperrors.New(apperrors.ErrValidation, "profile is required for discovery")

// DiscoveryService интерфейс для ленты кандидатов
type DiscoveryService interface {
	Discover(ctx context.Context, userID string, minAge, maxAge, limit int) ([]*domain.Profile, error)
}

// discoveryService реализация DiscoveryService
type discoveryService struct {
	profileRepository repository.ProfileRepository
	cfg               *config.DiscoveryConfig
	log               logger.Logger
}

// NewDiscoveryService создает новый экземпляр DiscoveryService
func NewDiscoveryService(profileRepository repository.ProfileRepository, cfg *config.DiscoveryConfig, log logger.Logger) DiscoveryService {
	return &discoveryService{
		profileRepository: profileRepository,
		cfg:               cfg,
		log:               log,
	}
}

// Discover возвращает ленту кандидатов для пользователя.
// Нулевые параметры заменяются значениями из конфигурации,
// выход за допустимые границы обрезается
func (s *discoveryService) Discover(ctx context.Context, userID string, minAge, maxAge, limit int) ([]*domain.Profile, error) {
	profile, err := s.profileRepository.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileRequired
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if minAge <= 0 {
		minAge = s.cfg.MinAge
	}
	if maxAge <= 0 {
		maxAge = s.cfg.MaxAge
	}
	if minAge < s.cfg.MinAge {
		minAge = s.cfg.MinAge
	}
	if maxAge > s.cfg.MaxAge {
		maxAge = s.cfg.MaxAge
	}
	if minAge > maxAge {
		return nil, apperrors.New(apperrors.ErrValidation, "min_age cannot exceed max_age")
	}

	if limit <= 0 || limit > s.cfg.DefaultLimit {
		limit = s.cfg.DefaultLimit
	}

	filter := &domain.DiscoveryFilter{
		UserID:       userID,
		Gender:       profile.Gender,
		InterestedIn: profile.InterestedIn,
		MinAge:       minAge,
		MaxAge:       maxAge,
		Latitude:     profile.Latitude,
		Longitude:    profile.Longitude,
		Limit:        limit,
	}

	candidates, err := s.profileRepository.Discover(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to discover candidates: %w", err)
	}

	s.log.Debug("Discovery feed built",
		logger.String("user_id", userID),
		logger.Int("candidates", len(candidates)))

	return candidates, nil
}
