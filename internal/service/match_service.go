package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SparkMatchPlatform/internal/domain"
	"SparkMatchPlatform/internal/repository"
	apperrors "SparkMatchPlatform/pkg/errors"
	"SparkMatchPlatform/pkg/logger"
	"github.com/google/uuid"
)

var (
	// ErrSelfLike попытка поставить лайк самому себе
	ErrSelfLike = apperrors.New(apperrors.ErrValidation, "cannot like yourself")
	// ErrUserNotFound целевой пользователь не существует или неактивен
	ErrUserNotFound = apperrors.New(apperrors.ErrNotFound, "user not found")
)

// MatchService интерфейс для сервиса симпатий и пар
type MatchService interface {
	Like(ctx context.Context, fromUserID, toUserID string, superlike bool) (*domain.LikeResult, error)
	ListMatches(ctx context.Context, userID string) ([]*domain.MatchView, error)
	GetMatch(ctx context.Context, matchID string) (*domain.Match, error)
}

// matchService реализация MatchService
type matchService struct {
	userRepository    repository.UserRepository
	profileRepository repository.ProfileRepository
	likeRepository    repository.LikeRepository
	matchRepository   repository.MatchRepository
	log               logger.Logger
}

// NewMatchService создает новый экземпляр MatchService
func NewMatchService(
	userRepository repository.UserRepository,
	profileRepository repository.ProfileRepository,
	likeRepository repository.LikeRepository,
	matchRepository repository.MatchRepository,
	log logger.Logger,
) MatchService {
	return &matchService{
		userRepository:    userRepository,
		profileRepository: profileRepository,
		likeRepository:    likeRepository,
		matchRepository:   matchRepository,
		log:               log,
	}
}

// Like регистрирует симпатию и проверяет взаимность
// Повторный лайк той же пары идемпотентен: возвращается
// статус already_liked без побочных эффектов.
// При взаимной симпатии пара создается ровно один раз,
// независимо от порядка и одновременности лайков
func (s *matchService) Like(ctx context.Context, fromUserID, toUserID string, superlike bool) (*domain.LikeResult, error) {
	if fromUserID == toUserID {
		return nil, ErrSelfLike
	}

	target, err := s.userRepository.FindByID(ctx, toUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up target user: %w", err)
	}
	if !target.IsActive {
		return nil, ErrUserNotFound
	}

	like := &domain.Like{
		ID:          uuid.New().String(),
		FromUserID:  fromUserID,
		ToUserID:    toUserID,
		IsSuperlike: superlike,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.likeRepository.CreateIfAbsent(ctx, like)
	if err != nil {
		return nil, fmt.Errorf("failed to create like: %w", err)
	}
	if !created {
		return &domain.LikeResult{Status: domain.LikeStatusAlreadyLiked}, nil
	}

	reciprocal, err := s.likeRepository.Exists(ctx, toUserID, fromUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check reciprocal like: %w", err)
	}
	if !reciprocal {
		return &domain.LikeResult{Status: domain.LikeStatusCreated}, nil
	}

	match, err := s.matchRepository.CreateIfAbsent(ctx, &domain.Match{
		ID:        uuid.New().String(),
		User1ID:   fromUserID,
		User2ID:   toUserID,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	s.log.Info("Match formed",
		logger.String("match_id", match.ID),
		logger.String("user1_id", match.User1ID),
		logger.String("user2_id", match.User2ID))

	return &domain.LikeResult{
		Status:  domain.LikeStatusCreated,
		Matched: true,
		MatchID: match.ID,
	}, nil
}

// ListMatches возвращает активные пары пользователя,
// обогащенные анкетами собеседников. Пара без анкеты
// собеседника возвращается с пустой проекцией
func (s *matchService) ListMatches(ctx context.Context, userID string) ([]*domain.MatchView, error) {
	matches, err := s.matchRepository.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	views := make([]*domain.MatchView, 0, len(matches))
	for _, match := range matches {
		view := &domain.MatchView{Match: *match}

		summary, err := s.profileRepository.FindSummaryByUserID(ctx, match.PeerID(userID))
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("failed to load peer profile: %w", err)
			}
		} else {
			view.PeerProfile = summary
		}

		views = append(views, view)
	}

	return views, nil
}

// GetMatch возвращает пару по идентификатору
func (s *matchService) GetMatch(ctx context.Context, matchID string) (*domain.Match, error) {
	match, err := s.matchRepository.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "match not found")
		}
		return nil, fmt.Errorf("failed to load match: %w", err)
	}
	return match, nil
}
