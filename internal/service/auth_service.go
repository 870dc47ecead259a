package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SparkMatchPlatform/internal/domain"
	"SparkMatchPlatform/internal/pkg/jwt"
	"SparkMatchPlatform/internal/pkg/password"
	"SparkMatchPlatform/internal/repository"
	apperrors "SparkMatchPlatform/pkg/errors"
	"SparkMatchPlatform/pkg/logger"
	"github.com/google/uuid"
)

// Ошибки аутентификации. Сравнение по значению: каждая ошибка
// уникальный экземпляр, несмотря на совпадающие HTTP коды
var (
	// ErrInvalidCredentials неверный email или пароль
	ErrInvalidCredentials = apperrors.New(apperrors.ErrUnauthorized, "invalid credentials")
	// ErrTokenMalformed токен не разбирается или подпись неверна
	ErrTokenMalformed = apperrors.New(apperrors.ErrUnauthorized, "token is malformed")
	// ErrTokenExpired срок действия токена истек
	ErrTokenExpired = apperrors.New(apperrors.ErrUnauthorized, "token is expired")
	// ErrTokenRevoked токен был отозван
	ErrTokenRevoked = apperrors.New(apperrors.ErrUnauthorized, "token has been revoked")
	// ErrTokenWrongKind вид токена не совпадает с ожидаемым
	ErrTokenWrongKind = apperrors.New(apperrors.ErrUnauthorized, "unexpected token kind")
	// ErrInactiveUser учетная запись деактивирована
	ErrInactiveUser = apperrors.New(apperrors.ErrUnauthorized, "user is not active")
	// ErrEmailTaken email уже занят активной учетной записью
	ErrEmailTaken = apperrors.New(apperrors.ErrConflict, "email already registered")
	// ErrWeakPassword пароль не проходит требования сложности
	ErrWeakPassword = apperrors.New(apperrors.ErrValidation, "password does not meet complexity requirements")
	// ErrRevocationUnavailable хранилище отозванных токенов недоступно
	ErrRevocationUnavailable = apperrors.New(apperrors.ErrStoreUnavailable, "revocation store unavailable")
)

// AuthService интерфейс для сервиса аутентификации
type AuthService interface {
	Register(ctx context.Context, email, plainPassword string) (*domain.User, error)
	Login(ctx context.Context, email, plainPassword string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

// authService реализация AuthService
type authService struct {
	userRepository       repository.UserRepository
	revocationRepository repository.RevocationRepository
	jwtManager           jwt.JWTManager
	passwordHasher       password.Hasher
	failOpen             bool
	log                  logger.Logger
}

// NewAuthService создает новый экземпляр AuthService
// failOpen определяет поведение при недоступности хранилища отзыва:
// при true токен считается не отозванным и ошибка логируется,
// при false запрос отклоняется
func NewAuthService(
	userRepository repository.UserRepository,
	revocationRepository repository.RevocationRepository,
	jwtManager jwt.JWTManager,
	passwordHasher password.Hasher,
	failOpen bool,
	log logger.Logger,
) AuthService {
	return &authService{
		userRepository:       userRepository,
		revocationRepository: revocationRepository,
		jwtManager:           jwtManager,
		passwordHasher:       passwordHasher,
		failOpen:             failOpen,
		log:                  log,
	}
}

// Register создает новую учетную запись
// Регистрация на email деактивированной учетной записи
// реактивирует ее с новым паролем вместо ошибки конфликта
func (s *authService) Register(ctx context.Context, email, plainPassword string) (*domain.User, error) {
	if email == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "email is required")
	}
	if !s.passwordHasher.Validate(plainPassword) {
		return nil, ErrWeakPassword
	}

	existing, err := s.userRepository.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	passwordHash, err := s.passwordHasher.Hash(plainPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if existing != nil {
		if existing.IsActive {
			return nil, ErrEmailTaken
		}

		// Реактивация деактивированной учетной записи
		existing.IsActive = true
		existing.PasswordHash = passwordHash
		existing.UpdatedAt = time.Now().UTC()
		if err := s.userRepository.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to reactivate user: %w", err)
		}

		s.log.Info("User reactivated", logger.String("user_id", existing.ID))
		return existing, nil
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		IsVerified:   true,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepository.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("User registered", logger.String("user_id", user.ID))
	return user, nil
}

// Login реализует аутентификацию пользователя
func (s *authService) Login(ctx context.Context, email, plainPassword string) (*domain.TokenPair, error) {
	if email == "" || plainPassword == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepository.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	if !s.passwordHasher.Check(plainPassword, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.jwtManager.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.log.Info("User logged in", logger.String("user_id", user.ID))

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh выпускает новую пару токенов по действующему refresh токену
// Старый refresh токен отзывается: повторное использование невозможно
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}

	revoked, err := s.checkRevocation(ctx, claims.JTI())
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	user, err := s.userRepository.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	// Ротация: старый refresh токен отзывается на остаток его жизни
	if err := s.revocationRepository.Revoke(ctx, claims.JTI(), claims.RemainingTTL()); err != nil {
		if !s.failOpen {
			return nil, ErrRevocationUnavailable
		}
		s.log.Error("Failed to revoke rotated refresh token", logger.Error(err),
			logger.String("user_id", user.ID))
	}

	accessToken, newRefreshToken, err := s.jwtManager.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// Logout отзывает оба предъявленных токена
// Токены отзываются независимо: сбой отзыва одного
// не останавливает отзыв другого. Просроченный или
// нечитаемый токен пропускается без ошибки
func (s *authService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	var firstErr error

	if err := s.revokeToken(ctx, accessToken, jwt.TokenKindAccess); err != nil {
		firstErr = err
	}

	if refreshToken != "" {
		if err := s.revokeToken(ctx, refreshToken, jwt.TokenKindRefresh); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// revokeToken отзывает один токен по его jti
func (s *authService) revokeToken(ctx context.Context, token, kind string) error {
	claims, err := s.jwtManager.ExtractClaims(token, kind)
	if err != nil {
		// Нечитаемый токен отозвать нечем
		s.log.Debug("Skipping revocation of unreadable token", logger.String("kind", kind))
		return nil
	}

	ttl := claims.RemainingTTL()
	if ttl <= 0 {
		// Просроченный токен уже недействителен
		return nil
	}

	if err := s.revocationRepository.Revoke(ctx, claims.JTI(), ttl); err != nil {
		if !s.failOpen {
			return ErrRevocationUnavailable
		}
		s.log.Error("Failed to write revocation entry", logger.Error(err),
			logger.String("kind", kind))
		return nil
	}

	s.log.Info("Token revoked", logger.String("kind", kind),
		logger.String("user_id", claims.UserID))
	return nil
}

// Authenticate выполняет полную проверку access токена:
// подпись и структура, срок действия, вид, отзыв, активность учетной записи
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.jwtManager.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, mapTokenError(err)
	}

	revoked, err := s.checkRevocation(ctx, claims.JTI())
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	user, err := s.userRepository.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	return user, nil
}

// checkRevocation проверяет jti по списку отозванных токенов
// с учетом политики поведения при недоступности хранилища
func (s *authService) checkRevocation(ctx context.Context, jti string) (bool, error) {
	revoked, err := s.revocationRepository.IsRevoked(ctx, jti)
	if err != nil {
		if !s.failOpen {
			return false, ErrRevocationUnavailable
		}
		s.log.Error("Revocation check failed, allowing token", logger.Error(err))
		return false, nil
	}
	return revoked, nil
}

// mapTokenError переводит ошибки JWT пакета в ошибки сервиса
func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrWrongKind):
		return ErrTokenWrongKind
	default:
		return ErrTokenMalformed
	}
}
