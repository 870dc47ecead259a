package service_test

import (
	"context"
	"testing"
	"time"

	"SparkMatchPlatform/internal/domain"
	"SparkMatchPlatform/internal/pkg/jwt"
	"SparkMatchPlatform/internal/pkg/password"
	"SparkMatchPlatform/internal/repository"
	"SparkMatchPlatform/internal/service"
	"SparkMatchPlatform/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository мок для UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockRevocationRepository мок для RevocationRepository
type MockRevocationRepository struct {
	mock.Mock
}

func (m *MockRevocationRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	args := m.Called(ctx, jti, ttl)
	return args.Error(0)
}

func (m *MockRevocationRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

func setupAuthService(failOpen bool) (service.AuthService, *MockUserRepository, *MockRevocationRepository, jwt.JWTManager) {
	userRepo := &MockUserRepository{}
	revocationRepo := &MockRevocationRepository{}

	testLogger, _ := logger.NewLogger("dev", "error", "test")

	jwtManager := jwt.NewManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	passwordHasher := password.NewBcryptHasher(4)

	authService := service.NewAuthService(
		userRepo,
		revocationRepo,
		jwtManager,
		passwordHasher,
		failOpen,
		testLogger,
	)

	return authService, userRepo, revocationRepo, jwtManager
}

func TestAuthService_Register_NewUser(t *testing.T) {
	authService, userRepo, _, _ := setupAuthService(true)

	ctx := context.Background()
	email := "new@example.com"

	userRepo.On("FindByEmail", ctx, email).Return(nil, repository.ErrNotFound)
	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := authService.Register(ctx, email, "Password123")

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, email, user.Email)
	assert.True(t, user.IsActive)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, user.PasswordHash)

	userRepo.AssertExpectations(t)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	authService, userRepo, _, _ := setupAuthService(true)

	ctx := context.Background()
	email := "existing@example.com"

	existingUser := &domain.User{
		ID:       "user-1",
		Email:    email,
		IsActive: true,
	}

	userRepo.On("FindByEmail", ctx, email).Return(existingUser, nil)

	user, err := authService.Register(ctx, email, "Password123")

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Equal(t, service.ErrEmailTaken, err)

	userRepo.AssertExpectations(t)
}

func TestAuthService_Register_ReactivatesInactiveUser(t *testing.T) {
	authService, userRepo, _, _ := setupAuthService(true)

	ctx := context.Background()
	email := "deactivated@example.com"

	existingUser := &domain.User{
		ID:           "user-1",
		Email:        email,
		PasswordHash: "old-hash",
		IsActive:     false,
	}

	userRepo.On("FindByEmail", ctx, email).Return(existingUser, nil)
	userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := authService.Register(ctx, email, "Password123")

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "old-hash", user.PasswordHash)

	userRepo.AssertExpectations(t)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	authService, _, _, _ := setupAuthService(true)

	user, err := authService.Register(context.Background(), "weak@example.com", "short")

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Equal(t, service.ErrWeakPassword, err)
}

func TestAuthService_Login_Success(t *testing.T) {
	authService, userRepo, _, jwtManager := setupAuthService(true)

	ctx := context.Background()
	email := "user@example.com"
	plainPassword := "Password123"

	hasher := password.NewBcryptHasher(4)
	hash, err := hasher.Hash(plainPassword)
	require.NoError(t, err)

	user := &domain.User{
		ID:           "user-1",
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		Role:         domain.RoleUser,
	}

	userRepo.On("FindByEmail", ctx, email).Return(user, nil)

	tokens, err := authService.Login(ctx, email, plainPassword)

	require.NoError(t, err)
	require.NotNil(t, tokens)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	// Выданный access токен проходит валидацию
	claims, err := jwtManager.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	userRepo.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	authService, userRepo, _, _ := setupAuthService(true)

	ctx := context.Background()
	email := "user@example.com"

	hasher := password.NewBcryptHasher(4)
	hash, _ := hasher.Hash("CorrectPassword1")

	user := &domain.User{
		ID:           "user-1",
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}

	userRepo.On("FindByEmail", ctx, email).Return(user, nil)

	tokens, err := authService.Login(ctx, email, "WrongPassword1")

	assert.Error(t, err)
	assert.Nil(t, tokens)
	assert.Equal(t, service.ErrInvalidCredentials, err)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	authService, userRepo, _, _ := setupAuthService(true)

	ctx := context.Background()
	userRepo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, repository.ErrNotFound)

	tokens, err := authService.Login(ctx, "nobody@example.com", "Password123")

	assert.Error(t, err)
	assert.Nil(t, tokens)
	assert.Equal(t, service.ErrInvalidCredentials, err)
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	authService, userRepo, _, _ := setupAuthService(true)

	ctx := context.Background()
	email := "inactive@example.com"

	user := &domain.User{
		ID:       "user-1",
		Email:    email,
		IsActive: false,
	}

	userRepo.On("FindByEmail", ctx, email).Return(user, nil)

	tokens, err := authService.Login(ctx, email, "Password123")

	assert.Error(t, err)
	assert.Nil(t, tokens)
	assert.Equal(t, service.ErrInactiveUser, err)
}

func TestAuthService_Authenticate_Success(t *testing.T) {
	authService, userRepo, revocationRepo, jwtManager := setupAuthService(true)

	ctx := context.Background()

	token, err := jwtManager.GenerateAccessToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	user := &domain.User{ID: "user-1", IsActive: true}

	revocationRepo.On("IsRevoked", ctx, mock.AnythingOfType("string")).Return(false, nil)
	userRepo.On("FindByID", ctx, "user-1").Return(user, nil)

	authenticated, err := authService.Authenticate(ctx, token)

	require.NoError(t, err)
	assert.Equal(t, "user-1", authenticated.ID)
}

func TestAuthService_Authenticate_RevokedToken(t *testing.T) {
	authService, _, revocationRepo, jwtManager := setupAuthService(true)

	ctx := context.Background()

	token, err := jwtManager.GenerateAccessToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	revocationRepo.On("IsRevoked", ctx, mock.AnythingOfType("string")).Return(true, nil)

	user, err := authService.Authenticate(ctx, token)

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Equal(t, service.ErrTokenRevoked, err)
}

func TestAuthService_Authenticate_RefreshTokenRejected(t *testing.T) {
	authService, _, _, jwtManager := setupAuthService(true)

	token, err := jwtManager.GenerateRefreshToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	user, err := authService.Authenticate(context.Background(), token)

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Equal(t, service.ErrTokenWrongKind, err)
}

func TestAuthService_Authenticate_MalformedToken(t *testing.T) {
	authService, _, _, _ := setupAuthService(true)

	user, err := authService.Authenticate(context.Background(), "not-a-token")

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Equal(t, service.ErrTokenMalformed, err)
}

func TestAuthService_Authenticate_ExpiredToken(t *testing.T) {
	userRepo := &MockUserRepository{}
	revocationRepo := &MockRevocationRepository{}
	testLogger, _ := logger.NewLogger("dev", "error", "test")

	// Менеджер с отрицательным TTL выдает уже просроченные токены
	expiredManager := jwt.NewManager("access-secret", "refresh-secret", -time.Minute, -time.Minute)
	authService := service.NewAuthService(userRepo, revocationRepo, expiredManager,
		password.NewBcryptHasher(4), true, testLogger)

	token, err := expiredManager.GenerateAccessToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	user, err := authService.Authenticate(context.Background(), token)

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Equal(t, service.ErrTokenExpired, err)
}

func TestAuthService_Authenticate_StoreFailureOpen(t *testing.T) {
	authService, userRepo, revocationRepo, jwtManager := setupAuthService(true)

	ctx := context.Background()

	token, err := jwtManager.GenerateAccessToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	user := &domain.User{ID: "user-1", IsActive: true}

	// При политике open сбой хранилища отзыва пропускает токен
	revocationRepo.On("IsRevoked", ctx, mock.AnythingOfType("string")).Return(false, assert.AnError)
	userRepo.On("FindByID", ctx, "user-1").Return(user, nil)

	authenticated, err := authService.Authenticate(ctx, token)

	require.NoError(t, err)
	assert.Equal(t, "user-1", authenticated.ID)
}

func TestAuthService_Authenticate_StoreFailureClosed(t *testing.T) {
	authService, _, revocationRepo, jwtManager := setupAuthService(false)

	ctx := context.Background()

	token, err := jwtManager.GenerateAccessToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	// При политике closed сбой хранилища отклоняет запрос
	revocationRepo.On("IsRevoked", ctx, mock.AnythingOfType("string")).Return(false, assert.AnError)

	user, err := authService.Authenticate(ctx, token)

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Equal(t, service.ErrRevocationUnavailable, err)
}

func TestAuthService_Refresh_RotatesTokens(t *testing.T) {
	authService, userRepo, revocationRepo, jwtManager := setupAuthService(true)

	ctx := context.Background()

	refreshToken, err := jwtManager.GenerateRefreshToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	oldClaims, err := jwtManager.ValidateRefreshToken(refreshToken)
	require.NoError(t, err)

	user := &domain.User{ID: "user-1", IsActive: true, Role: domain.RoleUser}

	revocationRepo.On("IsRevoked", ctx, oldClaims.JTI()).Return(false, nil)
	userRepo.On("FindByID", ctx, "user-1").Return(user, nil)
	// Старый refresh токен отзывается при ротации
	revocationRepo.On("Revoke", ctx, oldClaims.JTI(), mock.AnythingOfType("time.Duration")).Return(nil)

	tokens, err := authService.Refresh(ctx, refreshToken)

	require.NoError(t, err)
	require.NotNil(t, tokens)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEqual(t, refreshToken, tokens.RefreshToken)

	revocationRepo.AssertExpectations(t)
}

func TestAuthService_Refresh_RevokedToken(t *testing.T) {
	authService, _, revocationRepo, jwtManager := setupAuthService(true)

	ctx := context.Background()

	refreshToken, err := jwtManager.GenerateRefreshToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	revocationRepo.On("IsRevoked", ctx, mock.AnythingOfType("string")).Return(true, nil)

	tokens, err := authService.Refresh(ctx, refreshToken)

	assert.Error(t, err)
	assert.Nil(t, tokens)
	assert.Equal(t, service.ErrTokenRevoked, err)
}

func TestAuthService_Refresh_AccessTokenRejected(t *testing.T) {
	authService, _, _, jwtManager := setupAuthService(true)

	accessToken, err := jwtManager.GenerateAccessToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	tokens, err := authService.Refresh(context.Background(), accessToken)

	assert.Error(t, err)
	assert.Nil(t, tokens)
	assert.Equal(t, service.ErrTokenWrongKind, err)
}

func TestAuthService_Logout_RevokesBothTokens(t *testing.T) {
	authService, _, revocationRepo, jwtManager := setupAuthService(true)

	ctx := context.Background()

	accessToken, refreshToken, err := jwtManager.GenerateTokenPair("user-1", domain.RoleUser)
	require.NoError(t, err)

	revocationRepo.On("Revoke", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration")).Return(nil).Twice()

	err = authService.Logout(ctx, accessToken, refreshToken)

	require.NoError(t, err)
	revocationRepo.AssertExpectations(t)
}

func TestAuthService_Logout_ExpiredTokenIsNoop(t *testing.T) {
	userRepo := &MockUserRepository{}
	revocationRepo := &MockRevocationRepository{}
	testLogger, _ := logger.NewLogger("dev", "error", "test")

	expiredManager := jwt.NewManager("access-secret", "refresh-secret", -time.Minute, -time.Minute)
	authService := service.NewAuthService(userRepo, revocationRepo, expiredManager,
		password.NewBcryptHasher(4), true, testLogger)

	accessToken, refreshToken, err := expiredManager.GenerateTokenPair("user-1", domain.RoleUser)
	require.NoError(t, err)

	// Просроченные токены отзывать не нужно, Revoke не вызывается
	err = authService.Logout(context.Background(), accessToken, refreshToken)

	require.NoError(t, err)
	revocationRepo.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Logout_MalformedTokenIsNoop(t *testing.T) {
	authService, _, revocationRepo, _ := setupAuthService(true)

	err := authService.Logout(context.Background(), "garbage", "")

	require.NoError(t, err)
	revocationRepo.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
}
