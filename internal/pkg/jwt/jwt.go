package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Виды токенов
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// Ошибки валидации токенов
var (
	// ErrMalformed токен не разбирается или подпись неверна
	ErrMalformed = errors.New("token is malformed")
	// ErrExpired срок действия токена истек
	ErrExpired = errors.New("token is expired")
	// ErrWrongKind вид токена не совпадает с ожидаемым
	ErrWrongKind = errors.New("unexpected token kind")
)

// TokenClaims структура для хранения пользовательских данных в JWT токене
// Уникальный идентификатор токена (jti) хранится в RegisteredClaims.ID
// и служит ключом отзыва
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// JTI возвращает уникальный идентификатор токена
func (c *TokenClaims) JTI() string {
	return c.ID
}

// RemainingTTL возвращает оставшееся время жизни токена
// Для просроченного токена возвращает ноль
func (c *TokenClaims) RemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	ttl := time.Until(c.ExpiresAt.Time)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// JWTManager интерфейс для работы с JWT токенами
type JWTManager interface {
	GenerateTokenPair(userID, role string) (string, string, error)
	GenerateAccessToken(userID, role string) (string, error)
	GenerateRefreshToken(userID, role string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
	ExtractClaims(token, kind string) (*TokenClaims, error)
}

// Manager реализация JWTManager
type Manager struct {
	accessSecretKey  string
	refreshSecretKey string
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
}

// NewManager создает новый экземпляр JWT менеджера
func NewManager(accessSecretKey, refreshSecretKey string, accessTokenTTL, refreshTokenTTL time.Duration) *Manager {
	return &Manager{
		accessSecretKey:  accessSecretKey,
		refreshSecretKey: refreshSecretKey,
		accessTokenTTL:   accessTokenTTL,
		refreshTokenTTL:  refreshTokenTTL,
	}
}

// GenerateTokenPair генерирует пару access и refresh токенов
func (m *Manager) GenerateTokenPair(userID, role string) (string, string, error) {
	accessToken, err := m.GenerateAccessToken(userID, role)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := m.GenerateRefreshToken(userID, role)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// GenerateAccessToken генерирует access токен
func (m *Manager) GenerateAccessToken(userID, role string) (string, error) {
	return m.generateToken(userID, role, TokenKindAccess, m.accessSecretKey, m.accessTokenTTL)
}

// GenerateRefreshToken генерирует refresh токен
func (m *Manager) GenerateRefreshToken(userID, role string) (string, error) {
	return m.generateToken(userID, role, TokenKindRefresh, m.refreshSecretKey, m.refreshTokenTTL)
}

// generateToken генерирует подписанный токен указанного вида
// Каждый токен получает свежий jti
func (m *Manager) generateToken(userID, role, kind, secretKey string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &TokenClaims{
		UserID:    userID,
		Role:      role,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

// ValidateAccessToken валидирует access токен
func (m *Manager) ValidateAccessToken(token string) (*TokenClaims, error) {
	return m.validateToken(token, TokenKindAccess, m.accessSecretKey)
}

// ValidateRefreshToken валидирует refresh токен
func (m *Manager) ValidateRefreshToken(token string) (*TokenClaims, error) {
	return m.validateToken(token, TokenKindRefresh, m.refreshSecretKey)
}

// validateToken валидирует токен с указанным секретным ключом
// Порядок проверок: структура/подпись, срок действия, вид токена
func (m *Manager) validateToken(token, kind, secretKey string) (*TokenClaims, error) {
	parsedToken, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Проверяем метод подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(secretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrMalformed
	}

	claims, ok := parsedToken.Claims.(*TokenClaims)
	if !ok || !parsedToken.Valid {
		return nil, ErrMalformed
	}

	if claims.TokenType != kind {
		return nil, ErrWrongKind
	}

	return claims, nil
}

// ExtractClaims извлекает claims токена, проверяя подпись,
// но игнорируя срок действия. Используется при отзыве: jti
// просроченного токена все еще нужен вызывающему коду,
// чтобы решить, что отзывать нечего
func (m *Manager) ExtractClaims(token, kind string) (*TokenClaims, error) {
	secretKey := m.accessSecretKey
	if kind == TokenKindRefresh {
		secretKey = m.refreshSecretKey
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsedToken, err := parser.ParseWithClaims(token, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, ErrMalformed
	}

	claims, ok := parsedToken.Claims.(*TokenClaims)
	if !ok {
		return nil, ErrMalformed
	}

	if claims.TokenType != kind {
		return nil, ErrWrongKind
	}

	return claims, nil
}
