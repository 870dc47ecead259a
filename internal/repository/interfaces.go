package repository

import (
	"context"
	"errors"
	"time"

	"SparkMatchPlatform/internal/domain"
)

// ErrNotFound запись не найдена в хранилище
var ErrNotFound = errors.New("record not found")

// UserRepository интерфейс для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// ProfileRepository интерфейс для работы с анкетами
// Discover выполняет фильтрованную выборку кандидатов:
// исключения (свои лайки, блокировки в обе стороны, неактивные
// и скрытые аккаунты), возрастное окно и двустороннее
// соответствие предпочтений применяются на стороне базы
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	FindSummaryByUserID(ctx context.Context, userID string) (*domain.ProfileSummary, error)
	Discover(ctx context.Context, filter *domain.DiscoveryFilter) ([]*domain.Profile, error)
}

// LikeRepository интерфейс для работы с симпатиями
// CreateIfAbsent возвращает false без ошибки, если запись
// для упорядоченной пары (from, to) уже существует
type LikeRepository interface {
	CreateIfAbsent(ctx context.Context, like *domain.Like) (bool, error)
	Exists(ctx context.Context, fromUserID, toUserID string) (bool, error)
}

// MatchRepository интерфейс для работы с парами
// CreateIfAbsent создает пару либо возвращает уже существующую
// для той же неупорядоченной пары пользователей
type MatchRepository interface {
	CreateIfAbsent(ctx context.Context, match *domain.Match) (*domain.Match, error)
	FindByID(ctx context.Context, id string) (*domain.Match, error)
	ListActiveByUser(ctx context.Context, userID string) ([]*domain.Match, error)
}

// MessageRepository интерфейс для работы с сообщениями
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	ListByMatch(ctx context.Context, matchID string, limit, offset int) ([]*domain.Message, error)
}

// RevocationRepository интерфейс для списка отозванных токенов
// Запись живет ровно столько, сколько оставалось жить токену
type RevocationRepository interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
