package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SparkMatchPlatform/internal/repository"
	"github.com/go-redis/redis/v8"
)

// RevocationRepository реализация списка отозванных токенов для Redis
// Ключ bl:<jti> живет ровно столько, сколько оставалось жить токену:
// надгробие никогда не переживает токен, который оно блокирует,
// и удаляется самим Redis по истечении TTL
type RevocationRepository struct {
	client *redis.Client
}

// NewRevocationRepository создает новый экземпляр RevocationRepository
func NewRevocationRepository(client *redis.Client) repository.RevocationRepository {
	return &RevocationRepository{client: client}
}

// Revoke записывает надгробие для jti с указанным TTL
// Нулевой TTL означает, что токен уже истек и отзывать нечего
func (r *RevocationRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	key := fmt.Sprintf("bl:%s", jti)

	err := r.client.Set(ctx, key, "1", ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set revocation entry: %w", err)
	}

	return nil
}

// IsRevoked проверяет наличие надгробия для jti
func (r *RevocationRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	key := fmt.Sprintf("bl:%s", jti)

	err := r.client.Get(ctx, key).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check revocation entry: %w", err)
	}

	return true, nil
}
