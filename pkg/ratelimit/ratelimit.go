package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RateLimiter интерфейс для ограничения частоты запросов
type RateLimiter interface {
	// CheckRateLimit проверяет лимит для заданного ключа
	// Возвращает true, если лимит превышен
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RedisRateLimiter реализация RateLimiter с использованием Redis
// Использует sliding window log: каждый запрос хранится как элемент
// sorted set со score равным времени запроса в миллисекундах
type RedisRateLimiter struct {
	client *redis.Client
}

// Скрипт выполняет все четыре шага как единую атомарную операцию:
// 1. Удаление записей старше начала окна
// 2. Подсчет оставшихся записей
// 3. Если count >= limit, то отказ и запрос НЕ записывается
// 4. Иначе запись текущего запроса и обновление TTL ключа
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
	return 1
end
redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window)
return 0
`)

// NewRedisRateLimiter создает новый экземпляр RedisRateLimiter
func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{client: client}
}

// CheckRateLimit проверяет, не превышен ли лимит запросов для заданного ключа
// Отклоненный запрос не записывается в окно и не продлевает блокировку
func (r *RedisRateLimiter) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	// Формируем ключ для Redis
	redisKey := fmt.Sprintf("rate_limit:%s", key)

	now := time.Now().UnixMilli()

	// Элемент должен быть уникальным даже при совпадении миллисекунды
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	result, err := slidingWindowScript.Run(ctx, r.client,
		[]string{redisKey},
		now, window.Milliseconds(), limit, member,
	).Int()
	if err != nil {
		return true, fmt.Errorf("failed to execute rate limit script: %w", err)
	}

	return result == 1, nil
}
