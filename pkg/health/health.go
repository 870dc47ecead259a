package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthChecker интерфейс для проверки здоровья сервиса
type HealthChecker interface {
	Check(ctx context.Context) *HealthStatus
}

// HealthStatus представляет статус здоровья сервиса
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]Status `json:"services,omitempty"`
	Version   string            `json:"version,omitempty"`
}

// Status представляет статус зависимости
type Status struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

// DependencyChecker проверяет доступность внешних зависимостей
type DependencyChecker struct {
	version string
	pool    *pgxpool.Pool
	redis   *redis.Client
}

// NewDependencyChecker создает новый DependencyChecker
func NewDependencyChecker(version string, pool *pgxpool.Pool, redisClient *redis.Client) *DependencyChecker {
	return &DependencyChecker{
		version: version,
		pool:    pool,
		redis:   redisClient,
	}
}

// Check проверяет здоровье сервиса и его зависимостей
func (c *DependencyChecker) Check(ctx context.Context) *HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Services:  make(map[string]Status),
		Version:   c.version,
	}

	// Проверяем PostgreSQL
	if c.pool != nil {
		if err := c.pool.Ping(ctx); err != nil {
			status.Status = "degraded"
			status.Services["postgres"] = Status{Status: "unhealthy", Details: err.Error()}
		} else {
			status.Services["postgres"] = Status{Status: "healthy"}
		}
	}

	// Проверяем Redis
	if c.redis != nil {
		if err := c.redis.Ping(ctx).Err(); err != nil {
			status.Status = "degraded"
			status.Services["redis"] = Status{Status: "unhealthy", Details: err.Error()}
		} else {
			status.Services["redis"] = Status{Status: "healthy"}
		}
	}

	return status
}

// Handler создает HTTP обработчик для health check эндпоинта
func Handler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := checker.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		json.NewEncoder(w).Encode(status)
	}
}

// ReadyHandler создает HTTP обработчик для ready check эндпоинта
// Возвращает 503, если хотя бы одна зависимость недоступна
func ReadyHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := checker.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if status.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		json.NewEncoder(w).Encode(status)
	}
}
