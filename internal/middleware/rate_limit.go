package middleware

import (
	"net"
	"net/http"

	"SparkMatchPlatform/pkg/config"
	apperrors "SparkMatchPlatform/pkg/errors"
	"SparkMatchPlatform/pkg/logger"
	"SparkMatchPlatform/pkg/metrics"
	"SparkMatchPlatform/pkg/ratelimit"
)

// RateLimitMiddleware применяет скользящее окно лимитов
// к классам маршрутов. Аутентифицированные запросы считаются
// по пользователю, анонимные по IP адресу
type RateLimitMiddleware struct {
	rateLimiter ratelimit.RateLimiter
	failOpen    bool
	metrics     *metrics.Metrics
	log         logger.Logger
}

// NewRateLimitMiddleware создает новый экземпляр RateLimitMiddleware
func NewRateLimitMiddleware(rateLimiter ratelimit.RateLimiter, failOpen bool, m *metrics.Metrics, log logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimiter: rateLimiter,
		failOpen:    failOpen,
		metrics:     m,
		log:         log,
	}
}

// Class возвращает middleware для одного класса маршрутов.
// Отклоненный запрос не записывается в окно: заблокированный
// клиент не может продлевать собственную блокировку
func (m *RateLimitMiddleware) Class(class string, policy config.RateLimitPolicy) func(http.Handler) http.Handler {
	window := policy.WindowDuration()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := class + ":" + m.clientKey(r)

			exceeded, err := m.rateLimiter.CheckRateLimit(r.Context(), key, policy.Limit, window)
			if err != nil {
				if !m.failOpen {
					apperrors.WriteHTTP(w, apperrors.New(apperrors.ErrStoreUnavailable, "service temporarily unavailable"))
					return
				}
				m.log.Error("Rate limit check failed, allowing request",
					logger.Error(err), logger.String("class", class))
			} else if exceeded {
				m.metrics.RateLimitRejections.WithLabelValues(class).Inc()
				apperrors.WriteHTTP(w, apperrors.New(apperrors.ErrTooManyRequests, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey определяет субъект учета: пользователь, если запрос
// уже прошел аутентификацию, иначе IP адрес клиента
func (m *RateLimitMiddleware) clientKey(r *http.Request) string {
	if userID, ok := UserIDFromContext(r.Context()); ok {
		return "user:" + userID
	}
	return "ip:" + clientIP(r)
}

// clientIP извлекает IP адрес клиента из запроса
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// Берем первый адрес из цепочки прокси
		for i := 0; i < len(forwarded); i++ {
			if forwarded[i] == ',' {
				return forwarded[:i]
			}
		}
		return forwarded
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
