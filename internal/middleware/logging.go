package middleware

import (
	"context"
	"net/http"
	"time"

	"SparkMatchPlatform/pkg/logger"
	"github.com/google/uuid"
)

// requestIDKey ключ контекста для идентификатора запроса
type requestIDKey struct{}

// LoggingMiddleware логирует все HTTP запросы
// Каждый запрос получает request_id, который попадает
// в контекст и во все записи лога запроса
func LoggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()

			ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
			r = r.WithContext(ctx)

			logFields := []logger.Field{
				logger.String("method", r.Method),
				logger.String("url", r.URL.String()),
				logger.String("remote_addr", r.RemoteAddr),
				logger.String("request_id", requestID),
			}

			log.Debug("Started request", logFields...)

			start := time.Now()

			// Обертка для перехвата статуса ответа
			wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logFields = append(logFields, logger.Int("status_code", wrapped.statusCode))
			logFields = append(logFields, logger.Float64("duration_ms", float64(time.Since(start).Milliseconds())))

			log.Info("Completed request", logFields...)
		})
	}
}

// RequestIDFromContext возвращает идентификатор запроса из контекста
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return ""
}

// statusWriter обертка для перехвата статуса ответа
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader перехватывает установку статуса
func (sw *statusWriter) WriteHeader(code int) {
	sw.statusCode = code
	sw.ResponseWriter.WriteHeader(code)
}
