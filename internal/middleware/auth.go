package middleware

import (
	"context"
	"net/http"
	"strings"

	"SparkMatchPlatform/internal/domain"
	"SparkMatchPlatform/internal/service"
	apperrors "SparkMatchPlatform/pkg/errors"
	"SparkMatchPlatform/pkg/logger"
)

// AuthMiddleware проверяет access токен и помещает
// идентификатор и роль пользователя в контекст запроса
type AuthMiddleware struct {
	authService service.AuthService
	log         logger.Logger
}

// NewAuthMiddleware создает новый экземпляр AuthMiddleware
func NewAuthMiddleware(authService service.AuthService, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		log:         log,
	}
}

// Handle выполняет полную проверку access токена:
// подпись, срок действия, вид, отзыв, активность учетной записи
func (m *AuthMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractBearerToken(r)
		if !ok {
			apperrors.WriteHTTP(w, apperrors.New(apperrors.ErrUnauthorized, "missing or malformed authorization header"))
			return
		}

		user, err := m.authService.Authenticate(r.Context(), token)
		if err != nil {
			apperrors.WriteHTTP(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), service.UserIDKey, user.ID)
		ctx = context.WithValue(ctx, service.UserRoleKey, user.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin пропускает только пользователей с ролью admin.
// Применяется после Handle
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(service.UserRoleKey).(string)
		if !ok || role != domain.RoleAdmin {
			apperrors.WriteHTTP(w, apperrors.New(apperrors.ErrForbidden, "admin role required"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractBearerToken извлекает токен из заголовка Authorization
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

// UserIDFromContext возвращает идентификатор пользователя из контекста
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(service.UserIDKey).(string)
	return userID, ok && userID != ""
}
