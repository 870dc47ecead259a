package handler

import (
	"net/http"
	"strconv"

	"SparkMatchPlatform/internal/middleware"
	"SparkMatchPlatform/internal/service"
	apperrors "SparkMatchPlatform/pkg/errors"
	"SparkMatchPlatform/pkg/logger"
)

// UserHandler обрабатывает HTTP запросы профилей и ленты подбора
type UserHandler struct {
	logger           logger.Logger
	discoveryService service.DiscoveryService
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(logger logger.Logger, discoveryService service.DiscoveryService) *UserHandler {
	return &UserHandler{
		logger:           logger,
		discoveryService: discoveryService,
	}
}

// Discover возвращает ленту кандидатов для пользователя
func (h *UserHandler) Discover(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		apperrors.WriteHTTP(w, apperrors.New(apperrors.ErrUnauthorized, "authentication required"))
		return
	}

	query := r.URL.Query()
	minAge, _ := strconv.Atoi(query.Get("min_age"))
	maxAge, _ := strconv.Atoi(query.Get("max_age"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	candidates, err := h.discoveryService.Discover(r.Context(), userID, minAge, maxAge, limit)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	h.logger.Debug("Discovery request served",
		logger.String("user_id", userID),
		logger.Int("candidates", len(candidates)))

	writeJSON(w, http.StatusOK, map[string]interface{}{"profiles": candidates})
}
