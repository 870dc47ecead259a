package handler

import (
	"encoding/json"
	"net/http"

	"SparkMatchPlatform/internal/middleware"
	"SparkMatchPlatform/internal/service"
	apperrors "SparkMatchPlatform/pkg/errors"
	"SparkMatchPlatform/pkg/logger"
)

// MatchHandler обрабатывает HTTP запросы симпатий и пар
type MatchHandler struct {
	logger       logger.Logger
	matchService service.MatchService
}

// NewMatchHandler создает новый обработчик симпатий и пар
func NewMatchHandler(logger logger.Logger, matchService service.MatchService) *MatchHandler {
	return &MatchHandler{
		logger:       logger,
		matchService: matchService,
	}
}

// likeRequest запрос на создание симпатии
type likeRequest struct {
	ToUserID  string `json:"to_user_id"`
	Superlike bool   `json:"superlike"`
}

// Like обрабатывает создание симпатии
func (h *MatchHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		apperrors.WriteHTTP(w, apperrors.New(apperrors.ErrUnauthorized, "authentication required"))
		return
	}

	var req likeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ToUserID == "" {
		apperrors.WriteHTTP(w, apperrors.New(apperrors.ErrValidation, "to_user_id is required"))
		return
	}

	result, err := h.matchService.Like(r.Context(), userID, req.ToUserID, req.Superlike)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// List возвращает активные пары пользователя
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		apperrors.WriteHTTP(w, apperrors.New(apperrors.ErrUnauthorized, "authentication required"))
		return
	}

	matches, err := h.matchService.ListMatches(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list matches", logger.Error(err),
			logger.String("user_id", userID))
		apperrors.WriteHTTP(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"matches": matches})
}
