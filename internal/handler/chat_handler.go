package handler

import (
	"net/http"
	"strconv"

	"SparkMatchPlatform/internal/middleware"
	"SparkMatchPlatform/internal/service"
	apperrors "SparkMatchPlatform/pkg/errors"
	"SparkMatchPlatform/pkg/logger"
)

// ChatHandler обрабатывает HTTP запросы истории чата
type ChatHandler struct {
	logger      logger.Logger
	chatService service.ChatService
}

// NewChatHandler создает новый обработчик чата
func NewChatHandler(logger logger.Logger, chatService service.ChatService) *ChatHandler {
	return &ChatHandler{
		logger:      logger,
		chatService: chatService,
	}
}

// History возвращает страницу истории сообщений пары
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		apperrors.WriteHTTP(w, apperrors.New(apperrors.ErrUnauthorized, "authentication required"))
		return
	}

	matchID := r.PathValue("matchID")
	if matchID == "" {
		apperrors.WriteHTTP(w, apperrors.New(apperrors.ErrValidation, "match id is required"))
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	messages, err := h.chatService.GetHistory(r.Context(), matchID, userID, limit, offset)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}
