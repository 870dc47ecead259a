package ws

import (
	"context"
	"net/http"
	"time"

	"SparkMatchPlatform/internal/domain"
	"SparkMatchPlatform/internal/service"
	"SparkMatchPlatform/pkg/config"
	apperrors "SparkMatchPlatform/pkg/errors"
	"SparkMatchPlatform/pkg/logger"
	"SparkMatchPlatform/pkg/metrics"
	"SparkMatchPlatform/pkg/ratelimit"

	"github.com/gorilla/websocket"
)

// Типы исходящих кадров
const (
	frameTypeMessage = "message"
	frameTypeError   = "error"
)

// outboundFrame представляет исходящий кадр клиенту.
// Входящие кадры структуры не имеют: клиент шлет сырой текст
type outboundFrame struct {
	Type      string    `json:"type"`
	MessageID string    `json:"message_id,omitempty"`
	MatchID   string    `json:"match_id,omitempty"`
	SenderID  string    `json:"sender_id,omitempty"`
	Content   string    `json:"content,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ChatHandler обслуживает websocket подключения чата
type ChatHandler struct {
	authService service.AuthService
	chatService service.ChatService
	registry    *ConnectionRegistry
	rateLimiter ratelimit.RateLimiter
	chatPolicy  config.RateLimitPolicy
	failOpen    bool
	metrics     *metrics.Metrics
	upgrader    websocket.Upgrader
	log         logger.Logger
}

// NewChatHandler создает новый обработчик websocket чата
func NewChatHandler(
	authService service.AuthService,
	chatService service.ChatService,
	registry *ConnectionRegistry,
	rateLimiter ratelimit.RateLimiter,
	chatPolicy config.RateLimitPolicy,
	failOpen bool,
	m *metrics.Metrics,
	log logger.Logger,
) *ChatHandler {
	return &ChatHandler{
		authService: authService,
		chatService: chatService,
		registry:    registry,
		rateLimiter: rateLimiter,
		chatPolicy:  chatPolicy,
		failOpen:    failOpen,
		metrics:     m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// ServeWS принимает websocket подключение к чату пары.
// Токен передается параметром запроса, потому что браузерный
// websocket API не позволяет выставить заголовок Authorization.
// Ошибки аутентификации и авторизации закрывают соединение
// с кодом 1008 уже после рукопожатия
func (h *ChatHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("matchID")
	token := r.URL.Query().Get("token")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", logger.Error(err))
		return
	}

	ctx := r.Context()

	user, err := h.authService.Authenticate(ctx, token)
	if err != nil {
		h.closeWithPolicyViolation(conn, "authentication failed")
		return
	}

	match, err := h.chatService.AuthorizeParticipant(ctx, matchID, user.ID)
	if err != nil {
		h.closeWithPolicyViolation(conn, "access denied")
		return
	}

	session := NewSession(conn, user.ID, match.ID)
	h.registry.Connect(session)
	h.metrics.IncrementActiveConnections("chat")

	h.log.Info("Chat connection established",
		logger.String("user_id", user.ID),
		logger.String("match_id", match.ID))

	defer func() {
		h.registry.Disconnect(session)
		h.metrics.DecrementActiveConnections("chat")
		_ = conn.Close()
		h.log.Info("Chat connection closed",
			logger.String("user_id", user.ID),
			logger.String("match_id", match.ID))
	}()

	h.readLoop(ctx, session, user, match)
}

// readLoop обрабатывает входящие кадры установленной сессии
func (h *ChatHandler) readLoop(ctx context.Context, session *Session, user *domain.User, match *domain.Match) {
	for {
		content, err := session.ReadText()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("Unexpected connection close", logger.Error(err))
			}
			return
		}

		if !h.allowMessage(ctx, session, user.ID) {
			continue
		}

		message, err := h.chatService.SaveMessage(ctx, match.ID, user.ID, content)
		if err != nil {
			if apperrors.IsCode(err, apperrors.ErrValidation) {
				h.sendError(session, apperrors.FromError(err).Message)
				continue
			}
			// Несохраненное сообщение доставлять нельзя
			h.log.Error("Failed to persist message", logger.Error(err),
				logger.String("match_id", match.ID))
			_ = session.Close(websocket.CloseInternalServerErr, "message persistence failed")
			return
		}

		// Скрытая блокировка: сообщение сохранено, но собеседник
		// его не получает. Отправитель разницы не видит
		if user.IsShadowBanned {
			h.metrics.MessagesDelivered.WithLabelValues("suppressed").Inc()
			continue
		}

		outbound := &outboundFrame{
			Type:      frameTypeMessage,
			MessageID: message.ID,
			MatchID:   message.MatchID,
			SenderID:  message.SenderID,
			Content:   message.Content,
			CreatedAt: message.CreatedAt,
		}

		// Доставка только собеседнику, отправителю эхо не возвращается
		delivered := h.registry.Deliver(match.PeerID(user.ID), match.ID, outbound)
		if delivered > 0 {
			h.metrics.MessagesDelivered.WithLabelValues("delivered").Inc()
		} else {
			h.metrics.MessagesDelivered.WithLabelValues("offline").Inc()
		}
	}
}

// allowMessage проверяет лимит частоты сообщений отправителя.
// Превышение лимита не разрывает соединение: клиент получает
// кадр с ошибкой и может продолжить после паузы
func (h *ChatHandler) allowMessage(ctx context.Context, session *Session, userID string) bool {
	exceeded, err := h.rateLimiter.CheckRateLimit(ctx, "chat:"+userID, h.chatPolicy.Limit, h.chatPolicy.WindowDuration())
	if err != nil {
		if h.failOpen {
			h.log.Error("Chat rate limit check failed, allowing message", logger.Error(err))
			return true
		}
		h.sendError(session, "service temporarily unavailable")
		return false
	}

	if exceeded {
		h.metrics.RateLimitRejections.WithLabelValues("chat").Inc()
		h.sendError(session, "rate limit exceeded, slow down")
		return false
	}

	return true
}

// sendError отправляет клиенту кадр с ошибкой
func (h *ChatHandler) sendError(session *Session, message string) {
	err := session.WriteJSON(&outboundFrame{
		Type:  frameTypeError,
		Error: message,
	})
	if err != nil {
		h.log.Debug("Failed to send error frame", logger.Error(err))
	}
}

// closeWithPolicyViolation закрывает соединение с кодом 1008
func (h *ChatHandler) closeWithPolicyViolation(conn *websocket.Conn, reason string) {
	message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second))
	_ = conn.Close()
}
