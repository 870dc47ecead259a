package ws

import (
	"sync"

	"SparkMatchPlatform/pkg/logger"
)

// ConnectionRegistry хранит активные websocket сессии по пользователям.
// Пользователь может держать несколько сессий одновременно,
// например с разных устройств. Все операции потокобезопасны
type ConnectionRegistry struct {
	mu       sync.RWMutex
	sessions map[string][]*Session
	log      logger.Logger
}

// NewConnectionRegistry создает новый реестр подключений
func NewConnectionRegistry(log logger.Logger) *ConnectionRegistry {
	return &ConnectionRegistry{
		sessions: make(map[string][]*Session),
		log:      log,
	}
}

// Connect регистрирует сессию пользователя
func (r *ConnectionRegistry) Connect(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.UserID] = append(r.sessions[session.UserID], session)

	r.log.Debug("Session registered",
		logger.String("user_id", session.UserID),
		logger.Int("sessions", len(r.sessions[session.UserID])))
}

// Disconnect снимает сессию с учета. Пустой список
// сессий пользователя удаляется из реестра
func (r *ConnectionRegistry) Disconnect(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	active := r.sessions[session.UserID]
	for i, s := range active {
		if s == session {
			active = append(active[:i], active[i+1:]...)
			break
		}
	}

	if len(active) == 0 {
		delete(r.sessions, session.UserID)
	} else {
		r.sessions[session.UserID] = active
	}

	r.log.Debug("Session deregistered", logger.String("user_id", session.UserID))
}

// Deliver отправляет сообщение во все сессии пользователя,
// открытые для указанной пары. Возвращает число сессий,
// получивших сообщение. Отправка идет по снимку списка:
// сбой записи в одну сессию не влияет на остальные
func (r *ConnectionRegistry) Deliver(userID, matchID string, message interface{}) int {
	r.mu.RLock()
	snapshot := make([]*Session, 0, len(r.sessions[userID]))
	for _, s := range r.sessions[userID] {
		if s.MatchID == matchID {
			snapshot = append(snapshot, s)
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, s := range snapshot {
		if err := s.WriteJSON(message); err != nil {
			r.log.Debug("Failed to write to session",
				logger.String("user_id", userID), logger.Error(err))
			continue
		}
		delivered++
	}

	return delivered
}

// CountSessions возвращает число активных сессий пользователя
func (r *ConnectionRegistry) CountSessions(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[userID])
}
