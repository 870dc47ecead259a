package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Session представляет одно websocket подключение пользователя.
// Запись в соединение сериализована мьютексом: доставка чужих
// сообщений и ответы читающей горутины идут через один сокет
type Session struct {
	UserID  string
	MatchID string

	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewSession создает сессию поверх установленного соединения
func NewSession(conn *websocket.Conn, userID, matchID string) *Session {
	return &Session{
		UserID:  userID,
		MatchID: matchID,
		conn:    conn,
	}
}

// WriteJSON отправляет JSON сообщение в соединение
func (s *Session) WriteJSON(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// Close закрывает соединение с указанным кодом и причиной
func (s *Session) Close(code int, reason string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	message := websocket.FormatCloseMessage(code, reason)
	_ = s.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second))
	return s.conn.Close()
}

// ReadText читает следующий текстовый кадр из соединения.
// Входящие кадры чата передаются сырым текстом, без обертки
func (s *Session) ReadText() (string, error) {
	for {
		messageType, payload, err := s.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if messageType != websocket.TextMessage {
			continue
		}
		return string(payload), nil
	}
}
