package domain

import (
	"time"
)

// Роли пользователей
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Значения пола и предпочтений. "Everyone" допустимо только в InterestedIn
const (
	GenderMan      = "Man"
	GenderWoman    = "Woman"
	InterestAnyone = "Everyone"
)

// User представляет учетную запись пользователя
// Пароли хранятся с использованием bcrypt
// Email уникален на всю систему
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	IsActive        bool      `json:"is_active"`
	IsVerified      bool      `json:"is_verified"`
	IsShadowBanned  bool      `json:"-"`
	Role            string    `json:"role"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Profile представляет анкету пользователя
// Координаты опциональны и используются только для сортировки ленты
type Profile struct {
	UserID       string     `json:"user_id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name,omitempty"`
	Bio          string     `json:"bio,omitempty"`
	BirthDate    time.Time  `json:"birth_date"`
	Gender       string     `json:"gender"`
	InterestedIn string     `json:"interested_in"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Like представляет одностороннюю симпатию
// Не изменяется и не удаляется после создания
// На упорядоченную пару (from, to) существует не более одной записи
type Like struct {
	ID          string    `json:"id"`
	FromUserID  string    `json:"from_user_id"`
	ToUserID    string    `json:"to_user_id"`
	IsSuperlike bool      `json:"is_superlike"`
	CreatedAt   time.Time `json:"created_at"`
}

// Match представляет взаимную симпатию двух пользователей
// На неупорядоченную пару {user1, user2} существует не более одной записи
type Match struct {
	ID        string    `json:"id"`
	User1ID   string    `json:"user1_id"`
	User2ID   string    `json:"user2_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// PeerID возвращает идентификатор собеседника в паре
func (m *Match) PeerID(userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// HasParticipant проверяет, участвует ли пользователь в паре
func (m *Match) HasParticipant(userID string) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// Message представляет сообщение внутри пары
type Message struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Block представляет блокировку одного пользователя другим
type Block struct {
	ID        string    `json:"id"`
	BlockerID string    `json:"blocker_id"`
	BlockedID string    `json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileSummary представляет публичную проекцию анкеты.
// Проекция собирается одним запросом и всегда полностью заполнена
type ProfileSummary struct {
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	Bio       string    `json:"bio,omitempty"`
	BirthDate time.Time `json:"birth_date"`
	Gender    string    `json:"gender"`
}

// MatchView представляет пару, обогащенную анкетой собеседника
type MatchView struct {
	Match
	PeerProfile *ProfileSummary `json:"peer_profile,omitempty"`
}

// TokenPair структура для хранения пары токенов
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LikeResult представляет результат действия like
type LikeResult struct {
	Status  string `json:"status"`
	Matched bool   `json:"match"`
	MatchID string `json:"match_id,omitempty"`
}

// Статусы результата действия like
const (
	LikeStatusCreated      = "success"
	LikeStatusAlreadyLiked = "already_liked"
)

// DiscoveryFilter описывает параметры выборки кандидатов
type DiscoveryFilter struct {
	UserID       string
	Gender       string
	InterestedIn string
	MinAge       int
	MaxAge       int
	Latitude     *float64
	Longitude    *float64
	Limit        int
}
