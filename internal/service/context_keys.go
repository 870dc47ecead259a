package service

// contextKey тип для ключей контекста, исключающий коллизии с другими пакетами
type contextKey string

// Ключи контекста, заполняемые middleware аутентификации
const (
	// UserIDKey идентификатор аутентифицированного пользователя
	UserIDKey contextKey = "user_id"
	// UserRoleKey роль аутентифицированного пользователя
	UserRoleKey contextKey = "user_role"
)
