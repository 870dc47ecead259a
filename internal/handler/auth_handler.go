package handler

import (
	"encoding/json"
	"net/http"

	"SparkMatchPlatform/internal/service"
	apperrors "SparkMatchPlatform/pkg/errors"
	"SparkMatchPlatform/pkg/logger"
)

// AuthHandler обрабатывает HTTP запросы аутентификации
type AuthHandler struct {
	logger      logger.Logger
	authService service.AuthService
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(logger logger.Logger, authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		authService: authService,
	}
}

// registerRequest запрос на регистрацию
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest запрос на вход
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// refreshRequest запрос на обновление пары токенов
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// logoutRequest запрос на выход
// Access токен берется из заголовка Authorization,
// refresh токен передается в теле
type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register обрабатывает регистрацию нового пользователя
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteHTTP(w, apperrors.New(apperrors.ErrValidation, "invalid JSON body"))
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Error("Registration failed", logger.Error(err))
		apperrors.WriteHTTP(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login обрабатывает вход пользователя
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteHTTP(w, apperrors.New(apperrors.ErrValidation, "invalid JSON body"))
		return
	}

	tokens, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

// Refresh обрабатывает обновление пары токенов
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		apperrors.WriteHTTP(w, apperrors.New(apperrors.ErrValidation, "refresh_token is required"))
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

// Logout обрабатывает выход пользователя с отзывом токенов
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	accessToken := bearerToken(r)
	if accessToken == "" {
		apperrors.WriteHTTP(w, apperrors.New(apperrors.ErrUnauthorized, "missing or malformed authorization header"))
		return
	}

	var req logoutRequest
	// Тело опционально: выход возможен и без refresh токена
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.authService.Logout(r.Context(), accessToken, req.RefreshToken); err != nil {
		apperrors.WriteHTTP(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
