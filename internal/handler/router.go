package handler

import (
	"net/http"

	"SparkMatchPlatform/internal/middleware"
	"SparkMatchPlatform/internal/ws"
	"SparkMatchPlatform/pkg/config"
	"SparkMatchPlatform/pkg/health"
	"SparkMatchPlatform/pkg/logger"
	"SparkMatchPlatform/pkg/metrics"
)

// Router собирает все HTTP маршруты приложения
type Router struct {
	authHandler    *AuthHandler
	matchHandler   *MatchHandler
	userHandler    *UserHandler
	chatHandler    *ChatHandler
	wsChatHandler  *ws.ChatHandler
	authMiddleware *middleware.AuthMiddleware
	rateLimit      *middleware.RateLimitMiddleware
	healthChecker  *health.DependencyChecker
	metrics        *metrics.Metrics
	cfg            *config.Config
	log            logger.Logger
}

// NewRouter создает новый маршрутизатор
func NewRouter(
	authHandler *AuthHandler,
	matchHandler *MatchHandler,
	userHandler *UserHandler,
	chatHandler *ChatHandler,
	wsChatHandler *ws.ChatHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimit *middleware.RateLimitMiddleware,
	healthChecker *health.DependencyChecker,
	m *metrics.Metrics,
	cfg *config.Config,
	log logger.Logger,
) *Router {
	return &Router{
		authHandler:    authHandler,
		matchHandler:   matchHandler,
		userHandler:    userHandler,
		chatHandler:    chatHandler,
		wsChatHandler:  wsChatHandler,
		authMiddleware: authMiddleware,
		rateLimit:      rateLimit,
		healthChecker:  healthChecker,
		metrics:        m,
		cfg:            cfg,
		log:            log,
	}
}

// Handler возвращает корневой HTTP обработчик приложения.
// Классы лимитов: login для попыток входа по IP, api для
// остальных REST маршрутов. Сообщения чата считаются
// внутри websocket обработчика
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	limitLogin := rt.rateLimit.Class("login", rt.cfg.RateLimiting.Login)
	limitAPI := rt.rateLimit.Class("api", rt.cfg.RateLimiting.API)
	authed := rt.authMiddleware.Handle

	// Аутентификация
	mux.Handle("POST /api/v1/auth/register", limitAPI(http.HandlerFunc(rt.authHandler.Register)))
	mux.Handle("POST /api/v1/auth/login", limitLogin(http.HandlerFunc(rt.authHandler.Login)))
	mux.Handle("POST /api/v1/auth/refresh", limitAPI(http.HandlerFunc(rt.authHandler.Refresh)))
	mux.Handle("POST /api/v1/auth/logout", limitAPI(http.HandlerFunc(rt.authHandler.Logout)))

	// Симпатии и пары. Лимит считается по пользователю,
	// поэтому аутентификация идет раньше лимитера
	mux.Handle("POST /api/v1/matches/like", authed(limitAPI(http.HandlerFunc(rt.matchHandler.Like))))
	mux.Handle("GET /api/v1/matches", authed(limitAPI(http.HandlerFunc(rt.matchHandler.List))))

	// Лента подбора
	mux.Handle("GET /api/v1/users/discover", authed(limitAPI(http.HandlerFunc(rt.userHandler.Discover))))

	// Чат
	mux.Handle("GET /api/v1/chat/{matchID}/messages", authed(limitAPI(http.HandlerFunc(rt.chatHandler.History))))
	mux.HandleFunc("GET /api/v1/chat/ws/{matchID}", rt.wsChatHandler.ServeWS)

	// Служебные эндпоинты без аутентификации и лимитов
	mux.Handle("GET /health", health.Handler(rt.healthChecker))
	mux.Handle("GET /ready", health.ReadyHandler(rt.healthChecker))
	mux.Handle("GET /metrics", rt.metrics.GetHandler())

	// Внешняя цепочка применяется ко всем маршрутам
	var root http.Handler = mux
	root = middleware.CORSMiddleware(rt.cfg.Server.AllowedOrigins, rt.log)(root)
	root = rt.metrics.Middleware(root)
	root = middleware.LoggingMiddleware(rt.log)(root)
	root = middleware.RecoveryMiddleware(rt.log)(root)

	return root
}
