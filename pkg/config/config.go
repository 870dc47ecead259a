package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config представляет конфигурацию приложения. Структура содержит вложенные структуры для различных компонентов приложения.
type Config struct {
	Server       ServerConfig    `json:"server" yaml:"server"`
	Database     DatabaseConfig  `json:"database" yaml:"database"`
	Redis        RedisConfig     `json:"redis" yaml:"redis"`
	Logger       LoggerConfig    `json:"logger" yaml:"logger"`
	JWT          JWTConfig       `json:"jwt" yaml:"jwt"`
	RateLimiting RateLimitConfig `json:"rate_limiting" yaml:"rate_limiting"`
	Security     SecurityConfig  `json:"security" yaml:"security"`
	Chat         ChatConfig      `json:"chat" yaml:"chat"`
	Discovery    DiscoveryConfig `json:"discovery" yaml:"discovery"`
	Environment  string          `json:"environment" yaml:"environment"`
}

// ServerConfig представляет конфигурацию сервера. Содержит настройки хоста и порта для HTTP-сервера.
type ServerConfig struct {
	Host           string   `json:"host" yaml:"host"`
	Port           int      `json:"port" yaml:"port"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
}

// DatabaseConfig представляет конфигурацию базы данных. Содержит параметры подключения к базе данных, включая хост, порт, имя базы, пользователя и пароль.
type DatabaseConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Name     string `json:"name" yaml:"name"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
}

// RedisConfig представляет конфигурацию Redis
type RedisConfig struct {
	Addr          string `json:"addr" yaml:"addr"`
	Password      string `json:"password" yaml:"password"`
	DB            int    `json:"db" yaml:"db"`
	PoolSize      int    `json:"pool_size" yaml:"pool_size"`
	MinIdleConn   int    `json:"min_idle_conn" yaml:"min_idle_conn"`
	MaxRetries    int    `json:"max_retries" yaml:"max_retries"`
	RetryInterval string `json:"retry_interval" yaml:"retry_interval"`
	HealthCheck   string `json:"health_check" yaml:"health_check"`
}

// LoggerConfig представляет конфигурацию логгера. Определяет уровень логирования и формат вывода логов.
type LoggerConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// JWTConfig представляет конфигурацию JWT
type JWTConfig struct {
	AccessSecret         string `json:"access_secret" yaml:"access_secret"`
	RefreshSecret        string `json:"refresh_secret" yaml:"refresh_secret"`
	AccessTokenDuration  string `json:"access_token_duration" yaml:"access_token_duration"`
	RefreshTokenDuration string `json:"refresh_token_duration" yaml:"refresh_token_duration"`
}

// RateLimitPolicy представляет лимит для одного класса маршрутов
type RateLimitPolicy struct {
	Limit  int    `json:"limit" yaml:"limit"`
	Window string `json:"window" yaml:"window"`
}

// RateLimitConfig представляет конфигурацию ограничения частоты запросов.
// Каждый класс маршрутов имеет независимый бюджет:
// - login: попытки входа по IP
// - api: общие запросы API
// - chat: входящие сообщения чата по пользователю
type RateLimitConfig struct {
	Login RateLimitPolicy `json:"login" yaml:"login"`
	API   RateLimitPolicy `json:"api" yaml:"api"`
	Chat  RateLimitPolicy `json:"chat" yaml:"chat"`
}

// SecurityConfig представляет политику безопасности.
// StoreFailurePolicy определяет поведение при недоступности Redis
// для проверок отзыва токенов и лимитов запросов:
// - "open": запрос пропускается, ошибка логируется
// - "closed": запрос отклоняется
// Политика применяется единообразно к обеим проверкам.
type SecurityConfig struct {
	StoreFailurePolicy string `json:"store_failure_policy" yaml:"store_failure_policy"`
}

// ChatConfig представляет конфигурацию чата
type ChatConfig struct {
	MaxMessageLength int `json:"max_message_length" yaml:"max_message_length"`
	HistoryPageSize  int `json:"history_page_size" yaml:"history_page_size"`
}

// DiscoveryConfig представляет конфигурацию ленты подбора
type DiscoveryConfig struct {
	MinAge       int `json:"min_age" yaml:"min_age"`
	MaxAge       int `json:"max_age" yaml:"max_age"`
	DefaultLimit int `json:"default_limit" yaml:"default_limit"`
}

// LoadConfig загружает конфигурацию в следующем порядке приоритета:
// 1. Загрузка значений по умолчанию
// 2. Загрузка из файла (если указан)
// 3. Переопределение значениями из переменных окружения
// 4. Валидация конфигурации
// Возвращает готовую конфигурацию или ошибку.
func LoadConfig(configFile string) (*Config, error) {
	// Initialize config with default values
	config := &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Name:     "sparkmatch",
			User:     "sparkmatch",
			Password: "sparkmatch",
		},
		Redis: RedisConfig{
			Addr:          "localhost:6379",
			Password:      "",
			DB:            0,
			PoolSize:      10,
			MinIdleConn:   2,
			MaxRetries:    3,
			RetryInterval: "1s",
			HealthCheck:   "30s",
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		JWT: JWTConfig{
			AccessSecret:         "your-access-secret",
			RefreshSecret:        "your-refresh-secret",
			AccessTokenDuration:  "15m",
			RefreshTokenDuration: "168h",
		},
		RateLimiting: RateLimitConfig{
			Login: RateLimitPolicy{Limit: 5, Window: "15m"},
			API:   RateLimitPolicy{Limit: 100, Window: "1m"},
			Chat:  RateLimitPolicy{Limit: 30, Window: "1m"},
		},
		Security: SecurityConfig{
			StoreFailurePolicy: "open",
		},
		Chat: ChatConfig{
			MaxMessageLength: 1000,
			HistoryPageSize:  50,
		},
		Discovery: DiscoveryConfig{
			MinAge:       18,
			MaxAge:       100,
			DefaultLimit: 20,
		},
		Environment: "dev",
	}

	// Load from file if specified
	if configFile != "" {
		if err := loadConfigFromFile(config, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Load from environment variables
	if err := loadConfigFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func loadConfigFromFile(config *Config, filename string) error {
	// Expand environment variables in the file path
	filename = os.ExpandEnv(filename)

	// Check if file exists
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", filename)
	}

	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	// Read file content
	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	// Try to unmarshal as YAML first, then JSON
	if err := yaml.Unmarshal(content, config); err != nil {
		// If YAML fails, try JSON
		if jsonErr := json.Unmarshal(content, config); jsonErr != nil {
			return fmt.Errorf("failed to unmarshal config file as YAML or JSON: %w", err)
		}
	}

	return nil
}

func loadConfigFromEnv(config *Config) error {
	// Server config
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if _, err := fmt.Sscanf(port, "%d", &config.Server.Port); err != nil {
			return fmt.Errorf("invalid SERVER_PORT: %s", port)
		}
	}

	// Database config
	if host := os.Getenv("DATABASE_HOST"); host != "" {
		config.Database.Host = host
	}
	if port := os.Getenv("DATABASE_PORT"); port != "" {
		if _, err := fmt.Sscanf(port, "%d", &config.Database.Port); err != nil {
			return fmt.Errorf("invalid DATABASE_PORT: %s", port)
		}
	}
	if name := os.Getenv("DATABASE_NAME"); name != "" {
		config.Database.Name = name
	}
	if user := os.Getenv("DATABASE_USER"); user != "" {
		config.Database.User = user
	}
	if password := os.Getenv("DATABASE_PASSWORD"); password != "" {
		config.Database.Password = password
	}

	// Redis config
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Redis.Password = password
	}

	// JWT config
	if secret := os.Getenv("JWT_ACCESS_SECRET"); secret != "" {
		config.JWT.AccessSecret = secret
	}
	if secret := os.Getenv("JWT_REFRESH_SECRET"); secret != "" {
		config.JWT.RefreshSecret = secret
	}

	// Security config
	if policy := os.Getenv("STORE_FAILURE_POLICY"); policy != "" {
		config.Security.StoreFailurePolicy = policy
	}

	// Logger config
	if level := os.Getenv("LOGGER_LEVEL"); level != "" {
		config.Logger.Level = level
	}
	if format := os.Getenv("LOGGER_FORMAT"); format != "" {
		config.Logger.Format = format
	}

	// Environment
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		config.Environment = env
	}

	return nil
}

func validateConfig(config *Config) error {
	// Проверка корректности окружения. Поддерживаются только: dev, staging, prod
	switch config.Environment {
	case "dev", "staging", "prod":
		// Valid environment
	default:
		return fmt.Errorf("invalid environment: %s, must be one of: dev, staging, prod", config.Environment)
	}

	// Валидация конфигурации сервера
	// Проверяем, что хост не пустой и порт в допустимом диапазоне (1-65535)
	if config.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	// Валидация JWT
	if config.JWT.AccessSecret == "" || config.JWT.RefreshSecret == "" {
		return fmt.Errorf("jwt secrets are required")
	}
	if _, err := time.ParseDuration(config.JWT.AccessTokenDuration); err != nil {
		return fmt.Errorf("invalid jwt.access_token_duration: %w", err)
	}
	if _, err := time.ParseDuration(config.JWT.RefreshTokenDuration); err != nil {
		return fmt.Errorf("invalid jwt.refresh_token_duration: %w", err)
	}

	// Валидация лимитов запросов
	for name, policy := range map[string]RateLimitPolicy{
		"login": config.RateLimiting.Login,
		"api":   config.RateLimiting.API,
		"chat":  config.RateLimiting.Chat,
	} {
		if policy.Limit < 1 {
			return fmt.Errorf("rate_limiting.%s.limit must be positive", name)
		}
		if _, err := time.ParseDuration(policy.Window); err != nil {
			return fmt.Errorf("invalid rate_limiting.%s.window: %w", name, err)
		}
	}

	// Валидация политики безопасности
	switch config.Security.StoreFailurePolicy {
	case "open", "closed":
		// Valid policy
	default:
		return fmt.Errorf("security.store_failure_policy must be 'open' or 'closed'")
	}

	// Валидация настроек чата
	if config.Chat.MaxMessageLength < 1 {
		return fmt.Errorf("chat.max_message_length must be positive")
	}
	if config.Chat.HistoryPageSize < 1 {
		return fmt.Errorf("chat.history_page_size must be positive")
	}

	// Валидация ленты подбора
	if config.Discovery.MinAge < 18 {
		return fmt.Errorf("discovery.min_age must be at least 18")
	}
	if config.Discovery.MaxAge < config.Discovery.MinAge {
		return fmt.Errorf("discovery.max_age must be >= discovery.min_age")
	}

	return nil
}

// AccessTokenTTL возвращает время жизни access токена
func (c *JWTConfig) AccessTokenTTL() time.Duration {
	d, err := time.ParseDuration(c.AccessTokenDuration)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// RefreshTokenTTL возвращает время жизни refresh токена
func (c *JWTConfig) RefreshTokenTTL() time.Duration {
	d, err := time.ParseDuration(c.RefreshTokenDuration)
	if err != nil {
		return 7 * 24 * time.Hour
	}
	return d
}

// WindowDuration возвращает длительность окна лимита
func (p *RateLimitPolicy) WindowDuration() time.Duration {
	d, err := time.ParseDuration(p.Window)
	if err != nil {
		return time.Minute
	}
	return d
}
