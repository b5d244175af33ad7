package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Generator GeneratorConfig // Настройки генерации
	Template  TemplateConfig  // Шаблон документа
	Server    ServerConfig    // Настройки HTTP сервера
	Database  DatabaseConfig  // Настройки подключения к БД
	JWT       JWTConfig       // Настройки JWT авторизации
	Log       LogConfig       // Настройки логирования
}

// GeneratorConfig содержит значения по умолчанию для запуска генерации
type GeneratorConfig struct {
	RosterPath  string `envconfig:"CERTGEN_ROSTER_PATH" default:"studs.xlsx"`
	ResultsDir  string `envconfig:"CERTGEN_RESULTS_DIR" default:"results"`
	Lines       []int  `envconfig:"CERTGEN_LINES" default:"1,2,3,4"`
	IDMode      bool   `envconfig:"CERTGEN_ID_MODE" default:"false"`
	Compression int    `envconfig:"CERTGEN_PNG_COMPRESSION" default:"0"` // 0 default, -1 none, -2 speed, -3 best
	MaxUploadMB int64  `envconfig:"CERTGEN_MAX_UPLOAD_MB" default:"20"`
}

// TemplateConfig содержит путь к YAML описанию документа
type TemplateConfig struct {
	Path string `envconfig:"CERTGEN_TEMPLATE" default:"template.yaml"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port string `envconfig:"SERVER_PORT" default:"8080"`
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL.
// Без DB_ENABLED журнал живет в памяти процесса и хранит не больше JournalMaxRuns
// последних завершенных запусков; статистика тогда считается только по ним.
type DatabaseConfig struct {
	Enabled        bool   `envconfig:"DB_ENABLED" default:"false"`
	JournalMaxRuns int    `envconfig:"CERTGEN_JOURNAL_MAX_RUNS" default:"1000"` // 0 - без ограничения
	Host           string `envconfig:"DB_HOST" default:"localhost"`
	Port           string `envconfig:"DB_PORT" default:"5432"`
	User           string `envconfig:"DB_USER" default:"certgen"`
	Password       string `envconfig:"DB_PASSWORD" default:"certgen_pass"`
	Name           string `envconfig:"DB_NAME" default:"certgen"`
	SSLMode        string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns       int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns       int32  `envconfig:"DB_MIN_CONNS" default:"1"`
}

// JWTConfig содержит настройки JWT авторизации
type JWTConfig struct {
	Secret          string `envconfig:"JWT_SECRET"`
	APIKey          string `envconfig:"OPERATOR_API_KEY"`
	ExpirationHours int    `envconfig:"JWT_EXPIRATION_HOURS" default:"24"`
}

// LogConfig содержит уровень и формат логов
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:""` // json или text, пусто - по режиму запуска
}

// GetExpiration возвращает срок действия токена как time.Duration
func (j JWTConfig) GetExpiration() time.Duration {
	return time.Duration(j.ExpirationHours) * time.Hour
}

// DSN возвращает строку подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// SlogLevel преобразует уровень логирования в slog.Level
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load читает конфигурацию из переменных окружения
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// ValidateServe проверяет настройки, обязательные для HTTP режима и выдачи токенов
func (c *Config) ValidateServe() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}
