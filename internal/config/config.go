package config

import (
	"fmt"
	"log"
	"time"

	"liveparallel-server/internal/utils"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию LiveParallel Scenario Service
type Config struct {
	// Настройки сервера
	Port     string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Настройки PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int32         `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	// Firebase (проверка ID токенов мобильного клиента)
	FirebaseCredentialsPath string `envconfig:"FIREBASE_CREDENTIALS_PATH"`
	// Режим без проверки токенов для локальной разработки: UID берется
	// из заголовка X-Debug-User-Id. НИКОГДА не включать в проде.
	AuthDebugMode bool `envconfig:"AUTH_DEBUG_MODE" default:"false"`

	// Генерация альтернативного пути
	GenerationEngine string        `envconfig:"GENERATION_ENGINE" default:"stub"` // stub | openai
	StubEngineDelay  time.Duration `envconfig:"STUB_ENGINE_DELAY" default:"2s"`
	OpenAIModel      string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL    string        `envconfig:"OPENAI_BASE_URL"`
	// Секретное поле БЕЗ envconfig тега
	OpenAIAPIKey string

	// CORS
	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов
func LoadConfig() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации scenario-service: %w", err)
	}

	// Обязательный секрет БД
	cfg.DBPassword, err = utils.ReadSecret("db_password")
	if err != nil {
		return nil, err
	}

	// Ключ OpenAI нужен только когда выбран openai-движок
	if cfg.GenerationEngine == "openai" {
		cfg.OpenAIAPIKey, err = utils.ReadSecret("openai_api_key")
		if err != nil {
			return nil, err
		}
	}

	log.Printf("Конфигурация Scenario Service загружена:")
	log.Printf("  Port: %s", cfg.Port)
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  DB DSN: postgres://%s:***@%s:%s/%s?sslmode=%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	log.Printf("  Generation Engine: %s", cfg.GenerationEngine)
	if cfg.AuthDebugMode {
		log.Printf("  [WARN] AUTH DEBUG MODE ВКЛЮЧЕН — проверка токенов отключена")
	}

	return &cfg, nil
}
