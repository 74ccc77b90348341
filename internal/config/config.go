// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Политики поведения при недоступности хранилища отозванных токенов.
const (
	// OutageFailOpen — неизвестный статус трактуем как "не отозван"
	// (приоритет доступности).
	OutageFailOpen = "fail_open"
	// OutageFailClosed — неизвестный статус трактуем как отказ
	// (приоритет строгости отзыва).
	OutageFailClosed = "fail_closed"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Auth      AuthConfig      `yaml:"auth"`
	Blacklist BlacklistConfig `yaml:"blacklist"`
	Directory DirectoryConfig `yaml:"directory"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// HTTPConfig — сетевые настройки публичного HTTP API.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50080"`
}

// MetricsConfig — сетевые настройки служебного сервера (/livez, /healthz, /metrics).
type MetricsConfig struct {
	Host string `yaml:"host" env:"METRICS_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"METRICS_PORT" env-default:"50081"`
}

// Addr возвращает адрес в формате host:port.
func (c HTTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Addr возвращает адрес в формате host:port.
func (c MetricsConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// AuthConfig содержит параметры выпуска и валидации токенов.
// JWTSecret задаётся в base64; пустой или некорректный секрет —
// фатальная ошибка старта, а не ошибка времени выполнения.
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"720h"`
	Issuer          string        `yaml:"issuer" env:"ISSUER" env-default:"blog-auth-service"`
}

// BlacklistConfig — настройки хранилища отозванных токенов.
// OutagePolicy — явный выбор поведения при недоступности Redis во время
// проверки отзыва: fail_open или fail_closed.
type BlacklistConfig struct {
	RedisURL     string `yaml:"redis_url" env:"REDIS_URL" env-required:"true"`
	KeyPrefix    string `yaml:"key_prefix" env:"BLACKLIST_KEY_PREFIX" env-default:"jwt:blacklist:"`
	OutagePolicy string `yaml:"outage_policy" env:"BLACKLIST_OUTAGE_POLICY" env-default:"fail_open"`
}

// DirectoryConfig — настройки клиента каталога пользователей (user-сервис).
type DirectoryConfig struct {
	BaseURL string        `yaml:"base_url" env:"DIRECTORY_BASE_URL" env-required:"true"`
	Timeout time.Duration `yaml:"timeout" env:"DIRECTORY_TIMEOUT" env-default:"3s"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig — пороги circuit breaker-а вокруг вызовов каталога.
// Поведение: Closed — вызовы проходят, отказы считаются в скользящем окне
// Interval; при Requests >= MinRequests и доле отказов >= FailureRateThreshold
// breaker открывается; после OpenTimeout допускается до HalfOpenMaxRequests
// пробных вызовов.
type BreakerConfig struct {
	FailureRateThreshold float64       `yaml:"failure_rate_threshold" env:"BREAKER_FAILURE_RATE" env-default:"0.5"`
	MinRequests          uint32        `yaml:"min_requests" env:"BREAKER_MIN_REQUESTS" env-default:"10"`
	Interval             time.Duration `yaml:"interval" env:"BREAKER_INTERVAL" env-default:"60s"`
	OpenTimeout          time.Duration `yaml:"open_timeout" env:"BREAKER_OPEN_TIMEOUT" env-default:"30s"`
	HalfOpenMaxRequests  uint32        `yaml:"half_open_max_requests" env:"BREAKER_HALF_OPEN_MAX" env-default:"1"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// ВАЖНО: после чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	load := func() (*Config, error) {
		// 1) Явный путь.
		if path != "" {
			return tryRead(path)
		}

		// 2) CONFIG_PATH.
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			return tryRead(envPath)
		}

		// 3) ./local.yaml.
		if _, err := os.Stat("local.yaml"); err == nil {
			return tryRead("local.yaml")
		}

		// 4) Только ENV.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
		}

		return &cfg, nil
	}

	c, err := load()
	if err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) validate() error {
	switch c.Blacklist.OutagePolicy {
	case OutageFailOpen, OutageFailClosed:
	default:
		return fmt.Errorf("blacklist.outage_policy: unknown value %q (want %s or %s)",
			c.Blacklist.OutagePolicy, OutageFailOpen, OutageFailClosed)
	}

	return nil
}
