// config реализует конфигурацию commentsy: загрузка из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Поддерживаемые драйверы хранилища.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	DB       DBConfig      `yaml:"db"`
	Redis    RedisConfig   `yaml:"redis"`
	Auth     AuthConfig    `yaml:"auth"`
	CORS     CORSConfig    `yaml:"cors"`
	Limits   LimitsConfig  `yaml:"limits"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig — сервисные таймауты (общий дедлайн обработки запроса).
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE" env-default:"5s"`
}

// HTTPConfig — публичный HTTP-сервер (API, health, metrics).
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50094"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// DBConfig — выбор и подключение хранилища.
// Для driver=memory URL не нужен.
type DBConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"mongo"`
	URL    string `yaml:"url" env:"DATABASE_URL"`
}

// RedisConfig — кэш тенантов. Пустой URL отключает кэш.
type RedisConfig struct {
	URL    string        `yaml:"url" env:"REDIS_URL"`
	Prefix string        `yaml:"prefix" env:"REDIS_PREFIX" env-default:"commentsy:app:"`
	TTL    time.Duration `yaml:"ttl" env:"APP_CACHE_TTL" env-default:"5m"`
}

// AuthConfig — проверка токенов сессии, выпущенных внешним identity provider.
type AuthConfig struct {
	JWTSecret string   `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	Issuer    string   `yaml:"issuer" env:"JWT_ISSUER" env-default:"commentsy-auth"`
	Audience  []string `yaml:"audience" env:"JWT_AUDIENCE" env-separator:"," env-default:"commentsy"`
}

// CORSConfig — браузерный CORS для виджета. Авторизация origin тенанта
// выполняется отдельно в сервисном слое.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// LimitsConfig — лимиты на выдачу.
type LimitsConfig struct {
	// Пагинация: limit не задан -> Default; верхняя граница — Max.
	Default int64 `yaml:"default" env:"DEFAULT_LIMIT" env-default:"20"`
	Max     int64 `yaml:"max"     env:"MAX_LIMIT"     env-default:"100"`
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
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
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

	// 1) Явный путь.
	if path != "" {
		c, err := tryRead(path)
		if err != nil {
			return nil, err
		}

		if err := c.validate(); err != nil {
			return nil, err
		}

		return c, nil
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		c, err := tryRead(envPath)
		if err != nil {
			return nil, err
		}

		if err := c.validate(); err != nil {
			return nil, err
		}

		return c, nil
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		c, err := tryRead("local.yaml")
		if err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}

		if err := c.validate(); err != nil {
			return nil, err
		}

		return c, nil
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverMongo, DriverPostgres:
		if c.DB.URL == "" {
			return fmt.Errorf("db.url is required for driver %q", c.DB.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("db.driver must be one of mongo, postgres, memory")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	if c.Limits.Default <= 0 {
		return fmt.Errorf("limits.default must be > 0")
	}

	if c.Limits.Max <= 0 {
		return fmt.Errorf("limits.max must be > 0")
	}

	if c.Limits.Default > c.Limits.Max {
		return fmt.Errorf("limits.default must be <= limits.max")
	}

	if c.Redis.URL != "" && c.Redis.TTL <= 0 {
		return fmt.Errorf("redis.ttl must be > 0")
	}

	return nil
}
