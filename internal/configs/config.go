package configs

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит всю конфигурацию приложения.
type Config struct {
	AppName string

	// BackendURL - адрес REST API; только на этот хост шлюз добавляет токен.
	BackendURL   string
	GeographyURL string

	// StorePath - файл sqlite с сохраненной сессией.
	StorePath string

	Web    WebConfig
	Search SearchConfig
	HTTP   HTTPConfig
	Geo    GeoCacheConfig

	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// WebConfig - локальный BFF-сервер.
type WebConfig struct {
	Port           string
	AllowedOrigins []string
}

type SearchConfig struct {
	PageLimit int
}

type HTTPConfig struct {
	Timeout time.Duration
}

// GeoCacheConfig - кэш справочника административного деления.
type GeoCacheConfig struct {
	Size int
	TTL  time.Duration
}

type StdoutLogConfig struct {
	Level string
	JSON  bool
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// BackendHost возвращает host:port backend, по которому шлюз узнает свои запросы.
func (c *Config) BackendHost() string {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// LoadConfig загружает конфигурацию из переменных окружения.
// Файл .env подхватывается, если он есть; его отсутствие не ошибка.
func LoadConfig(envPath ...string) (*Config, error) {
	var err error
	if len(envPath) > 0 && envPath[0] != "" {
		err = godotenv.Load(envPath[0])
		if err != nil {
			return nil, fmt.Errorf("could not load env file %s: %w", envPath[0], err)
		}
	} else if err = godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("could not load .env file: %w", err)
	}

	cfg := &Config{
		AppName:      getEnv("APP_NAME", "roomfinder"),
		BackendURL:   strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8000"), "/"),
		GeographyURL: strings.TrimRight(getEnv("GEOGRAPHY_URL", "https://provinces.open-api.vn"), "/"),
		StorePath:    getEnv("STORE_PATH", defaultStorePath()),
		Web: WebConfig{
			Port:           getEnv("WEB_PORT", "5173"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		Search: SearchConfig{
			PageLimit: getEnvAsInt("SEARCH_PAGE_LIMIT", 20),
		},
		HTTP: HTTPConfig{
			Timeout: getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		},
		Geo: GeoCacheConfig{
			Size: getEnvAsInt("GEO_CACHE_SIZE", 256),
			TTL:  getEnvAsDuration("GEO_CACHE_TTL", 24*time.Hour),
		},
	}

	if _, err := url.ParseRequestURI(cfg.BackendURL); err != nil {
		return nil, fmt.Errorf("BACKEND_URL is not a valid url: %w", err)
	}
	if cfg.BackendHost() == "" {
		return nil, fmt.Errorf("BACKEND_URL must include a host")
	}
	if cfg.Search.PageLimit < 1 || cfg.Search.PageLimit > 100 {
		return nil, fmt.Errorf("SEARCH_PAGE_LIMIT must be between 1 and 100, got %d", cfg.Search.PageLimit)
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnv("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnv("STDOUT_LOG_LEVEL", "warn")
	cfg.StdoutLogger.JSON = getEnvAsBool("STDOUT_LOG_JSON", false)

	return cfg, nil
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "roomfinder.db"
	}
	return filepath.Join(dir, "roomfinder", "session.db")
}

// getEnv - вспомогательная функция для чтения переменных окружения с значением по умолчанию.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvAsList читает список через запятую.
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
