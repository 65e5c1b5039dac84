package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kapu/aion2-character-go/internal/domain"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Config struct {
	Site     SiteConfig
	Browser  BrowserConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Server   ServerConfig
	Logging  LoggingConfig
}

type SiteConfig struct {
	BaseURL       string
	Origin        string
	DefaultServer string
	Servers       *domain.ServerTable
}

type BrowserConfig struct {
	Headless  bool
	ExecPath  string
	UserAgent string

	PageLoadTimeout  time.Duration
	PageSettle       time.Duration
	ActionSettle     time.Duration
	FilterSettle     time.Duration
	RankingTableWait time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type StorageConfig struct {
	Enabled bool
}

type ServerConfig struct {
	Addr string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	defaultServer := getEnv("AION2_DEFAULT_SERVER", "Israphel")
	servers, err := domain.NewServerTable(
		mergeServerIDs(domain.DefaultServerIDs(), parseKeyValueList(getEnv("AION2_SERVER_IDS", ""))),
		defaultServer,
	)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := &Config{
		Site: SiteConfig{
			BaseURL:       strings.TrimRight(getEnv("AION2_BASE_URL", "https://aion2.plaync.com/ko-kr"), "/"),
			Origin:        strings.TrimRight(getEnv("AION2_ORIGIN", "https://aion2.plaync.com"), "/"),
			DefaultServer: defaultServer,
			Servers:       servers,
		},
		Browser: BrowserConfig{
			Headless:         getEnvBool("BROWSER_HEADLESS", true),
			ExecPath:         getEnv("BROWSER_EXEC_PATH", ""),
			UserAgent:        getEnv("BROWSER_USER_AGENT", defaultUserAgent),
			PageLoadTimeout:  getEnvMillis("PAGE_LOAD_TIMEOUT_MS", 30000),
			PageSettle:       getEnvMillis("PAGE_SETTLE_MS", 3000),
			ActionSettle:     getEnvMillis("ACTION_SETTLE_MS", 500),
			FilterSettle:     getEnvMillis("FILTER_SETTLE_MS", 2000),
			RankingTableWait: getEnvMillis("RANKING_TABLE_TIMEOUT_MS", 10000),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "aion2"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "aion2"),
		},
		Cache: CacheConfig{
			Enabled: getEnvBool("CACHE_ENABLED", true),
			TTL:     time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		Storage: StorageConfig{
			Enabled: getEnvBool("STORAGE_ENABLED", true),
		},
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("AION2_BASE_URL is required")
	}
	if c.Site.Origin == "" {
		return fmt.Errorf("AION2_ORIGIN is required")
	}
	if c.Site.Servers == nil {
		return fmt.Errorf("server table is required")
	}
	if _, ok := c.Site.Servers.Lookup(c.Site.DefaultServer); !ok {
		return fmt.Errorf("AION2_DEFAULT_SERVER %q is not in the server table", c.Site.DefaultServer)
	}
	if c.Browser.UserAgent == "" {
		return fmt.Errorf("BROWSER_USER_AGENT is required")
	}
	if c.Browser.PageLoadTimeout <= 0 {
		return fmt.Errorf("PAGE_LOAD_TIMEOUT_MS must be positive")
	}
	if c.Browser.RankingTableWait <= 0 {
		return fmt.Errorf("RANKING_TABLE_TIMEOUT_MS must be positive")
	}
	if c.Browser.PageSettle < 0 || c.Browser.ActionSettle < 0 || c.Browser.FilterSettle < 0 {
		return fmt.Errorf("settle delays must not be negative")
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive when the cache is enabled")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * time.Millisecond
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseKeyValueList reads "name=id,name=id". Malformed pairs are skipped.
func parseKeyValueList(value string) map[string]string {
	result := make(map[string]string)
	for _, pair := range parseCommaSeparated(value) {
		name, id, ok := strings.Cut(pair, "=")
		name, id = strings.TrimSpace(name), strings.TrimSpace(id)
		if !ok || name == "" || id == "" {
			continue
		}
		result[name] = id
	}
	return result
}

func mergeServerIDs(base, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overrides))
	for name, id := range base {
		merged[name] = id
	}
	for name, id := range overrides {
		merged[name] = id
	}
	return merged
}
