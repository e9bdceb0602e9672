// /internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ============================================
// КОНФИГУРАЦИЯ БАЗЫ ДАННЫХ
// ============================================

// DatabaseConfig - конфигурация базы данных
type DatabaseConfig struct {
	Host     string `mapstructure:"DB_HOST"`
	Port     int    `mapstructure:"DB_PORT"`
	User     string `mapstructure:"DB_USER"`
	Password string `mapstructure:"DB_PASSWORD"`
	Name     string `mapstructure:"DB_NAME"`
	SSLMode  string `mapstructure:"DB_SSLMODE"`

	Enabled bool `mapstructure:"DB_ENABLED"`

	// Настройки пула соединений
	MaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	MaxConnLifetime time.Duration `mapstructure:"DB_MAX_CONN_LIFETIME"`
	MaxConnIdleTime time.Duration `mapstructure:"DB_MAX_CONN_IDLE_TIME"`

	EnableAutoMigrate bool `mapstructure:"DB_ENABLE_AUTO_MIGRATE"`
}

// RedisConfig конфигурация Redis
type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`     // localhost
	Port     int    `mapstructure:"REDIS_PORT"`     // 6379
	Password string `mapstructure:"REDIS_PASSWORD"` // пустой или пароль
	DB       int    `mapstructure:"REDIS_DB"`       // 0

	Enabled bool `mapstructure:"REDIS_ENABLED"`

	// Настройки пула соединений
	PoolSize        int           `mapstructure:"REDIS_POOL_SIZE"`         // 10
	MinIdleConns    int           `mapstructure:"REDIS_MIN_IDLE_CONNS"`    // 2
	MaxRetries      int           `mapstructure:"REDIS_MAX_RETRIES"`       // 3
	MinRetryBackoff time.Duration `mapstructure:"REDIS_MIN_RETRY_BACKOFF"` // 8ms
	MaxRetryBackoff time.Duration `mapstructure:"REDIS_MAX_RETRY_BACKOFF"` // 512ms
	DialTimeout     time.Duration `mapstructure:"REDIS_DIAL_TIMEOUT"`      // 5s
	ReadTimeout     time.Duration `mapstructure:"REDIS_READ_TIMEOUT"`      // 3s
	WriteTimeout    time.Duration `mapstructure:"REDIS_WRITE_TIMEOUT"`     // 3s
	PoolTimeout     time.Duration `mapstructure:"REDIS_POOL_TIMEOUT"`      // 4s

	// TTL снапшотов уровней
	LevelsTTL time.Duration `mapstructure:"REDIS_LEVELS_TTL"` // 72h
}

// TelegramConfig настройки доставки в Telegram
type TelegramConfig struct {
	BotToken string `mapstructure:"TG_API_KEY"`
	ChatID   string `mapstructure:"TG_CHAT_ID"`
	Enabled  bool   `mapstructure:"TELEGRAM_ENABLED"`
	APIURL   string `mapstructure:"TELEGRAM_API_URL"`
}

// FCMConfig настройки push-уведомлений Firebase
type FCMConfig struct {
	CredentialsPath string `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
	Topic           string `mapstructure:"FCM_TOPIC"`
	Enabled         bool   `mapstructure:"FCM_ENABLED"`
}

// ScheduleConfig расписание пайплайнов
type ScheduleConfig struct {
	Timezone       string        `mapstructure:"SCHEDULE_TIMEZONE"` // Asia/Taipei
	SentimentAt    string        `mapstructure:"SENTIMENT_AT"`      // 12:05
	HeatmapAt      string        `mapstructure:"HEATMAP_AT"`        // 08:05
	RunOnStart     bool          `mapstructure:"RUN_ON_START"`
	JobTimeout     time.Duration `mapstructure:"JOB_TIMEOUT"`
	HeatmapDayHour int           `mapstructure:"HEATMAP_DAY_HOUR"` // 8
}

// BrowserConfig настройки headless Chrome
type BrowserConfig struct {
	Enabled        bool          `mapstructure:"BROWSER_ENABLED"`
	ExecPath       string        `mapstructure:"CHROME_PATH"`
	Timeout        time.Duration `mapstructure:"BROWSER_TIMEOUT"`
	ScreenshotDir  string        `mapstructure:"SCREENSHOT_DIR"`
	SentimentURL   string        `mapstructure:"FGI_URL"`
	HeatmapPageURL string        `mapstructure:"HEATMAP_PAGE_URL"`
}

// CoinglassConfig настройки REST API тепловой карты
type CoinglassConfig struct {
	APIURL   string        `mapstructure:"COINGLASS_API_URL"`
	APIKey   string        `mapstructure:"COINGLASS_API_KEY"`
	Interval string        `mapstructure:"COINGLASS_INTERVAL"`
	Timeout  time.Duration `mapstructure:"COINGLASS_TIMEOUT"`
}

// BinanceConfig настройки источника последней цены
type BinanceConfig struct {
	Enabled   bool   `mapstructure:"BINANCE_ENABLED"`
	ApiKey    string `mapstructure:"BINANCE_API_KEY"`
	ApiSecret string `mapstructure:"BINANCE_API_SECRET"`
	BaseURL   string `mapstructure:"BINANCE_BASE_URL"`
}

// ScoreStore backend: file | redis | postgres
const (
	ScoreStoreFile     = "file"
	ScoreStoreRedis    = "redis"
	ScoreStorePostgres = "postgres"
)

// ============================================
// ОСНОВНАЯ КОНФИГУРАЦИЯ ПРИЛОЖЕНИЯ
// ============================================

// Config - основная структура конфигурации
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`

	Database  DatabaseConfig  `mapstructure:"DATABASE"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Telegram  TelegramConfig  `mapstructure:",squash"`
	FCM       FCMConfig       `mapstructure:",squash"`
	Schedule  ScheduleConfig  `mapstructure:",squash"`
	Browser   BrowserConfig   `mapstructure:",squash"`
	Coinglass CoinglassConfig `mapstructure:",squash"`
	Binance   BinanceConfig   `mapstructure:",squash"`

	// ScoreStore: где хранится вчерашний индекс
	ScoreStore     string `mapstructure:"SCORE_STORE"`
	ScoreStorePath string `mapstructure:"SCORE_STORE_PATH"`

	// Торгуемые инструменты (из TOML файла или по умолчанию)
	InstrumentsFile string       `mapstructure:"INSTRUMENTS_FILE"`
	Instruments     []Instrument `mapstructure:"-"`
	TopLevels       int          `mapstructure:"TOP_LEVELS"`

	// Логирование и HTTP
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogFile     string `mapstructure:"LOG_FILE"`
	HTTPEnabled bool   `mapstructure:"HTTP_ENABLED"`
	HTTPPort    int    `mapstructure:"HTTP_PORT"`

	// Тестовый режим: сообщения пишутся в лог вместо отправки
	MonitoringTestMode bool `mapstructure:"MONITORING_TEST_MODE"`
}

// ============================================
// ЗАГРУЗКА КОНФИГУРАЦИИ
// ============================================

// LoadConfig загружает конфигурацию из .env файла
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			fmt.Printf("⚠️  Config file not found, using environment variables\n")
		}
	}

	cfg := &Config{}

	cfg.Environment = getEnv("ENVIRONMENT", "production")
	cfg.Version = getEnv("VERSION", "1.0.0")

	// ======================
	// БАЗА ДАННЫХ
	// ======================
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "")
	cfg.Database.Password = getEnv("DB_PASSWORD", "")
	cfg.Database.Name = getEnv("DB_NAME", "")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 5)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 2)
	cfg.Database.MaxConnLifetime = getEnvDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	cfg.Database.MaxConnIdleTime = getEnvDuration("DB_MAX_CONN_IDLE_TIME", 10*time.Minute)
	cfg.Database.EnableAutoMigrate = getEnvBool("DB_ENABLE_AUTO_MIGRATE", true)
	cfg.Database.Enabled = getEnvBool("DB_ENABLED", false)

	// ======================
	// REDIS
	// ======================
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnvInt("REDIS_PORT", 6379)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.PoolSize = getEnvInt("REDIS_POOL_SIZE", 10)
	cfg.Redis.MinIdleConns = getEnvInt("REDIS_MIN_IDLE_CONNS", 2)
	cfg.Redis.MaxRetries = getEnvInt("REDIS_MAX_RETRIES", 3)
	cfg.Redis.MinRetryBackoff = getEnvDuration("REDIS_MIN_RETRY_BACKOFF", 8*time.Millisecond)
	cfg.Redis.MaxRetryBackoff = getEnvDuration("REDIS_MAX_RETRY_BACKOFF", 512*time.Millisecond)
	cfg.Redis.DialTimeout = getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.Redis.ReadTimeout = getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.Redis.WriteTimeout = getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.Redis.PoolTimeout = getEnvDuration("REDIS_POOL_TIMEOUT", 4*time.Second)
	cfg.Redis.LevelsTTL = getEnvDuration("REDIS_LEVELS_TTL", 72*time.Hour)
	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", false)

	// ======================
	// TELEGRAM
	// ======================
	cfg.Telegram.BotToken = getEnv("TG_API_KEY", "")
	cfg.Telegram.ChatID = getEnv("TG_CHAT_ID", "")
	cfg.Telegram.APIURL = getEnv("TELEGRAM_API_URL", "https://api.telegram.org")
	// Без токена и чата сообщения только печатаются в лог
	cfg.Telegram.Enabled = getEnvBool("TELEGRAM_ENABLED",
		cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "")

	// ======================
	// FIREBASE
	// ======================
	cfg.FCM.CredentialsPath = getEnv("FIREBASE_CREDENTIALS_PATH", "")
	cfg.FCM.Topic = getEnv("FCM_TOPIC", "market-pulse")
	cfg.FCM.Enabled = getEnvBool("FCM_ENABLED", cfg.FCM.CredentialsPath != "")

	// ======================
	// РАСПИСАНИЕ
	// ======================
	cfg.Schedule.Timezone = getEnv("SCHEDULE_TIMEZONE", "Asia/Taipei")
	cfg.Schedule.SentimentAt = getEnv("SENTIMENT_AT", "12:05")
	cfg.Schedule.HeatmapAt = getEnv("HEATMAP_AT", "08:05")
	cfg.Schedule.RunOnStart = getEnvBool("RUN_ON_START", true)
	cfg.Schedule.JobTimeout = getEnvDuration("JOB_TIMEOUT", 5*time.Minute)
	cfg.Schedule.HeatmapDayHour = getEnvInt("HEATMAP_DAY_HOUR", 8)

	// ======================
	// БРАУЗЕР
	// ======================
	cfg.Browser.Enabled = getEnvBool("BROWSER_ENABLED", true)
	cfg.Browser.ExecPath = getEnv("CHROME_PATH", "")
	cfg.Browser.Timeout = getEnvDuration("BROWSER_TIMEOUT", 90*time.Second)
	cfg.Browser.ScreenshotDir = getEnv("SCREENSHOT_DIR", "screenshots")
	cfg.Browser.SentimentURL = getEnv("FGI_URL", "https://sosovalue.com/tc/dashboard/fgi-indicator")
	cfg.Browser.HeatmapPageURL = getEnv("HEATMAP_PAGE_URL", "https://www.coinglass.com/zh-TW/LiquidityHeatmap")

	// ======================
	// COINGLASS
	// ======================
	cfg.Coinglass.APIURL = getEnv("COINGLASS_API_URL",
		"https://capi.coinglass.com/liquidity-heatmap/api/liquidity/v4/heatmap")
	cfg.Coinglass.APIKey = getEnv("COINGLASS_API_KEY", "SILRRC6CXIUlotufdglZRUe95rTD9C+pUGhm/uzGGq4=")
	cfg.Coinglass.Interval = getEnv("COINGLASS_INTERVAL", "d1")
	cfg.Coinglass.Timeout = getEnvDuration("COINGLASS_TIMEOUT", 20*time.Second)

	// ======================
	// BINANCE
	// ======================
	cfg.Binance.Enabled = getEnvBool("BINANCE_ENABLED", true)
	cfg.Binance.ApiKey = getEnv("BINANCE_API_KEY", "")
	cfg.Binance.ApiSecret = getEnv("BINANCE_API_SECRET", "")
	cfg.Binance.BaseURL = getEnv("BINANCE_BASE_URL", "")

	// ======================
	// ХРАНИЛИЩЕ ИНДЕКСА
	// ======================
	cfg.ScoreStore = strings.ToLower(getEnv("SCORE_STORE", ScoreStoreFile))
	cfg.ScoreStorePath = getEnv("SCORE_STORE_PATH", "last_index.txt")

	// ======================
	// ИНСТРУМЕНТЫ
	// ======================
	cfg.InstrumentsFile = getEnv("INSTRUMENTS_FILE", "")
	cfg.TopLevels = getEnvInt("TOP_LEVELS", 5)
	instruments, err := LoadInstruments(cfg.InstrumentsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load instruments: %w", err)
	}
	cfg.Instruments = instruments

	// ======================
	// ЛОГИРОВАНИЕ И HTTP
	// ======================
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFile = getEnv("LOG_FILE", "logs/market_pulse.log")
	cfg.HTTPEnabled = getEnvBool("HTTP_ENABLED", false)
	cfg.HTTPPort = getEnvInt("HTTP_PORT", 9090)
	cfg.MonitoringTestMode = getEnvBool("MONITORING_TEST_MODE", false)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// validate проверяет согласованность настроек
func (c *Config) validate() error {
	var validationErrors []string

	switch c.ScoreStore {
	case ScoreStoreFile:
		if c.ScoreStorePath == "" {
			validationErrors = append(validationErrors, "SCORE_STORE_PATH is required for file store")
		}
	case ScoreStoreRedis:
		if !c.Redis.Enabled {
			validationErrors = append(validationErrors, "REDIS_ENABLED must be true when SCORE_STORE=redis")
		}
	case ScoreStorePostgres:
		if !c.Database.Enabled {
			validationErrors = append(validationErrors, "DB_ENABLED must be true when SCORE_STORE=postgres")
		}
	default:
		validationErrors = append(validationErrors,
			fmt.Sprintf("SCORE_STORE должен быть file, redis или postgres (получено %q)", c.ScoreStore))
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			validationErrors = append(validationErrors, "DB_HOST is required")
		}
		if c.Database.Port <= 0 {
			validationErrors = append(validationErrors, "DB_PORT must be positive")
		}
		if c.Database.User == "" {
			validationErrors = append(validationErrors, "DB_USER is required")
		}
		if c.Database.Name == "" {
			validationErrors = append(validationErrors, "DB_NAME is required")
		}
	}

	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		validationErrors = append(validationErrors,
			fmt.Sprintf("SCHEDULE_TIMEZONE %q: %v", c.Schedule.Timezone, err))
	}
	if _, _, err := ParseClock(c.Schedule.SentimentAt); err != nil {
		validationErrors = append(validationErrors, "SENTIMENT_AT: "+err.Error())
	}
	if _, _, err := ParseClock(c.Schedule.HeatmapAt); err != nil {
		validationErrors = append(validationErrors, "HEATMAP_AT: "+err.Error())
	}
	if c.Schedule.HeatmapDayHour < 0 || c.Schedule.HeatmapDayHour > 23 {
		validationErrors = append(validationErrors, "HEATMAP_DAY_HOUR должен быть в диапазоне 0-23")
	}

	if c.TopLevels <= 0 {
		validationErrors = append(validationErrors, "TOP_LEVELS must be positive")
	}
	if len(c.Instruments) == 0 {
		validationErrors = append(validationErrors, "at least one instrument is required")
	}

	if c.HTTPEnabled && (c.HTTPPort <= 0 || c.HTTPPort > 65535) {
		validationErrors = append(validationErrors, "HTTP_PORT должен быть в диапазоне 1-65535")
	}

	if len(validationErrors) > 0 {
		errMsg := strings.Join(validationErrors, "; ")
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ МЕТОДЫ
// ============================================

// Location возвращает часовой пояс расписания
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetPostgresDSN возвращает DSN для подключения к PostgreSQL
func (c *Config) GetPostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddress возвращает адрес Redis
func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// PrintSummary выводит сводку конфигурации
func (c *Config) PrintSummary() {
	log.Printf("📋 Конфигурация приложения:")
	log.Printf("   • Окружение: %s", c.Environment)
	log.Printf("   • Уровень логирования: %s", c.LogLevel)
	log.Printf("   • Часовой пояс: %s", c.Schedule.Timezone)
	log.Printf("   • Индекс страха: ежедневно в %s", c.Schedule.SentimentAt)
	log.Printf("   • Тепловая карта: ежедневно в %s", c.Schedule.HeatmapAt)
	log.Printf("   • Запуск при старте: %v", c.Schedule.RunOnStart)
	log.Printf("   • Хранилище индекса: %s", c.ScoreStore)
	log.Printf("   • Браузер: %v (скриншоты: %s)", c.Browser.Enabled, c.Browser.ScreenshotDir)

	names := make([]string, 0, len(c.Instruments))
	for _, inst := range c.Instruments {
		names = append(names, inst.Name)
	}
	log.Printf("   • Инструменты: %s (топ %d уровней)", strings.Join(names, ", "), c.TopLevels)

	if c.Database.Enabled {
		log.Printf("   • PostgreSQL: %s:%d/%s", c.Database.Host, c.Database.Port, c.Database.Name)
	}
	if c.Redis.Enabled {
		log.Printf("   • Redis: %s (DB: %d, Pool: %d)", c.GetRedisAddress(), c.Redis.DB, c.Redis.PoolSize)
	}

	log.Printf("   • Telegram включен: %v", c.Telegram.Enabled)
	if c.Telegram.Enabled {
		token := c.Telegram.BotToken
		if len(token) > 10 {
			token = token[:5] + "..." + token[len(token)-5:]
		}
		log.Printf("   • Telegram Token: %s", token)
		log.Printf("   • Telegram Chat ID: %s", c.Telegram.ChatID)
	}
	log.Printf("   • FCM включен: %v (topic: %s)", c.FCM.Enabled, c.FCM.Topic)
	log.Printf("   • HTTP метрики: %v (порт: %d)", c.HTTPEnabled, c.HTTPPort)
}

// ParseClock разбирает строку "HH:MM"
func ParseClock(value string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("ожидается формат HH:MM, получено %q", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("некорректный час в %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("некорректные минуты в %q", value)
	}
	return hour, minute, nil
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ
// ============================================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
