package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	Store       string `env:"STORE" envDefault:"postgres"`

	// Redis Config
	RedisAddr string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string        `env:"REDIS_PASSWORD"`
	RedisDB   int           `env:"REDIS_DB" envDefault:"0"`
	RedisPool int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"30s"`

	// Dispatch Config
	SpeedFactor              float64       `env:"SPEED_FACTOR" envDefault:"2"`
	CongestionRadiusKm       float64       `env:"CONGESTION_RADIUS_KM" envDefault:"1"`
	ETATimeScale             time.Duration `env:"ETA_TIME_SCALE" envDefault:"1m"`
	SceneClearanceDelay      time.Duration `env:"SCENE_CLEARANCE_DELAY" envDefault:"60s"`
	VehicleAvailabilityDelay time.Duration `env:"VEHICLE_AVAILABILITY_DELAY" envDefault:"180s"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`
	WebhookQueueLimit int64         `env:"WEBHOOK_QUEUE_LIMIT" envDefault:"10000"`

	// NATS Config
	NATSURL           string `env:"NATS_URL"`
	NATSSubjectPrefix string `env:"NATS_SUBJECT_PREFIX" envDefault:"dispatch"`

	// Voice dispatch (Twilio Studio)
	TwilioAccountSID   string        `env:"TWILIO_SID"`
	TwilioAuthToken    string        `env:"TWILIO_AUTH_TOKEN"`
	TwilioFlowSID      string        `env:"TWILIO_FLOW_SID"`
	TwilioPhoneNumber  string        `env:"TWILIO_PHONE_NUMBER"`
	VoiceRatePerSecond float64       `env:"VOICE_RATE_PER_SECOND" envDefault:"1"`
	VoiceTimeout       time.Duration `env:"VOICE_TIMEOUT" envDefault:"10s"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		HTTPPort:                 getEnv("HTTP_PORT", "8080"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		LogFormat:                getEnv("LOG_FORMAT", "json"),
		DBMaxConns:               int32(getEnvAsInt("DB_MAX_CONNS", 10)),
		Store:                    getEnv("STORE", StorePostgres),
		RedisAddr:                getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:                os.Getenv("REDIS_PASSWORD"),
		RedisDB:                  getEnvAsInt("REDIS_DB", 0),
		RedisPool:                getEnvAsInt("REDIS_POOL_SIZE", 10),
		CacheTTL:                 getEnvAsDuration("CACHE_TTL", 30*time.Second),
		SpeedFactor:              getEnvAsFloat("SPEED_FACTOR", 2),
		CongestionRadiusKm:       getEnvAsFloat("CONGESTION_RADIUS_KM", 1),
		ETATimeScale:             getEnvAsDuration("ETA_TIME_SCALE", time.Minute),
		SceneClearanceDelay:      getEnvAsDuration("SCENE_CLEARANCE_DELAY", 60*time.Second),
		VehicleAvailabilityDelay: getEnvAsDuration("VEHICLE_AVAILABILITY_DELAY", 180*time.Second),
		WebhookURL:               os.Getenv("WEBHOOK_URL"),
		WebhookSecret:            os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:           getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries:        getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:         getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		WebhookQueueLimit:        int64(getEnvAsInt("WEBHOOK_QUEUE_LIMIT", 10000)),
		NATSURL:                  os.Getenv("NATS_URL"),
		NATSSubjectPrefix:        getEnv("NATS_SUBJECT_PREFIX", "dispatch"),
		TwilioAccountSID:         os.Getenv("TWILIO_SID"),
		TwilioAuthToken:          os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFlowSID:            os.Getenv("TWILIO_FLOW_SID"),
		TwilioPhoneNumber:        os.Getenv("TWILIO_PHONE_NUMBER"),
		VoiceRatePerSecond:       getEnvAsFloat("VOICE_RATE_PER_SECOND", 1),
		VoiceTimeout:             getEnvAsDuration("VOICE_TIMEOUT", 10*time.Second),
	}

	// Загрузка API ключей
	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr != "" {
		cfg.APIKeys = strings.Split(apiKeysStr, ",")
		for i, key := range cfg.APIKeys {
			cfg.APIKeys[i] = strings.TrimSpace(key)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	if c.SpeedFactor <= 0 {
		return fmt.Errorf("SPEED_FACTOR must be positive")
	}
	if c.ETATimeScale <= 0 {
		return fmt.Errorf("ETA_TIME_SCALE must be positive")
	}
	// Машина возвращается в пул позже, чем закрывается инцидент
	if c.VehicleAvailabilityDelay <= c.SceneClearanceDelay {
		return fmt.Errorf("VEHICLE_AVAILABILITY_DELAY (%s) must be longer than SCENE_CLEARANCE_DELAY (%s)",
			c.VehicleAvailabilityDelay, c.SceneClearanceDelay)
	}
	return nil
}

// VoiceEnabled сообщает, настроен ли голосовой канал
func (c *Config) VoiceEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFlowSID != ""
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
