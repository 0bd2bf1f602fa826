package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Preference store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Env      string
	LogLevel string
	HTTPAddr string

	StorageBackend string
	PrefsFile      string
	PostgresDSN    string
	RedisAddr      string
	RedisPassword  string

	MQTTBroker   string
	MQTTClientID string
	MQTTQoS      int

	FeedTick            time.Duration
	FeedChartInterval   time.Duration
	FeedInsightInterval time.Duration
	BookingDelay        time.Duration
	NewsletterDelay     time.Duration
	SessionIdle         time.Duration

	DoctorsFile    string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads the environment (and .env when present) once per process.
func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		cfg = FromEnv()
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

// FromEnv builds a Config from the current environment without caching it.
func FromEnv() *Config {
	return &Config{
		Env:                 getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8088"),
		StorageBackend:      strings.ToLower(getEnv("STORAGE_BACKEND", BackendFile)),
		PrefsFile:           getEnv("PREFS_FILE", "data/preferences.json"),
		PostgresDSN:         getEnv("POSTGRES_DSN", ""),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		MQTTBroker:          getEnv("MQTT_BROKER", ""),
		MQTTClientID:        getEnv("MQTT_CLIENT_ID", "healthsync-feed"),
		MQTTQoS:             getEnvAsInt("MQTT_QOS", 1),
		FeedTick:            getEnvAsDuration("FEED_TICK", 30*time.Second),
		FeedChartInterval:   getEnvAsDuration("FEED_CHART_INTERVAL", 5*time.Minute),
		FeedInsightInterval: getEnvAsDuration("FEED_INSIGHT_INTERVAL", time.Minute),
		BookingDelay:        getEnvAsDuration("BOOKING_DELAY", 2*time.Second),
		NewsletterDelay:     getEnvAsDuration("NEWSLETTER_DELAY", 2*time.Second),
		SessionIdle:         getEnvAsDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		DoctorsFile:         getEnv("DOCTORS_FILE", ""),
		CORSOrigins:         getEnvAsList("CORS_ORIGINS", []string{"*"}),
		RateLimitRPS:        getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:      getEnvAsInt("RATE_LIMIT_BURST", 10),
	}
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory:
	case BackendFile:
		if c.PrefsFile == "" {
			return errors.New("File storage requires PREFS_FILE to be set")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when STORAGE_BACKEND=redis")
		}
	default:
		return errors.New("STORAGE_BACKEND must be one of: memory, file, redis, postgres")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.MQTTQoS < 0 || c.MQTTQoS > 2 {
		return errors.New("MQTT_QOS must be 0, 1 or 2")
	}
	if c.FeedTick <= 0 || c.FeedChartInterval <= 0 || c.FeedInsightInterval <= 0 {
		return errors.New("feed intervals must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
