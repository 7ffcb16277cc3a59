package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	LocalCacheSize int64
	JWTSecret      string
	AMQPURL        string
	EventsQueue    string
	SupportEmail   string
	SwaggerHost    string

	LoginMaxAttempts int
	LoginWindow      time.Duration
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		ReadTimeout:      getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:     getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		MySQLDSN:         getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/rooms?charset=utf8mb4&parseTime=True&loc=UTC"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RedisPass:        os.Getenv("REDIS_PASSWORD"),
		LocalCacheSize:   int64(getEnvInt("LOCAL_CACHE_SIZE", 1000)),
		JWTSecret:        getEnv("JWT_SECRET", "change-me"),
		AMQPURL:          os.Getenv("AMQP_URL"),
		EventsQueue:      getEnv("EVENTS_QUEUE", "booking_events"),
		SupportEmail:     getEnv("SUPPORT_EMAIL", "support@example.com"),
		SwaggerHost:      os.Getenv("SWAGGER_HOST"),
		LoginMaxAttempts: getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginWindow:      getEnvDuration("LOGIN_WINDOW", 15*time.Minute),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
