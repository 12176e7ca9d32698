package config

import (
	"os"
	"strconv"

	"github.com/go-redis/redis/v8"
)

type Config struct {
	Environment string
	Port        string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	BaseURL     string

	// App Settings
	MaxCustomGroups     int
	MaxGroupMembers     int
	CacheTTLMinutes     int
	RateLimitRequest    int
	RateLimitWindow     int // minutes
	BulkRateLimitPerMin int
}

func Load() *Config {
	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "mongodb://localhost:27017/famline"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:   getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),

		// App Settings
		MaxCustomGroups:     getEnvAsInt("MAX_CUSTOM_GROUPS", 25),
		MaxGroupMembers:     getEnvAsInt("MAX_GROUP_MEMBERS", 50),
		CacheTTLMinutes:     getEnvAsInt("CACHE_TTL_MINUTES", 5),
		RateLimitRequest:    getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:     getEnvAsInt("RATE_LIMIT_WINDOW_MINUTES", 1),
		BulkRateLimitPerMin: getEnvAsInt("BULK_RATE_LIMIT_PER_MINUTE", 10),
	}
}

func InitRedis(cfg *Config) *redis.Client {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		// Fallback to default config
		opt = &redis.Options{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}
	}

	client := redis.NewClient(opt)
	return client
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
