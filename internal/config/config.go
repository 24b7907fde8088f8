package config

import (
	"os"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// AI oracle (OpenAI-compatible chat completions)
	AIAPIKey  string
	AIAPIURL  string
	AIModel   string
	AITimeout time.Duration

	// Blob storage (Supabase Storage)
	StorageURL        string
	StorageServiceKey string
	StorageBucket     string
	StorageTimeout    time.Duration
	SignedURLExpiry   time.Duration

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "civicsetu_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		AIAPIKey:  getEnv("AI_API_KEY", ""),
		AIAPIURL:  getEnv("AI_API_URL", "https://api.openai.com/v1/chat/completions"),
		AIModel:   getEnv("AI_MODEL", "gpt-4o-mini"),
		AITimeout: parseDuration(getEnv("AI_TIMEOUT", "20s"), 20*time.Second),

		StorageURL:        getEnv("STORAGE_URL", ""),
		StorageServiceKey: getEnv("STORAGE_SERVICE_KEY", ""),
		StorageBucket:     getEnv("STORAGE_BUCKET", "evidence-media"),
		StorageTimeout:    parseDuration(getEnv("STORAGE_TIMEOUT", "60s"), 60*time.Second),
		SignedURLExpiry:   parseDuration(getEnv("SIGNED_URL_EXPIRY", "1h"), time.Hour),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
