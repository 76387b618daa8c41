package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RedisAddr     string
	RedisPassword string

	ServerPort string
	JWTSecret  string

	// AtCoderBaseURL is the root of the kenkoooo AtCoder API, without a
	// trailing slash. The atcoder package derives the catalog and
	// submissions endpoints from it.
	AtCoderBaseURL string

	// SeedUser is an optional AtCoder handle to create on first boot.
	SeedUser string
)

// Load reads the .env file if present and resolves all settings from the
// environment. Must be called before InitDB/InitRedis.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	PostgresHost = getEnv("POSTGRES_HOST", "localhost")
	PostgresPort = getEnv("POSTGRES_PORT", "5432")
	PostgresUser = getEnv("POSTGRES_USER", "postgres")
	PostgresPassword = getEnv("POSTGRES_PASSWORD", "postgres")
	PostgresDB = getEnv("POSTGRES_DB", "codetrade")

	RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	RedisPassword = getEnv("REDIS_PASSWORD", "")

	ServerPort = getEnv("SERVER_PORT", "8080")
	JWTSecret = getEnv("JWT_SECRET", "")

	AtCoderBaseURL = getEnv("ATCODER_BASE_URL", "https://kenkoooo.com/atcoder")
	SeedUser = getEnv("SEED_ATCODER_USER", "")

	if JWTSecret == "" {
		log.Println("JWT_SECRET is not set, bearer tokens cannot be validated")
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
