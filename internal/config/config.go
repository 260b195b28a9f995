package config

import (
	"fmt"     // For DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort             string        // Application port
	DBUser              string        // Database user
	DBPassword          string        // Database password
	DBHost              string        // Database host
	DBPort              string        // Database port
	DBName              string        // Database name
	JWTSecret           string        // JWT secret key
	JWTTTL              time.Duration // Lifetime of issued tokens
	RedisAddr           string        // Redis server address, empty disables Redis
	RedisPass           string        // Redis password
	RedisDB             int           // Redis database number
	IsProd              bool          // Is production environment
	CouponSweepSchedule string        // Cron spec for the coupon expiry sweep
	CheckoutLockTTL     time.Duration // How long a checkout holds the per-account lock
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:             getOrDefault("APP_PORT", "8080"),                       // Application port
		DBUser:              os.Getenv("DB_USER"),                                   // Database user
		DBPassword:          os.Getenv("DB_PASSWORD"),                               // Database password
		DBHost:              getOrDefault("DB_HOST", "127.0.0.1"),                   // Database host
		DBPort:              getOrDefault("DB_PORT", "3306"),                        // Database port
		DBName:              os.Getenv("DB_NAME"),                                   // Database name
		JWTSecret:           os.Getenv("JWT_SECRET"),                                // JWT secret key
		JWTTTL:              time.Duration(intOrDefault("JWT_TTL_MINUTES", 60)) * time.Minute,
		RedisAddr:           os.Getenv("REDIS_ADDR"),                                // Redis server address
		RedisPass:           os.Getenv("REDIS_PASS"),                                // Redis password
		RedisDB:             redisDB,                                                // Redis database number
		IsProd:              os.Getenv("IS_PROD") == "true",                         // Is production environment
		CouponSweepSchedule: getOrDefault("COUPON_SWEEP_SCHEDULE", "@every 1h"),     // Coupon expiry sweep
		CheckoutLockTTL:     time.Duration(intOrDefault("CHECKOUT_LOCK_SECONDS", 10)) * time.Second,
	}
}

// DSN builds the MySQL data source name
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// getOrDefault returns the env value or the fallback when unset
func getOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// intOrDefault parses a positive int env value, falling back on absence or garbage
func intOrDefault(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
