package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Payment   PaymentConfig
}

type AppConfig struct {
	Name    string
	Env     string
	Port    string
	Debug   bool
	BaseURL string // public base URL embedded into room_url
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
	Debug    bool
}

type StorageConfig struct {
	Path          string
	UploadMaxSize int64
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type PaymentConfig struct {
	// LockWait bounds how long a payment request waits for its room's write
	// lock before failing busy.
	LockWait time.Duration
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "splitroom-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("APP_BASE_URL", "http://localhost:8080")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "splitroom")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("STORAGE_PATH", "./storage")
	viper.SetDefault("UPLOAD_MAX_SIZE", 20971520)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("PAYMENT_LOCK_WAIT_MS", 2000)

	return &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Env:     viper.GetString("APP_ENV"),
			Port:    viper.GetString("APP_PORT"),
			Debug:   viper.GetBool("APP_DEBUG"),
			BaseURL: viper.GetString("APP_BASE_URL"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
			Debug:    viper.GetBool("APP_DEBUG"),
		},
		Storage: StorageConfig{
			Path:          viper.GetString("STORAGE_PATH"),
			UploadMaxSize: viper.GetInt64("UPLOAD_MAX_SIZE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Payment: PaymentConfig{
			LockWait: time.Duration(viper.GetInt("PAYMENT_LOCK_WAIT_MS")) * time.Millisecond,
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
