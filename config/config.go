package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	ServerAddr string
	GinMode    string

	// Database
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// Email
	EmailEnabled bool
	SESRegion    string
	EmailSender  string

	// Realtime & dispatch
	RealtimeIdleTimeout time.Duration
	EventBufferSize     int

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment with Viper, applying
// defaults suitable for local development.
func Load() *Config {
	viper.SetDefault("SERVER_ADDR", ":8080")
	viper.SetDefault("GIN_MODE", "debug")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "")
	viper.SetDefault("DB_NAME", "alumconnect")
	viper.SetDefault("DB_PORT", "5432")

	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_TTL", "24h")

	viper.SetDefault("EMAIL_ENABLED", false)
	viper.SetDefault("SES_REGION", "us-east-1")
	viper.SetDefault("EMAIL_SENDER", "no-reply@alumconnect.local")

	viper.SetDefault("REALTIME_IDLE_TIMEOUT", "5m")
	viper.SetDefault("EVENT_BUFFER_SIZE", 64)

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	viper.AutomaticEnv()

	return &Config{
		ServerAddr:          viper.GetString("SERVER_ADDR"),
		GinMode:             viper.GetString("GIN_MODE"),
		DBHost:              viper.GetString("DB_HOST"),
		DBUser:              viper.GetString("DB_USER"),
		DBPassword:          viper.GetString("DB_PASSWORD"),
		DBName:              viper.GetString("DB_NAME"),
		DBPort:              viper.GetString("DB_PORT"),
		JWTSecret:           viper.GetString("JWT_SECRET"),
		JWTTTL:              parseDuration(viper.GetString("JWT_TTL"), 24*time.Hour),
		EmailEnabled:        viper.GetBool("EMAIL_ENABLED"),
		SESRegion:           viper.GetString("SES_REGION"),
		EmailSender:         viper.GetString("EMAIL_SENDER"),
		RealtimeIdleTimeout: parseDuration(viper.GetString("REALTIME_IDLE_TIMEOUT"), 5*time.Minute),
		EventBufferSize:     viper.GetInt("EVENT_BUFFER_SIZE"),
		LogLevel:            viper.GetString("LOG_LEVEL"),
		LogFormat:           viper.GetString("LOG_FORMAT"),
	}
}

func parseDuration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}
