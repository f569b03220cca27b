package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Matching MatchingConfig
	Credits  CreditsConfig
}

type ServerConfig struct {
	Port              string
	Env               string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// JWTConfig validates bearer tokens minted by the external auth service.
type JWTConfig struct {
	AccessSecret string
	Issuer       string
	AccessExpiry time.Duration
}

type MatchingConfig struct {
	// PendingTTL is how long a pending match may sit before the expiry
	// sweeper rejects it.
	PendingTTL time.Duration
	// ExpiryCronSpec is the cron schedule of the sweeper.
	ExpiryCronSpec string
}

type CreditsConfig struct {
	// PerSession is the decimal credit amount submitted per qualifying
	// cross-institution session, e.g. "1.00".
	PerSession string
}

// Load reads configuration from environment variables with sane defaults.
// An optional .env file in the working directory is picked up for local runs.
func Load() *Config {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.ReadInConfig() // missing .env is fine

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "10s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("DB_DSN", "tutorhub:tutorhub@tcp(localhost:3306)/tutorhub?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("JWT_ACCESS_SECRET", "change-me-in-production")
	v.SetDefault("JWT_ISSUER", "tutorhub")
	v.SetDefault("JWT_ACCESS_EXPIRY", "15m")
	v.SetDefault("MATCH_PENDING_TTL", "168h")
	v.SetDefault("MATCH_EXPIRY_CRON", "@hourly")
	v.SetDefault("CREDITS_PER_SESSION", "1.00")

	return &Config{
		Server: ServerConfig{
			Port:              v.GetString("SERVER_PORT"),
			Env:               v.GetString("SERVER_ENV"),
			ReadTimeout:       v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:      v.GetDuration("SERVER_WRITE_TIMEOUT"),
			RateLimitRequests: v.GetInt("RATE_LIMIT_REQUESTS"),
			RateLimitWindow:   v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		JWT: JWTConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
			Issuer:       v.GetString("JWT_ISSUER"),
			AccessExpiry: v.GetDuration("JWT_ACCESS_EXPIRY"),
		},
		Matching: MatchingConfig{
			PendingTTL:     v.GetDuration("MATCH_PENDING_TTL"),
			ExpiryCronSpec: v.GetString("MATCH_EXPIRY_CRON"),
		},
		Credits: CreditsConfig{
			PerSession: v.GetString("CREDITS_PER_SESSION"),
		},
	}
}
