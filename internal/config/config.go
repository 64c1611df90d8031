package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	GinMode string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	MailFrom string

	OTPRetention   time.Duration
	OTPPurgePeriod time.Duration
}

func Load() *Config {
	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "projectuser"),
		DBPassword: getEnv("DB_PASSWORD", "projectpassword"),
		DBName:     getEnv("DB_NAME", "project_management"),

		GinMode: getEnv("GIN_MODE", "debug"),

		JWTSecret:       getEnv("JWT_SECRET", "default-secret-key-change-me"),
		AccessTokenTTL:  getDurationEnv("ACCESS_TOKEN_TTL_MINUTES", 15) * time.Minute,
		RefreshTokenTTL: getDurationEnv("REFRESH_TOKEN_TTL_MINUTES", 7*24*60) * time.Minute,

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASSWORD", ""),
		MailFrom: getEnv("MAIL_FROM", "noreply@example.com"),

		OTPRetention:   getDurationEnv("OTP_RETENTION_MINUTES", 24*60) * time.Minute,
		OTPPurgePeriod: getDurationEnv("OTP_PURGE_PERIOD_MINUTES", 60) * time.Minute,
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDurationEnv(key string, defaultMinutes int) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return time.Duration(defaultMinutes)
	}
	minutes, err := strconv.Atoi(value)
	if err != nil || minutes <= 0 {
		return time.Duration(defaultMinutes)
	}
	return time.Duration(minutes)
}
