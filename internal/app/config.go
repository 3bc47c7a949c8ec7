package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/selahstudy/academy-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	LogMode     string
	Environment string
	Version     string

	DatabaseDSN string
	RedisAddr   string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	CORSOrigins []string
}

// fileConfig mirrors Config for the optional YAML file. Env vars always win
// over file values.
type fileConfig struct {
	Port        string   `yaml:"port"`
	LogMode     string   `yaml:"log_mode"`
	Environment string   `yaml:"environment"`
	DatabaseDSN string   `yaml:"database_dsn"`
	RedisAddr   string   `yaml:"redis_addr"`
	JWTSecret   string   `yaml:"jwt_secret"`
	AccessTTL   int      `yaml:"access_token_ttl_seconds"`
	RefreshTTL  int      `yaml:"refresh_token_ttl_seconds"`
	CORSOrigins []string `yaml:"cors_origins"`
}

func LoadConfig(log *logger.Logger) (Config, error) {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	var fc fileConfig
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
		log.Info("loaded config file", "path", path)
	}

	cfg := Config{
		Port:            getEnv("PORT", firstNonEmpty(fc.Port, "8080")),
		LogMode:         getEnv("LOG_MODE", firstNonEmpty(fc.LogMode, "development")),
		Environment:     getEnv("ENVIRONMENT", firstNonEmpty(fc.Environment, "development")),
		Version:         getEnv("VERSION", "dev"),
		DatabaseDSN:     getEnv("DATABASE_DSN", fc.DatabaseDSN),
		RedisAddr:       getEnv("REDIS_ADDR", fc.RedisAddr),
		JWTSecretKey:    getEnv("JWT_SECRET_KEY", firstNonEmpty(fc.JWTSecret, "defaultsecret")),
		AccessTokenTTL:  time.Duration(getEnvAsInt("ACCESS_TOKEN_TTL", firstPositive(fc.AccessTTL, 3600))) * time.Second,
		RefreshTokenTTL: time.Duration(getEnvAsInt("REFRESH_TOKEN_TTL", firstPositive(fc.RefreshTTL, 86400))) * time.Second,
		CORSOrigins:     fc.CORSOrigins,
	}
	if raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); raw != "" {
		cfg.CORSOrigins = splitAndTrim(raw)
	}
	if cfg.DatabaseDSN == "" {
		return Config{}, fmt.Errorf("DATABASE_DSN is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
