package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
// 実行時に管理者が変更する設定（審査APIキー、投稿上限）は
// settingsコレクション側のmodel.AppConfigが持つ。
type Config struct {
	// Database
	DatabaseURL string

	// Session
	SessionMaxAge int

	// Moderation
	ModerationEndpoint  string
	ModerationModel     string
	ReviewTimeout       time.Duration
	ReviewLatency       time.Duration
	ReviewMaxConcurrent int
	ReviewSweepInterval time.Duration

	// Rate Limit
	RateLimitGeneral int
	RateLimitSubmit  int

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.ModerationEndpoint = getEnvString("MODERATION_ENDPOINT", "https://openrouter.ai/api/v1/chat/completions")
	cfg.ModerationModel = getEnvString("MODERATION_MODEL", "openai/gpt-3.5-turbo")
	cfg.ReviewTimeout = getEnvDuration("REVIEW_TIMEOUT", 10*time.Second)
	cfg.ReviewLatency = getEnvDuration("REVIEW_LATENCY", 1500*time.Millisecond)
	cfg.ReviewMaxConcurrent = getEnvInt("REVIEW_MAX_CONCURRENT", 4)
	cfg.ReviewSweepInterval = getEnvDuration("REVIEW_SWEEP_INTERVAL", time.Minute)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitSubmit = getEnvInt("RATE_LIMIT_SUBMIT", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
