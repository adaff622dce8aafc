package config

import (
	"os"
	"strconv"
	"strings"
)

// AppConfig carries the knobs that used to hide as literals inside the
// filtering logic: placeholder asset URLs, moderation thresholds, pagination
// caps. Built once in main and passed down.
type AppConfig struct {
	Port      string
	JWTSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Shown in place of a hidden avatar/background. A privacy setting hides
	// an uploaded asset, not the existence of a default.
	DefaultAvatarURL     string
	DefaultBackgroundURL string

	// Distinct-reporter counts that move a post active -> under_review -> hidden.
	ReviewThreshold int
	HideThreshold   int

	MaxFeedPageSize int
}

func LoadAppConfig() *AppConfig {
	return &AppConfig{
		Port:                 getEnvDefault("PORT", "8080"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		RedisAddr:            getEnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		DefaultAvatarURL:     getEnvDefault("DEFAULT_AVATAR_URL", "https://cdn.platefeed.app/defaults/avatar.png"),
		DefaultBackgroundURL: getEnvDefault("DEFAULT_BACKGROUND_URL", "https://cdn.platefeed.app/defaults/background.png"),
		ReviewThreshold:      getEnvInt("REPORT_REVIEW_THRESHOLD", 3),
		HideThreshold:        getEnvInt("REPORT_HIDE_THRESHOLD", 10),
		MaxFeedPageSize:      getEnvInt("MAX_FEED_PAGE_SIZE", 50),
	}
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
