package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port               int
	NatsURL            string
	NatsToken          string
	DatabaseURL        string
	LogLevel           string
	AnthropicAPIKey    string
	CoachModel         string
	CoachMaxTokens     int
	APIToken           string
	CandidatePoolLimit int
}

func Load() Config {
	return Config{
		Port:               envInt("COMPASS_PORT", 8760),
		NatsURL:            envStr("NATS_URL", "nats://hermes:4222"),
		NatsToken:          envStr("NATS_TOKEN", ""),
		DatabaseURL:        envStr("DATABASE_URL", ""),
		LogLevel:           envStr("LOG_LEVEL", "info"),
		AnthropicAPIKey:    envStr("ANTHROPIC_API_KEY", ""),
		CoachModel:         envStr("COACH_MODEL", "claude-sonnet-4-20250514"),
		CoachMaxTokens:     envInt("COACH_MAX_TOKENS", 500),
		APIToken:           envStr("COMPASS_API_TOKEN", ""),
		CandidatePoolLimit: envInt("CANDIDATE_POOL_LIMIT", 100),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt reads a positive integer, falling back on anything else.
func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
