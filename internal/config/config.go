package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr       string
	DBPath     string
	Secret     string
	TokenTTL   time.Duration
	RateLimits RateLimits
}

type RateLimits struct {
	RegisterPerMinute int
	LoginPerMinute    int
	PostPerMinute     int
}

func Load() Config {
	addr := envString("BLOGLIST_ADDR", "")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":3003"
		}
	}
	return Config{
		Addr:     addr,
		DBPath:   envString("BLOGLIST_DB", "bloglist.db"),
		Secret:   envString("BLOGLIST_SECRET", "dev-signing-secret"),
		TokenTTL: envDuration("BLOGLIST_TOKEN_TTL", time.Hour),
		RateLimits: RateLimits{
			RegisterPerMinute: envInt("BLOGLIST_RL_REGISTER_PER_MIN", 10),
			LoginPerMinute:    envInt("BLOGLIST_RL_LOGIN_PER_MIN", 30),
			PostPerMinute:     envInt("BLOGLIST_RL_POST_PER_MIN", 60),
		},
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
