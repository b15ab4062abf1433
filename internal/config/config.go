// Package config centralizes environment-variable configuration, in the
// FromEnv() style used across the example pack rather than scattering
// os.Getenv calls through main.
package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr string
	Env      string // "dev" enables pretty console logging

	DatabaseURL string
	DBMaxConns  int32

	JWTSecret        string
	DevLoginPassword string // legacy-fallback password (§6 Environment)

	LogLevel string

	LoginRateLimitPerMin int

	CORSOrigins []string
}

func FromEnv() Config {
	return Config{
		HTTPAddr:             ":" + envOr("PORT", "8080"),
		Env:                  envOr("ENV", ""),
		DatabaseURL:          envOr("DATABASE_URL", ""),
		DBMaxConns:           int32(envIntOr("DB_MAX_CONNS", 5)),
		JWTSecret:            envOr("JWT_SECRET", "tasksync-dev-secret"),
		DevLoginPassword:     envOr("DEV_LOGIN_PASSWORD", "tasksync"),
		LogLevel:             envOr("LOG_LEVEL", "info"),
		LoginRateLimitPerMin: envIntOr("LOGIN_RATE_LIMIT_PER_MIN", 10),
		CORSOrigins:          csvOr("CORS_ORIGINS", "*"),
	}
}

func (c Config) IsDev() bool { return c.Env == "dev" }

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envIntOr(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
