// internal/config/config.go
//
// Server configuration from the environment.
// A .env file in the working directory is loaded first when present; real
// environment variables win over it.

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port         string
	LogLevel     zerolog.Level
	DatabaseURL  string
	JWTSecret    string
	JWTExpires   time.Duration
	ClientOrigin string
	SolveTimeout time.Duration
	NodeLimit    int
	PresetsFile  string
}

// Load reads .env (if any) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(k, def string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return def
	}
	c := Config{
		Port:         get("PORT", "5175"),
		DatabaseURL:  get("DATABASE_URL", "./data/rummikub.db"),
		JWTSecret:    get("JWT_SECRET", "dev-secret"),
		ClientOrigin: get("CLIENT_ORIGIN", "*"),
		PresetsFile:  get("DECK_PRESETS_FILE", ""),
	}

	lvl, err := zerolog.ParseLevel(get("LOG_LEVEL", "info"))
	if err != nil {
		return c, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	c.LogLevel = lvl

	hours, err := strconv.Atoi(get("JWT_EXPIRES_HOURS", "24"))
	if err != nil || hours <= 0 {
		return c, fmt.Errorf("JWT_EXPIRES_HOURS: want a positive integer, got %q", getenv("JWT_EXPIRES_HOURS"))
	}
	c.JWTExpires = time.Duration(hours) * time.Hour

	c.SolveTimeout, err = time.ParseDuration(get("SOLVE_TIMEOUT", "10s"))
	if err != nil {
		return c, fmt.Errorf("SOLVE_TIMEOUT: %w", err)
	}

	c.NodeLimit, err = strconv.Atoi(get("SOLVE_NODE_LIMIT", "20000"))
	if err != nil || c.NodeLimit < 0 {
		return c, fmt.Errorf("SOLVE_NODE_LIMIT: want a non-negative integer, got %q", getenv("SOLVE_NODE_LIMIT"))
	}
	return c, nil
}
