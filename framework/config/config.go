package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the typed configuration of a go-beans application.
type Config struct {
	App        AppConfig
	Log        LogConfig
	Events     EventsConfig
	Introspect IntrospectConfig

	// Definitions lists the YAML definition files loaded at start-up.
	Definitions []string
	// Placeholders lists the .env files whose keys feed ${key} placeholders.
	Placeholders []string
}

type AppConfig struct {
	Name string
	Env  string // local | production | testing
}

type LogConfig struct {
	Level string // debug | info | warn | error
}

type EventsConfig struct {
	// Workers bounds concurrent listener deliveries; 0 delivers synchronously.
	Workers int
}

type IntrospectConfig struct {
	// Addr is the listen address of the introspection server; empty disables it.
	Addr string
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name: env("APP_NAME", "GoBeans"),
			Env:  env("APP_ENV", "local"),
		},
		Log: LogConfig{
			Level: env("LOG_LEVEL", "info"),
		},
		Events: EventsConfig{
			Workers: GetInt("EVENT_WORKERS", 0),
		},
		Introspect: IntrospectConfig{
			Addr: env("INTROSPECT_ADDR", ""),
		},
		Definitions:  GetList("DEFINITIONS", nil),
		Placeholders: GetList("PLACEHOLDERS", nil),
	}
}

// IsProduction reports APP_ENV=production.
func (c *Config) IsProduction() bool { return c.App.Env == "production" }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
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

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// GetList returns a comma-separated env value as a list, skipping blanks.
func GetList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return SplitList(v)
}

// SplitList splits a comma-separated list, trimming and dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
