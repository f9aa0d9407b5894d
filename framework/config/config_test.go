package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-beans/framework/config"
)

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load("testdata/empty.env")

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"App.Name", cfg.App.Name, "GoBeans"},
		{"App.Env", cfg.App.Env, "local"},
		{"Log.Level", cfg.Log.Level, "info"},
		{"Events.Workers", cfg.Events.Workers, 0},
		{"Introspect.Addr", cfg.Introspect.Addr, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
	assert.Empty(t, cfg.Definitions)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("APP_NAME", "Garage")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("EVENT_WORKERS", "4")
	t.Setenv("INTROSPECT_ADDR", ":9090")
	t.Setenv("DEFINITIONS", "beans.yaml, more.yaml,")

	cfg := config.Load("testdata/empty.env")

	assert.Equal(t, "Garage", cfg.App.Name)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 4, cfg.Events.Workers)
	assert.Equal(t, ":9090", cfg.Introspect.Addr)
	assert.Equal(t, []string{"beans.yaml", "more.yaml"}, cfg.Definitions)
}

// ── Get / GetInt / GetBool / GetList ─────────────────────────────────────────

func TestGet(t *testing.T) {
	t.Setenv("CUSTOM_KEY", "hello")
	assert.Equal(t, "hello", config.Get("CUSTOM_KEY", "default"))
	assert.Equal(t, "fallback", config.Get("MISSING_KEY_FOR_TEST", "fallback"))
}

func TestGetInt(t *testing.T) {
	t.Setenv("SOME_INT", "42")
	assert.Equal(t, 42, config.GetInt("SOME_INT", 0))

	t.Setenv("SOME_INT", "notanint")
	assert.Equal(t, 99, config.GetInt("SOME_INT", 99))
}

func TestGetBool(t *testing.T) {
	for _, val := range []string{"true", "1", "True", "TRUE"} {
		t.Setenv("BOOL_KEY", val)
		assert.True(t, config.GetBool("BOOL_KEY", false), val)
	}

	t.Setenv("BOOL_KEY", "false")
	assert.False(t, config.GetBool("BOOL_KEY", true))

	t.Setenv("BOOL_KEY", "notabool")
	assert.True(t, config.GetBool("BOOL_KEY", true))
}

func TestGetList(t *testing.T) {
	t.Setenv("LIST_KEY", " a ,, b")
	assert.Equal(t, []string{"a", "b"}, config.GetList("LIST_KEY", nil))
	assert.Equal(t, []string{"x"}, config.GetList("MISSING_LIST_FOR_TEST", []string{"x"}))
}

// ── Logger ───────────────────────────────────────────────────────────────────

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		level   string
		wantErr bool
	}{
		{"development", "local", "debug", false},
		{"production", "production", "warn", false},
		{"bad level", "local", "loud", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				App: config.AppConfig{Name: "test", Env: tt.env},
				Log: config.LogConfig{Level: tt.level},
			}
			logger, err := config.NewLogger(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}
