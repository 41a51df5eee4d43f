package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PROJECT_ID", "demo-project")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreFirestore, cfg.StoreBackend)
	assert.Equal(t, "demo-project", cfg.AppID, "APP_ID falls back to PROJECT_ID")
	assert.Equal(t, 5, cfg.RoleRetryAttempts)
	assert.Equal(t, time.Second, cfg.RoleRetryDelay)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout())
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("APP_ID", "careerverse")
	t.Setenv("ROLE_RETRY_DELAY", "250ms")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	assert.Equal(t, 250*time.Millisecond, cfg.RoleRetryDelay)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	require.NoError(t, cfg.Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"firestore without project", Config{StoreBackend: StoreFirestore, AppID: "x", RoleRetryAttempts: 5, ResumeServiceRPS: 1}, "PROJECT_ID"},
		{"unknown backend", Config{StoreBackend: "mongo", AppID: "x", RoleRetryAttempts: 5, ResumeServiceRPS: 1}, "STORE_BACKEND"},
		{"missing app id", Config{StoreBackend: StoreMemory, RoleRetryAttempts: 5, ResumeServiceRPS: 1}, "APP_ID"},
		{"zero attempts", Config{StoreBackend: StoreMemory, AppID: "x", ResumeServiceRPS: 1}, "ROLE_RETRY_ATTEMPTS"},
		{"zero rps", Config{StoreBackend: StoreMemory, AppID: "x", RoleRetryAttempts: 5}, "RESUME_SERVICE_RPS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
