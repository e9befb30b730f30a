package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:3000", cfg.APIBase)
		assert.Equal(t, "", cfg.Origin)
		assert.Equal(t, "", cfg.StoreDSN)
		assert.Equal(t, 30*time.Second, cfg.HTTPTimeout())
		assert.Equal(t, "info", cfg.LogLevel)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("CHRONOCAP_API_BASE", "https://api.example.com/")
		t.Setenv("CHRONOCAP_ORIGIN", "https://capsules.example.com")
		t.Setenv("CHRONOCAP_STORE", "redis://localhost:6379/0")
		t.Setenv("CHRONOCAP_HTTP_TIMEOUT_SECONDS", "5")
		t.Setenv("CHRONOCAP_LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://api.example.com", cfg.BaseURL())
		assert.Equal(t, "https://capsules.example.com", cfg.PublicOrigin())
		assert.Equal(t, "redis://localhost:6379/0", cfg.StoreDSN)
		assert.Equal(t, 5*time.Second, cfg.HTTPTimeout())
		assert.Equal(t, "debug", cfg.LogLevel)
	})
}

func TestPublicOrigin(t *testing.T) {
	t.Run("falls back to the API base", func(t *testing.T) {
		cfg := &Config{APIBase: "http://localhost:3000/"}
		assert.Equal(t, "http://localhost:3000", cfg.PublicOrigin())
	})

	t.Run("explicit origin wins", func(t *testing.T) {
		cfg := &Config{APIBase: "http://localhost:3000", Origin: "https://front.example/"}
		assert.Equal(t, "https://front.example", cfg.PublicOrigin())
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid",
			cfg:  Config{APIBase: "https://api.example.com", HTTPTimeoutSeconds: 30},
		},
		{
			name:    "empty base",
			cfg:     Config{APIBase: "  ", HTTPTimeoutSeconds: 30},
			wantErr: "must not be empty",
		},
		{
			name:    "non-http base",
			cfg:     Config{APIBase: "ftp://api.example.com", HTTPTimeoutSeconds: 30},
			wantErr: "http(s)",
		},
		{
			name:    "zero timeout",
			cfg:     Config{APIBase: "https://api.example.com"},
			wantErr: "positive",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
