package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{
			name: "development environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "development"},
			},
			expected: true,
		},
		{
			name: "debug gin mode",
			config: &Config{
				Server: ServerConfig{GinMode: "debug"},
			},
			expected: true,
		},
		{
			name: "production environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "production"},
			},
			expected: false,
		},
		{
			name: "release mode",
			config: &Config{
				Server: ServerConfig{GinMode: "release", AppEnv: "production"},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.IsDevelopment()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{
			name: "production environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "production"},
			},
			expected: true,
		},
		{
			name: "development environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "development"},
			},
			expected: false,
		},
		{
			name: "staging environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "staging"},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.IsProduction()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	validConfig := func() *Config {
		return &Config{
			Server: ServerConfig{
				Port:           "8081",
				BaseURL:        "https://mentorbridge.dev",
				AllowedOrigins: []string{"https://mentorbridge.dev"},
			},
			Database: DatabaseConfig{
				URL: "postgres://localhost:5432/mentorbridge",
			},
			UserSession: UserSessionConfig{
				JWTSecret: "test-secret",
			},
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "missing database URL",
			mutate:      func(c *Config) { c.Database.URL = "" },
			expectError: true,
			errorMsg:    "DATABASE_URL is required",
		},
		{
			name:        "missing JWT secret",
			mutate:      func(c *Config) { c.UserSession.JWTSecret = "" },
			expectError: true,
			errorMsg:    "JWT_SECRET is required",
		},
		{
			name:        "missing port",
			mutate:      func(c *Config) { c.Server.Port = "" },
			expectError: true,
			errorMsg:    "PORT is required",
		},
		{
			name:        "missing allowed origins",
			mutate:      func(c *Config) { c.Server.AllowedOrigins = nil },
			expectError: true,
			errorMsg:    "ALLOWED_CORS_ORIGINS is required",
		},
		{
			name: "profiling enabled without endpoint",
			mutate: func(c *Config) {
				c.Profiling.Enabled = true
				c.Profiling.Endpoint = ""
			},
			expectError: true,
			errorMsg:    "O11Y_PROFILING_ENDPOINT is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	// Clean environment
	os.Clearenv()

	// Set only required fields
	os.Setenv("DATABASE_URL", "postgres://localhost:5432/mentorbridge")
	os.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// Check defaults
	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, "production", cfg.Server.AppEnv)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "/app/logs", cfg.Logging.Dir)
	assert.Equal(t, 600, cfg.Cache.RoadmapTTLSeconds)
	assert.Equal(t, 24, cfg.UserSession.SessionTTLHours)
	assert.True(t, cfg.UserSession.CookieSecure)
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	os.Clearenv()

	os.Setenv("DATABASE_URL", "postgres://db:5432/mentorbridge")
	os.Setenv("JWT_SECRET", "another-secret")
	os.Setenv("PORT", "9090")
	os.Setenv("APP_ENV", "development")
	os.Setenv("ALLOWED_CORS_ORIGINS", "http://localhost:3000, http://localhost:3001")
	os.Setenv("SESSION_COMPLETED_TRIGGER_URL", "https://hooks.example.com/completed")
	os.Setenv("ROADMAP_CACHE_TTL", "120")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.AppEnv)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "https://hooks.example.com/completed", cfg.EventTriggers.SessionCompletedTriggerURL)
	assert.Equal(t, 120, cfg.Cache.RoadmapTTLSeconds)
	assert.True(t, cfg.IsDevelopment())
}
