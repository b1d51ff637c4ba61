package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("STORE_DRIVER", "memory")
}

func TestLoadDefaults(t *testing.T) {
	baseEnv(t)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", c.AppEnv)
	assert.Equal(t, ":5000", c.HTTPAddr)
	assert.Equal(t, 15*time.Second, c.ShutdownTimeout)
	assert.Equal(t, 24*time.Hour, c.JWTTTL)
	assert.Equal(t, 12, c.BcryptRounds)
	assert.Equal(t, "first-active", c.AssignmentStrategy)
	assert.Equal(t, []string{"http://localhost:3000"}, c.CORSOrigins)
	assert.True(t, c.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	baseEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("ASSIGNMENT_STRATEGY", "specialization")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, c.JWTTTL)
	assert.Equal(t, "specialization", c.AssignmentStrategy)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
	assert.False(t, c.IsDevelopment())
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"short secret", map[string]string{"JWT_SECRET": "short"}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "sqlite"}},
		{"postgres without url", map[string]string{"STORE_DRIVER": "postgres", "DATABASE_URL": ""}},
		{"bad shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "soon"}},
		{"bad strategy", map[string]string{"ASSIGNMENT_STRATEGY": "random"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
