package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Contains(t, cfg.Database.DSN, "@tcp(localhost:3306)/portal")
	assert.Equal(t, 8, cfg.Password.MinLength)
	assert.Equal(t, 3*time.Second, cfg.NoticeTTL)
	assert.Equal(t, 2*time.Second, cfg.ResubmitLockout)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_Postgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Contains(t, cfg.Database.DSN, "host=db")
}

func TestLoadConfig_DSNOverride(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file::memory:")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"DB_DRIVER":                "oracle",
		"JWT_EXPIRATION_MINUTES":   "soon",
		"NOTICE_TTL_SECONDS":       "3s",
		"AUTH_RATE_PER_SECOND":     "fast",
		"RESUBMIT_LOCKOUT_SECONDS": "",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
