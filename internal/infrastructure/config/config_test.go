package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "estate-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "estate", cfg.Database.DBName)
	assert.Equal(t, 5*time.Second, cfg.Sale.NotificationTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Sale.RuleCacheTTL)
	assert.False(t, cfg.IsProduction())
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("ESTATE_DATABASE_DBNAME", "estate_test")
	t.Setenv("ESTATE_APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "estate_test", cfg.Database.DBName)
	assert.Equal(t, "9090", cfg.App.Port)
}

func TestValidate(t *testing.T) {
	t.Run("bad environment rejected", func(t *testing.T) {
		t.Setenv("ESTATE_APP_ENV", "qa")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("production requires db password", func(t *testing.T) {
		t.Setenv("ESTATE_APP_ENV", "production")
		_, err := Load()
		assert.Error(t, err)

		t.Setenv("ESTATE_DATABASE_PASSWORD", "secret")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "estate", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=estate sslmode=disable", d.DSN())

	r := RedisConfig{Host: "cache", Port: 6379}
	assert.Equal(t, "cache:6379", r.Addr())
}
