package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "pos.db", cfg.Database.URL)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 10, cfg.Inventory.LowStockThreshold)
	assert.True(t, cfg.Database.AutoMigrate)
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("DB_DRIVER", "sqlite")

	_, err := Load("does-not-exist.env")
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load("does-not-exist.env")
	assert.ErrorContains(t, err, "DB_DRIVER")
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "pos", Password: "pw", Name: "pos", SSLMode: "disable", TimeZone: "UTC"}
	assert.Equal(t, "host=db user=pos password=pw dbname=pos port=5432 sslmode=disable TimeZone=UTC", d.DSN())
	assert.Equal(t, "postgres://pos:pw@db:5432/pos?sslmode=disable", d.MigrateURL())

	d.URL = "postgres://x"
	assert.Equal(t, "postgres://x", d.DSN())
}
