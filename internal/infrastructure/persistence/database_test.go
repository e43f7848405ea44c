package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	gormlogger "gorm.io/gorm/logger"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/config"
)

func sqliteConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Driver:          config.DriverSQLite,
		SQLitePath:      ":memory:",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 60,
		ConnMaxIdleTime: 30,
	}
}

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(sqliteConfig(), zaptest.NewLogger(t), gormlogger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDatabase_SQLite(t *testing.T) {
	db := newTestDatabase(t)

	assert.Equal(t, config.DriverSQLite, db.Driver())
	assert.NoError(t, db.Ping())

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	cfg := sqliteConfig()
	cfg.Driver = "mysql"

	_, err := NewDatabase(cfg, nil, gormlogger.Silent)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported database driver "mysql"`)
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(sqliteConfig(), nil, gormlogger.Silent)
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping())
}
