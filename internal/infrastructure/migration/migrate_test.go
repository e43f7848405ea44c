package migration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/ownership"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/shared/valueobject"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/config"
	"github.com/GremaudMatthieu/Baillr-sub000/internal/infrastructure/event"
)

func sqliteConfig(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	return &config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "baillr.db"),
	}
}

func newSQLiteMigrator(t *testing.T, cfg *config.DatabaseConfig) *Migrator {
	t.Helper()
	db, err := OpenDB(cfg)
	require.NoError(t, err)
	m, err := New(db, config.DriverSQLite, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestMigrator_UpDownSteps(t *testing.T) {
	m := newSQLiteMigrator(t, sqliteConfig(t))

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	require.NoError(t, m.Up())
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)

	require.NoError(t, m.Up(), "second up is a no-op")

	require.NoError(t, m.Steps(-1))
	version, _, _ = m.Version()
	assert.Equal(t, uint(1), version)

	require.NoError(t, m.Down())
	version, _, _ = m.Version()
	assert.Equal(t, uint(0), version)

	require.NoError(t, m.Down(), "second down is a no-op")
}

func TestMigrator_Force(t *testing.T) {
	m := newSQLiteMigrator(t, sqliteConfig(t))

	require.NoError(t, m.Force(1))

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestMigrator_UnsupportedDriver(t *testing.T) {
	_, err := New(nil, "mysql", nil)
	assert.Error(t, err)
}

func TestMigratedSchemaServesTheEventStore(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)
	require.NoError(t, newSQLiteMigrator(t, cfg).Up())

	db, err := gorm.Open(sqlite.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	serializer := event.NewEventSerializer(nil)
	event.RegisterOwnershipEvents(serializer)
	store := event.NewGormEventStore(db, serializer, event.WithOutbox(event.NewOutboxPublisher(serializer)))

	created := ownership.NewEntityCreatedEvent("entity-1", "user_owner", ownership.EntityTypeSCI, "SCI Les Tilleuls",
		"12345678901234", valueobject.AddressDTO{Street: "1 rue Haute", PostalCode: "75001", City: "Paris"}, "")
	stream := ownership.StreamName("entity-1")
	require.NoError(t, store.AppendToStream(ctx, stream, 0, created))

	err = store.AppendToStream(ctx, stream, 0, created)
	assert.True(t, shared.IsConcurrencyConflict(err))

	events, err := store.ReadStream(ctx, stream)
	require.NoError(t, err)
	require.Len(t, events, 1)

	pending, err := event.NewGormOutboxRepository(db).FindPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].StreamVersion)
}
