package database

import (
	"testing"

	"github.com/localnerve/transform-studio/internal/config"
	"github.com/localnerve/transform-studio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectorNames(t *testing.T) {
	cases := map[string]string{
		"sqlite":    "sqlite",
		"sqlite3":   "sqlite",
		"mysql":     "mysql",
		"mariadb":   "mysql",
		"postgres":  "postgres",
		"sqlserver": "sqlserver",
	}
	for dbType, want := range cases {
		d, err := Dialector(&config.Config{DBType: dbType, DBHost: "db", DBUser: "u", DBDatabase: "transforms"})
		require.NoError(t, err, dbType)
		assert.Equal(t, want, d.Name(), dbType)
	}

	_, err := Dialector(&config.Config{DBType: "oracle"})
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestConnectSQLite(t *testing.T) {
	db, err := Connect(&config.Config{DBType: "sqlite", DBDatabase: ":memory:", DBConnectionLimit: 5})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, AutoMigrate(db))
	assert.True(t, db.Migrator().HasTable(&models.StoreEntry{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}
