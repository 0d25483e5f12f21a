package database

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/daprotis-api/pkg/config"
	"github.com/noah-isme/daprotis-api/pkg/database/migrations"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "daprotis", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=daprotis sslmode=disable", dsn)
}

func TestMigrationsAreEmbedded(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	assert.Contains(t, files, "00001_init.sql")

	raw, err := fs.ReadFile(migrations.FS, "00001_init.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "-- +goose Up")
	assert.Contains(t, string(raw), "CREATE TABLE IF NOT EXISTS enrollments")
}
