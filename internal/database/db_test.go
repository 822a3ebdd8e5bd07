package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_DSN(t *testing.T) {
	dsn := Params{User: "app", Pass: "s3cret", Host: "db", Port: "3306", Name: "contacts"}.DSN()

	assert.True(t, strings.HasPrefix(dsn, "app:s3cret@tcp(db:3306)/contacts?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	body, err := fs.ReadFile(migrationsFS, files[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "ON DELETE CASCADE")
}
