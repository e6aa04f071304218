package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/i18n-store/internal/config"
)

func TestNewAppOnSQLite(t *testing.T) {
	conf := config.Default().Server
	conf.Driver = config.DriverSQLite
	conf.SqlitePath = ":memory:"
	conf.JwtSecret = "secret"

	db, err := NewDatabase(conf)
	require.NoError(t, err)
	require.NoError(t, MigrateDatabase(db))

	app := NewApp(conf, db)
	ctx := context.Background()

	_, err = app.Seed.SeedUser(ctx, "Admin User", "admin@admin.com", "password")
	require.NoError(t, err)

	n, err := app.Seed.GenerateTranslations(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	_, rows, err := app.Export.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, rows)

	families, err := app.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
