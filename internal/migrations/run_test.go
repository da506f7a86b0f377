package migrations

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mycrm/internal/storage/storagetest"
)

func TestRunMigrations(t *testing.T) {
	db := storagetest.OpenDB(t, storagetest.StartPostgres(t))

	err := Run(db, storagetest.MigrationsPath(t))
	require.NoError(t, err)

	var exists bool
	err = db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = 'accounts'
		)
	`).Scan(&exists)
	require.NoError(t, err)
	require.True(t, exists, "Table 'accounts' should exist")

	err = db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM information_schema.table_constraints
			WHERE table_name = 'accounts'
			AND constraint_name = 'accounts_email_key'
			AND constraint_type = 'UNIQUE'
		)
	`).Scan(&exists)
	require.NoError(t, err)
	require.True(t, exists, "Unique email constraint should exist")
}

func TestMigrationIdempotency(t *testing.T) {
	db := storagetest.OpenDB(t, storagetest.StartPostgres(t))
	path := storagetest.MigrationsPath(t)

	require.NoError(t, Run(db, path))
	require.NoError(t, Run(db, path), "running migrations twice should not fail")
}

func TestRunMigrations_BadPath(t *testing.T) {
	db := storagetest.OpenDB(t, storagetest.StartPostgres(t))
	require.Error(t, Run(db, "/definitely/not/here"))
}
