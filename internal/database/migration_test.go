package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_init.up.sql",
		"000001_init.down.sql",
		"000003_decisions.up.sql",
		"000002_runs.up.sql",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600))
	}

	got, err := latestVersion(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	_, err = latestVersion(t.TempDir())
	assert.Error(t, err)
}

func TestMigrationService_MissingFolder(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	ms := NewMigrationService(logger, &MigrationConfig{MigrationFolderPath: filepath.Join(t.TempDir(), "missing")})

	err := ms.Migrate("bramble", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", Name: "bramble", SSLMode: "disable", UserName: "user", Password: "secret"}
	assert.Equal(t, "host=db port=5432 dbname=bramble sslmode=disable user=user password=secret", cfg.DSN())

	cfg.UserName, cfg.Password = "", ""
	assert.Equal(t, "host=db port=5432 dbname=bramble sslmode=disable", cfg.DSN())
}
