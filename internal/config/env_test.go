package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("TASKBOARD_JWT_SECRET", "secret")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "local", env.Env)
	assert.Equal(t, ":3100", env.Addr())
	assert.Equal(t, StorageTypeLocal, env.StorageEnv.Type)
	assert.Equal(t, 72*time.Hour, env.JWTTTL)
	assert.Equal(t, "taskboard.events", env.NATSSubjectPrefix)
	assert.Equal(t, slog.LevelDebug, env.SlogLevel())
	assert.Empty(t, env.NATSURL)
}

func TestLoadEnvRequiresSecret(t *testing.T) {
	t.Setenv("TASKBOARD_JWT_SECRET", "")
	_, err := LoadEnv()
	assert.Error(t, err)
}

func TestLoadEnvFromDotenv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("TASKBOARD_JWT_SECRET=from-file\nTASKBOARD_LOG_LEVEL=warn\n"), 0o644))
	// the environment wins over the file
	t.Setenv("TASKBOARD_LOG_LEVEL", "error")
	t.Cleanup(func() { os.Unsetenv("TASKBOARD_JWT_SECRET") })

	env, err := LoadEnv(file, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "from-file", env.JWTSecret)
	assert.Equal(t, slog.LevelError, env.SlogLevel())
}

func TestLoadEnvValidatesStorage(t *testing.T) {
	t.Setenv("TASKBOARD_JWT_SECRET", "secret")
	t.Setenv("TASKBOARD_STORAGE_TYPE", "s3")
	_, err := LoadEnv()
	assert.ErrorContains(t, err, "S3_BUCKET")

	t.Setenv("TASKBOARD_STORAGE_TYPE", "floppy")
	_, err = LoadEnv()
	assert.ErrorContains(t, err, "unknown storage type")
}
