package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 3, cfg.Scheduling.SyncMaxAttempts)
	assert.True(t, cfg.Scheduling.BatchConflictCheck)
	assert.Equal(t, 10*time.Minute, cfg.Scheduling.TeacherCacheTTL)
	assert.Equal(t, "timetables.published", cfg.Notify.Channel)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("SCHEDULING_SYNC_MAX_ATTEMPTS", "0")
	t.Setenv("SCHEDULING_BATCH_CONFLICT_CHECK", "false")
	t.Setenv("SCHEDULING_TEACHER_CACHE_TTL", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "https://admin.example.org, ,https://prof.example.org")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 1, cfg.Scheduling.SyncMaxAttempts)
	assert.False(t, cfg.Scheduling.BatchConflictCheck)
	assert.Equal(t, 10*time.Minute, cfg.Scheduling.TeacherCacheTTL)
	assert.Equal(t, []string{"https://admin.example.org", "https://prof.example.org"}, cfg.CORS.AllowedOrigins)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
