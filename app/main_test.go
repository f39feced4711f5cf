package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/careerhub/jobboard/app/store"
	"github.com/careerhub/jobboard/app/store/persistence"
)

func Test_makeSlot(t *testing.T) {
	dir := t.TempDir()

	opts.Store.Type = "file"
	opts.Store.File = filepath.Join(dir, "jobs.json")
	slot, closer, err := makeSlot()
	require.NoError(t, err)
	assert.IsType(t, &persistence.File{}, slot)
	assert.Nil(t, closer)

	opts.Store.Type = "sqlite"
	opts.Store.DB = filepath.Join(dir, "jobs.db")
	opts.Store.Slot = "careerhub_internal_jobs"
	slot, closer, err = makeSlot()
	require.NoError(t, err)
	assert.IsType(t, &persistence.SQLite{}, slot)
	require.NotNil(t, closer)
	require.NoError(t, closer.Close())

	opts.Store.Type = "memory"
	slot, closer, err = makeSlot()
	require.NoError(t, err)
	assert.IsType(t, &persistence.Memory{}, slot)
	assert.Nil(t, closer)

	opts.Store.Type = "redis"
	_, _, err = makeSlot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown store type "redis"`)
}

func Test_makeNotifier(t *testing.T) {
	opts.Notify.Config = ""
	assert.Nil(t, makeNotifier())

	opts.Notify.Config = filepath.Join(t.TempDir(), "no-such.yml")
	assert.Nil(t, makeNotifier(), "unreadable config disables notifications")

	path := filepath.Join(t.TempDir(), "notify.yml")
	require.NoError(t, os.WriteFile(path, []byte("destinations:\n  - https://hooks.example.com/x\n"), 0o600))
	opts.Notify.Config = path
	assert.NotNil(t, makeNotifier())
}

func Test_scheduleBackups(t *testing.T) {
	opts.Backup.Dir = filepath.Join(t.TempDir(), "backups")

	opts.Backup.Schedule = "@every 1h"
	scheduler, err := scheduleBackups(store.New(persistence.NewMemory()))
	require.NoError(t, err)
	scheduler.Stop()
	assert.DirExists(t, opts.Backup.Dir)

	opts.Backup.Schedule = "not-a-cron-spec"
	_, err = scheduleBackups(store.New(persistence.NewMemory()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid backup schedule")
}

func Test_setupLogsWithLogsDisabled(t *testing.T) {
	opts.Log.Enabled = false
	assert.Equal(t, os.Stdout, setupLogs())
}

func Test_setupLogsToFile(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	opts.Log.Enabled = true
	opts.Log.Filename = tmpfile.Name()
	opts.Log.MaxSize = 100
	opts.Log.MaxBackups = 7
	opts.Log.MaxAge = 0
	opts.Log.EnabledCompress = false

	out := setupLogs()
	assert.IsType(t, &lumberjack.Logger{}, out)

	logger := out.(*lumberjack.Logger)
	assert.Equal(t, tmpfile.Name(), logger.Filename)
	assert.Equal(t, 100, logger.MaxSize)
	assert.Equal(t, 7, logger.MaxBackups)
	assert.Equal(t, 0, logger.MaxAge)
	assert.False(t, logger.Compress)
}
