package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFlagsOverride(t *testing.T) {
	orig := [4]interface{}{*configPath, *listen, *journalPath, *seed}
	defer func() {
		*configPath = orig[0].(string)
		*listen = orig[1].(string)
		*journalPath = orig[2].(string)
		*seed = orig[3].(int64)
	}()

	*configPath = filepath.Join("config", "hive.example.json")
	*listen = ":9999"
	*journalPath = filepath.Join(t.TempDir(), "j.db")
	*seed = 11

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Listen)
	assert.Equal(t, *journalPath, cfg.JournalPath)
	assert.EqualValues(t, 11, cfg.Seed)
	assert.Equal(t, 11, cfg.Hive.Rows)
}

func TestLoadConfigBadFile(t *testing.T) {
	orig := *configPath
	defer func() { *configPath = orig }()

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"hive": {"stages": []}}`), 0o644))
	*configPath = path

	_, err := loadConfig()
	assert.Error(t, err)
}
