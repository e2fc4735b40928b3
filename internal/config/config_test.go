package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beehive/backend/internal/game"
	"beehive/backend/internal/hive"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	d, err := cfg.Tick()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "hive.json", `{
		"listen": ":9000",
		"hive": {"rows": 5, "columns": 5, "start_radius": 1, "stages": [{"grow_size": 2, "open_count": 1}]}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "250ms", cfg.TickInterval)
	assert.Equal(t, 5, cfg.Hive.Rows)
	assert.Equal(t, []hive.Stage{{GrowSize: 2, OpenCount: 1}}, cfg.Hive.Stages)
	assert.Equal(t, 0.55, cfg.Hive.SnapFactor, "unset hive fields keep defaults")
	assert.Equal(t, 3, cfg.Game.Lives)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name, file, body, want string
	}{
		{"extension", "hive.yaml", `{}`, ".json extension"},
		{"syntax", "hive.json", `{"listen":`, "failed to parse"},
		{"unknown field", "hive.json", `{"colour": "gold"}`, "unknown field"},
		{"tick", "hive.json", `{"tick_interval": "soon"}`, "invalid tick_interval"},
		{"negative tick", "hive.json", `{"tick_interval": "-1s"}`, "must be positive"},
		{"agent space", "hive.json", `{"agent_space": "quantum"}`, "unknown agent_space"},
		{"lives", "hive.json", `{"game": {"lives": 0}}`, "lives"},
		{"rank order", "hive.json", `{"game": {"rank_thresholds": [10, 5]}}`, "ascending"},
		{"negative dwell", "hive.json", `{"game": {"dwell_ticks": -1}}`, "dwell_ticks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRejectsBadHive(t *testing.T) {
	_, err := Load(writeFile(t, "hive.json", `{"hive": {"rows": 1, "columns": 1, "start_radius": 2}}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, hive.ErrInvalidConfig))
}

func TestLoadRejectsBadGame(t *testing.T) {
	_, err := Load(writeFile(t, "hive.json", `{"game": {"max_bees": -2}}`))
	assert.ErrorIs(t, err, game.ErrInvalidConfig)
}

func TestLoadMissingAndOversized(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to stat")

	big := writeFile(t, "big.json", `{"listen":"`+strings.Repeat("x", maxFileSize)+`"}`)
	_, err = Load(big)
	assert.ErrorContains(t, err, "too large")
}
