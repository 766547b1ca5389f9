package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/ambiscope/internal/cursor"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, cursor.RetreatJournal, cfg.Policy())
	assert.Equal(t, "dual", cfg.DefaultMode)
	assert.True(t, strings.HasSuffix(cfg.DBPath, "ambiscope.db"))
	rc := cfg.Recorder()
	assert.Equal(t, 64, rc.BatchSize)
	assert.Equal(t, 500*time.Millisecond, rc.FlushInterval)
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, DefaultConfig().DBPath, cfg.DBPath)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"retreat_policy": "inferred", "default_mode": "practice", "record_flush_ms": 20}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cursor.RetreatInferred, cfg.Policy())
	assert.Equal(t, "practice", cfg.DefaultMode)
	assert.Equal(t, 20*time.Millisecond, cfg.Recorder().FlushInterval)
	assert.True(t, cfg.Record, "unset fields keep their defaults")
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad json", `{"db_path": `, "parsing config"},
		{"bad policy", `{"retreat_policy": "guess"}`, `retreat_policy "guess"`},
		{"bad mode", `{"default_mode": "triple"}`, `default_mode "triple"`},
		{"bad trace", `{"trace_level": "loud"}`, `trace_level "loud"`},
		{"empty db", `{"db_path": ""}`, "empty db_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0644))
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.CatalogPath = "grammars.json"
	cfg.NotificationsEnabled = true
	require.NoError(t, cfg.Save())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "grammars.json", again.CatalogPath)
	assert.True(t, again.NotificationsEnabled)
}

func TestApplyTraceLevel(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, TraceKeys...)
	defer teardown()
	//
	cfg := DefaultConfig()
	cfg.TraceLevel = "Debug"
	assert.Equal(t, tracing.LevelDebug, cfg.ApplyTraceLevel())
	assert.Equal(t, tracing.LevelDebug, tracing.Select("ambiscope.cursor").GetTraceLevel())
	cfg.TraceLevel = "Error"
	cfg.ApplyTraceLevel()
	assert.Equal(t, tracing.LevelError, tracing.Select("ambiscope.cursor").GetTraceLevel())
}
