package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/rehab/internal/level"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Exercise.Level != nil || len(cfg.Levels) != 0 {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigAndResolveLevels(t *testing.T) {
	path := writeConfig(t, `
[exercise]
patient = "Ana"
level = 2
fps = 30

[log]
level = "debug"

[[levels]]
id = 2
duration-sec = 90
miss-timeout-ms = 4000
combo-grace-ms = 800
min-hits = 4
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Exercise.Patient == nil || *cfg.Exercise.Patient != "Ana" {
		t.Fatalf("patient not decoded: %+v", cfg.Exercise)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("log level not decoded: %+v", cfg.Log)
	}

	levels, err := cfg.ResolveLevels()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	l2, err := level.Lookup(levels, 2)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if l2.Duration != 90*time.Second || l2.MissTimeout != 4*time.Second || l2.ComboGrace != 800*time.Millisecond || l2.MinHits != 4 {
		t.Fatalf("override not applied: %+v", l2)
	}
	if l2.TargetSize != 45 {
		t.Fatalf("unset fields should keep defaults, got target size %v", l2.TargetSize)
	}
}

func TestResolveLevelsRejectsBadOverrides(t *testing.T) {
	cfg := FileConfig{Levels: []LevelConfig{{ID: 7}}}
	if _, err := cfg.ResolveLevels(); !errors.Is(err, level.ErrUnknownLevel) {
		t.Fatalf("expected ErrUnknownLevel, got %v", err)
	}

	damping := 1.5
	cfg = FileConfig{Levels: []LevelConfig{{ID: 3, BounceDamping: &damping}}}
	if _, err := cfg.ResolveLevels(); !errors.Is(err, level.ErrInvalidLevel) {
		t.Fatalf("expected ErrInvalidLevel, got %v", err)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[exercise]\nspeed = 3\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultDBPath(); got != filepath.Join("/data", "rehab", "rehab.db") {
		t.Fatalf("unexpected db path %s", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/state", "rehab", "rehab.log") {
		t.Fatalf("unexpected log path %s", got)
	}
}
