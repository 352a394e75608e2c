package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/tuivocab/internal/model"
)

func TestLoadSchedulerConfigMissingFile(t *testing.T) {
	cfg, err := LoadSchedulerConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != model.DefaultSchedulerConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadSchedulerConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[training]\nbatch-size = 7\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadSchedulerConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.IntervalSeconds != model.DefaultIntervalSeconds || cfg.BatchSize != 7 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadSchedulerConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[training\ninterval = "), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadSchedulerConfig(path)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if cfg != model.DefaultSchedulerConfig() {
		t.Fatalf("expected defaults on error, got %+v", cfg)
	}
}

func TestSaveSchedulerConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	want := model.SchedulerConfig{IntervalSeconds: 45, BatchSize: 3}
	if err := SaveSchedulerConfig(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadSchedulerConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	reset, err := ResetSchedulerConfig(path)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, err = LoadSchedulerConfig(path)
	if err != nil {
		t.Fatalf("load after reset: %v", err)
	}
	if got != reset || got != model.DefaultSchedulerConfig() {
		t.Fatalf("expected defaults after reset, got %+v", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, got %d entries", len(entries))
	}
}

func TestDefaultPathsHonorOverrides(t *testing.T) {
	t.Setenv(EnvDBPath, "/tmp/custom.db")
	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	if got := DefaultDBPath(); got != "/tmp/custom.db" {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultConfigPath(); got != filepath.Join("/xdg/config", "tuivocab", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(EnvDBPath+"=/from/dotenv.db\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvDBPath, "")
	if err := os.Unsetenv(EnvDBPath); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}
	if err := LoadEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("load env: %v", err)
	}
	if got := DefaultDBPath(); got != "/from/dotenv.db" {
		t.Fatalf("expected dotenv override, got %q", got)
	}
}
