package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_HasSaneConcurrency(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.CheckConcurrency <= 0 || cfg.DownloadConcurrency <= 0 {
		t.Errorf("expected positive concurrency caps, got check=%d download=%d", cfg.CheckConcurrency, cfg.DownloadConcurrency)
	}
	if cfg.HTTPTimeout <= 0 {
		t.Errorf("expected positive HTTP timeout")
	}
}

func TestSave_RoundTripsThroughJSON(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.DataDir = dir
	cfg.CheckConcurrency = 7
	cfg.ForgeMavenBase = "https://mirror.example.com/forge"

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshaling saved config: %v", err)
	}

	if loaded.CheckConcurrency != 7 {
		t.Errorf("CheckConcurrency = %d, want 7", loaded.CheckConcurrency)
	}
	if loaded.ForgeMavenBase != "https://mirror.example.com/forge" {
		t.Errorf("ForgeMavenBase = %q", loaded.ForgeMavenBase)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CheckConcurrency != DefaultConfig().CheckConcurrency {
		t.Errorf("expected default concurrency when no config file exists")
	}
}

func TestEnsureDirs_CreatesEveryPath(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.AssetsDir = filepath.Join(dir, "data", "minecraft", "assets")
	cfg.LibrariesDir = filepath.Join(dir, "data", "minecraft", "lib")

	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	for _, d := range []string{cfg.DataDir, cfg.AssetsDir, cfg.LibrariesDir} {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist", d)
		}
	}
}
