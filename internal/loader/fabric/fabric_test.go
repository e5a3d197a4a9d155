package fabric

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aayushdutt/mcprovision/internal/mcpath"
)

func TestSupportedVersions_FiltersStable(t *testing.T) {
	dataDir := t.TempDir()
	ver := mcpath.NewVersion(dataDir, "1.20.4")
	l := New(Fabric)

	entries := []gameVersionEntry{
		{Version: "1.20.4", Stable: true},
		{Version: "24w09a", Stable: false},
	}
	writeCached(t, l.gameVersionsPath(ver), entries)

	all, err := l.SupportedVersions(context.Background(), ver, false)
	if err != nil {
		t.Fatalf("SupportedVersions failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 versions unfiltered, got %d", len(all))
	}

	stable, err := l.SupportedVersions(context.Background(), ver, true)
	if err != nil {
		t.Fatalf("SupportedVersions(stableOnly) failed: %v", err)
	}
	if len(stable) != 1 || stable[0] != "1.20.4" {
		t.Errorf("expected only the stable version, got %v", stable)
	}
}

func TestLoaderVersionsFor_SortsNewestFirst(t *testing.T) {
	dataDir := t.TempDir()
	ver := mcpath.NewVersion(dataDir, "1.20.4")
	l := New(Fabric)

	entries := []loaderVersionEntry{
		{Version: "0.14.0", Stable: true},
		{Version: "0.15.11", Stable: true},
		{Version: "0.16.0-beta.1", Stable: false},
	}
	writeCached(t, l.loaderVersionsPath(ver), entries)

	got, err := l.LoaderVersionsFor(context.Background(), "1.20.4", ver, false)
	if err != nil {
		t.Fatalf("LoaderVersionsFor failed: %v", err)
	}
	if len(got) != 3 || got[0] != "0.16.0-beta.1" || got[2] != "0.14.0" {
		t.Errorf("expected newest-first order, got %v", got)
	}

	stableOnly, err := l.LoaderVersionsFor(context.Background(), "1.20.4", ver, true)
	if err != nil {
		t.Fatalf("LoaderVersionsFor(stableOnly) failed: %v", err)
	}
	if len(stableOnly) != 2 || stableOnly[0] != "0.15.11" {
		t.Errorf("expected stable-only newest-first order, got %v", stableOnly)
	}
}

func writeCached(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}
