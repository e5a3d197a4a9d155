package mcpath

import (
	"path/filepath"
	"testing"
)

func TestMC_Paths(t *testing.T) {
	mc := NewMC("/data")

	cases := map[string]string{
		"Manifest":     filepath.Join("/data", "minecraft", "manifest.json"),
		"LibraryPath":  filepath.Join("/data", "minecraft", "lib"),
		"AssetsPath":   filepath.Join("/data", "minecraft", "assets"),
		"VersionsRoot": filepath.Join("/data", "minecraft", "versions"),
	}

	if got := mc.Manifest(); got != cases["Manifest"] {
		t.Errorf("Manifest() = %q, want %q", got, cases["Manifest"])
	}
	if got := mc.LibraryPath(); got != cases["LibraryPath"] {
		t.Errorf("LibraryPath() = %q, want %q", got, cases["LibraryPath"])
	}
	if got := mc.AssetsPath(); got != cases["AssetsPath"] {
		t.Errorf("AssetsPath() = %q, want %q", got, cases["AssetsPath"])
	}
	if got := mc.VersionsRoot(); got != cases["VersionsRoot"] {
		t.Errorf("VersionsRoot() = %q, want %q", got, cases["VersionsRoot"])
	}
}

func TestMC_AssetObjectPath(t *testing.T) {
	mc := NewMC("/data")
	hash := "da39a3ee5e6b4b0d3255bfef95601890afd80709"
	want := filepath.Join("/data", "minecraft", "assets", "objects", "da", hash)
	if got := mc.AssetObjectPath(hash); got != want {
		t.Errorf("AssetObjectPath(%q) = %q, want %q", hash, got, want)
	}
}

func TestVersion_Paths(t *testing.T) {
	ver := NewVersion("/data", "1.20.4")
	want := filepath.Join("/data", "minecraft", "versions", "1.20.4")
	if got := ver.BasePath(); got != want {
		t.Errorf("BasePath() = %q, want %q", got, want)
	}
	if got := ver.Manifest(); got != filepath.Join(want, "1.20.4.json") {
		t.Errorf("Manifest() = %q", got)
	}
	if got := ver.ClientJar(); got != filepath.Join(want, "1.20.4.jar") {
		t.Errorf("ClientJar() = %q", got)
	}
}

func TestJava_Paths(t *testing.T) {
	j := NewJava("/data", "java-runtime-gamma")
	if got := j.ManifestPath(); got != filepath.Join("/data", "java", "manifest.json") {
		t.Errorf("ManifestPath() = %q", got)
	}
	if got := j.BasePath(); got != filepath.Join("/data", "java", "java-runtime-gamma") {
		t.Errorf("BasePath() = %q", got)
	}
}

func TestClasspathSeparator_NonEmpty(t *testing.T) {
	if ClasspathSeparator() == "" {
		t.Error("expected a non-empty classpath separator")
	}
}
